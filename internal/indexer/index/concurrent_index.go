package index

import (
	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/internal/rwlock"
	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/pkg/metrics"
)

// ConcurrentIndex guards an InvertedIndex with an rwlock.Lock. Reads hold
// the read lock and Add, AddAll and Merge hold the write lock, each for a
// single call. Sequences of calls are not atomic.
type ConcurrentIndex struct {
	lock  *rwlock.Lock
	index *InvertedIndex
}

// NewConcurrent takes ownership of inner; callers must not touch inner
// directly afterwards. m may be nil.
func NewConcurrent(inner *InvertedIndex, m *metrics.Metrics) *ConcurrentIndex {
	if inner == nil {
		inner = New()
	}
	return &ConcurrentIndex{
		lock:  rwlock.New(m),
		index: inner,
	}
}

func (c *ConcurrentIndex) acquireRead() {
	c.lock.AcquireRead(rwlock.NewOwner())
}

func (c *ConcurrentIndex) releaseRead() {
	if err := c.lock.ReleaseRead(); err != nil {
		panic(err)
	}
}

func (c *ConcurrentIndex) acquireWrite() rwlock.Owner {
	owner := rwlock.NewOwner()
	c.lock.AcquireWrite(owner)
	return owner
}

func (c *ConcurrentIndex) releaseWrite(owner rwlock.Owner) {
	if err := c.lock.ReleaseWrite(owner); err != nil {
		panic(err)
	}
}

// Stem is immutable configuration and needs no lock.
func (c *ConcurrentIndex) Stem(word string) string {
	return c.index.Stem(word)
}

func (c *ConcurrentIndex) Add(word string, location string, position int) bool {
	owner := c.acquireWrite()
	defer c.releaseWrite(owner)
	return c.index.Add(word, location, position)
}

func (c *ConcurrentIndex) AddAll(words []string, location string) {
	owner := c.acquireWrite()
	defer c.releaseWrite(owner)
	c.index.AddAll(words, location)
}

// Merge folds an unshared local index into the shared one.
func (c *ConcurrentIndex) Merge(other *InvertedIndex) {
	owner := c.acquireWrite()
	defer c.releaseWrite(owner)
	c.index.Merge(other)
}

func (c *ConcurrentIndex) Search(queries []string, exact bool) []Result {
	c.acquireRead()
	defer c.releaseRead()
	return c.index.Search(queries, exact)
}

func (c *ConcurrentIndex) ExactSearch(queries []string) []Result {
	c.acquireRead()
	defer c.releaseRead()
	return c.index.ExactSearch(queries)
}

func (c *ConcurrentIndex) PartialSearch(queries []string) []Result {
	c.acquireRead()
	defer c.releaseRead()
	return c.index.PartialSearch(queries)
}

func (c *ConcurrentIndex) Words() []string {
	c.acquireRead()
	defer c.releaseRead()
	return c.index.Words()
}

func (c *ConcurrentIndex) Locations(word string) []string {
	c.acquireRead()
	defer c.releaseRead()
	return c.index.Locations(word)
}

func (c *ConcurrentIndex) Positions(word string, location string) []int {
	c.acquireRead()
	defer c.releaseRead()
	return c.index.Positions(word, location)
}

func (c *ConcurrentIndex) ContainsWord(word string) bool {
	c.acquireRead()
	defer c.releaseRead()
	return c.index.ContainsWord(word)
}

func (c *ConcurrentIndex) ContainsLocation(word string, location string) bool {
	c.acquireRead()
	defer c.releaseRead()
	return c.index.ContainsLocation(word, location)
}

func (c *ConcurrentIndex) ContainsPosition(word string, location string, position int) bool {
	c.acquireRead()
	defer c.releaseRead()
	return c.index.ContainsPosition(word, location, position)
}

func (c *ConcurrentIndex) SizeWords() int {
	c.acquireRead()
	defer c.releaseRead()
	return c.index.SizeWords()
}

func (c *ConcurrentIndex) SizeLocations(word string) int {
	c.acquireRead()
	defer c.releaseRead()
	return c.index.SizeLocations(word)
}

func (c *ConcurrentIndex) SizePositions(word string, location string) int {
	c.acquireRead()
	defer c.releaseRead()
	return c.index.SizePositions(word, location)
}

func (c *ConcurrentIndex) WordCount(location string) int {
	c.acquireRead()
	defer c.releaseRead()
	return c.index.WordCount(location)
}

func (c *ConcurrentIndex) ContainsWordCount(location string) bool {
	c.acquireRead()
	defer c.releaseRead()
	return c.index.ContainsWordCount(location)
}

func (c *ConcurrentIndex) WordCounts() map[string]int {
	c.acquireRead()
	defer c.releaseRead()
	return c.index.WordCounts()
}

func (c *ConcurrentIndex) Snapshot() map[string]map[string][]int {
	c.acquireRead()
	defer c.releaseRead()
	return c.index.Snapshot()
}

func (c *ConcurrentIndex) String() string {
	c.acquireRead()
	defer c.releaseRead()
	return c.index.String()
}
