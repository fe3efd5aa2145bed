package index

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/internal/indexer/tokenizer"
)

// InvertedIndex maps stemmed words to the locations they occur in and the
// 1-based positions within each location. It also tracks how many positions
// were recorded per location. InvertedIndex is not safe for concurrent use;
// wrap it in a ConcurrentIndex when more than one goroutine touches it.
type InvertedIndex struct {
	index  map[string]map[string][]int
	words  []string
	counts map[string]int
	stem   func(string) string
}

// New creates an empty index that stems words with the shared Snowball
// stemmer.
func New() *InvertedIndex {
	return NewWithStemmer(tokenizer.Stem)
}

// NewWithStemmer creates an empty index that canonicalises words with stem.
func NewWithStemmer(stem func(string) string) *InvertedIndex {
	if stem == nil {
		stem = tokenizer.Stem
	}
	return &InvertedIndex{
		index:  make(map[string]map[string][]int),
		counts: make(map[string]int),
		stem:   stem,
	}
}

// Stem canonicalises word the same way Add does.
func (idx *InvertedIndex) Stem(word string) string {
	return idx.stem(word)
}

// Add stems word and records position for it in location. It reports
// whether the position was new; the location's word count grows only then.
func (idx *InvertedIndex) Add(word string, location string, position int) bool {
	word = idx.stem(word)
	if word == "" {
		return false
	}
	locations, ok := idx.index[word]
	if !ok {
		locations = make(map[string][]int)
		idx.index[word] = locations
		idx.insertWord(word)
	}
	positions, inserted := insertPosition(locations[location], position)
	if !inserted {
		return false
	}
	locations[location] = positions
	idx.counts[location]++
	return true
}

// AddAll records words for location at positions 1..len(words).
func (idx *InvertedIndex) AddAll(words []string, location string) {
	for i, word := range words {
		idx.Add(word, location, i+1)
	}
}

// Merge folds other into idx: postings are unioned and word counts summed.
func (idx *InvertedIndex) Merge(other *InvertedIndex) {
	for word, otherLocations := range other.index {
		locations, ok := idx.index[word]
		if !ok {
			locations = make(map[string][]int, len(otherLocations))
			idx.index[word] = locations
			idx.insertWord(word)
		}
		for location, positions := range otherLocations {
			locations[location] = unionPositions(locations[location], positions)
		}
	}
	for location, count := range other.counts {
		idx.counts[location] += count
	}
}

// Search runs an exact or partial search for the given stemmed queries.
func (idx *InvertedIndex) Search(queries []string, exact bool) []Result {
	if exact {
		return idx.ExactSearch(queries)
	}
	return idx.PartialSearch(queries)
}

// ExactSearch ranks every location holding at least one of the queries.
func (idx *InvertedIndex) ExactSearch(queries []string) []Result {
	c := newCollector()
	for _, query := range distinct(queries) {
		if locations, ok := idx.index[query]; ok {
			idx.collect(c, locations)
		}
	}
	return c.ranked()
}

// PartialSearch ranks every location holding a word that starts with one of
// the queries. Each query scans the sorted word list from its first
// candidate and stops at the first word without the prefix.
func (idx *InvertedIndex) PartialSearch(queries []string) []Result {
	c := newCollector()
	for _, query := range distinct(queries) {
		for i := sort.SearchStrings(idx.words, query); i < len(idx.words); i++ {
			word := idx.words[i]
			if !strings.HasPrefix(word, query) {
				break
			}
			idx.collect(c, idx.index[word])
		}
	}
	return c.ranked()
}

func (idx *InvertedIndex) collect(c *collector, locations map[string][]int) {
	for location, positions := range locations {
		c.result(location).update(len(positions), idx.counts[location])
	}
}

// Words returns every indexed word in ascending order.
func (idx *InvertedIndex) Words() []string {
	return slices.Clone(idx.words)
}

// Locations returns the locations holding word in ascending order.
func (idx *InvertedIndex) Locations(word string) []string {
	locations, ok := idx.index[word]
	if !ok {
		return nil
	}
	return sortedKeys(locations)
}

// Positions returns the sorted positions of word in location.
func (idx *InvertedIndex) Positions(word string, location string) []int {
	return slices.Clone(idx.index[word][location])
}

func (idx *InvertedIndex) ContainsWord(word string) bool {
	_, ok := idx.index[word]
	return ok
}

func (idx *InvertedIndex) ContainsLocation(word string, location string) bool {
	_, ok := idx.index[word][location]
	return ok
}

func (idx *InvertedIndex) ContainsPosition(word string, location string, position int) bool {
	_, found := slices.BinarySearch(idx.index[word][location], position)
	return found
}

// SizeWords returns the number of distinct words.
func (idx *InvertedIndex) SizeWords() int {
	return len(idx.index)
}

// SizeLocations returns the number of locations holding word, or -1 if the
// word is not indexed.
func (idx *InvertedIndex) SizeLocations(word string) int {
	locations, ok := idx.index[word]
	if !ok {
		return -1
	}
	return len(locations)
}

// SizePositions returns the number of positions of word in location, or -1
// if the pair is not indexed.
func (idx *InvertedIndex) SizePositions(word string, location string) int {
	positions, ok := idx.index[word][location]
	if !ok {
		return -1
	}
	return len(positions)
}

// WordCount returns the number of positions recorded for location.
func (idx *InvertedIndex) WordCount(location string) int {
	return idx.counts[location]
}

func (idx *InvertedIndex) ContainsWordCount(location string) bool {
	_, ok := idx.counts[location]
	return ok
}

// WordCounts returns a copy of the per-location word counts.
func (idx *InvertedIndex) WordCounts() map[string]int {
	counts := make(map[string]int, len(idx.counts))
	for location, count := range idx.counts {
		counts[location] = count
	}
	return counts
}

// Snapshot returns a deep copy of the postings.
func (idx *InvertedIndex) Snapshot() map[string]map[string][]int {
	snapshot := make(map[string]map[string][]int, len(idx.index))
	for word, locations := range idx.index {
		copied := make(map[string][]int, len(locations))
		for location, positions := range locations {
			copied[location] = slices.Clone(positions)
		}
		snapshot[word] = copied
	}
	return snapshot
}

func (idx *InvertedIndex) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, word := range idx.words {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s={", word)
		for j, location := range sortedKeys(idx.index[word]) {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", location, idx.index[word][location])
		}
		b.WriteByte('}')
	}
	b.WriteByte('}')
	return b.String()
}

func (idx *InvertedIndex) insertWord(word string) {
	i, found := slices.BinarySearch(idx.words, word)
	if !found {
		idx.words = slices.Insert(idx.words, i, word)
	}
}
