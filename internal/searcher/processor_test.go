package searcher

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/internal/workqueue"
)

func sampleIndex() *index.InvertedIndex {
	idx := index.New()
	idx.AddAll(strings.Fields("cats chase dogs and dogs chase cats"), "pets.txt")
	idx.AddAll(strings.Fields("the dog sleeps"), "dog.txt")
	idx.AddAll(strings.Fields("catalogue of birds"), "birds.txt")
	return idx
}

func writeQueries(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "queries.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644))
	return path
}

type processorFactory struct {
	name string
	make func(t *testing.T, idx Index) Processor
}

func factories() []processorFactory {
	return []processorFactory{
		{"direct", func(t *testing.T, idx Index) Processor { return NewDirect(idx, nil) }},
		{"queued", func(t *testing.T, idx Index) Processor {
			queue := workqueue.New(3)
			t.Cleanup(queue.Join)
			return NewQueued(idx, queue, nil)
		}},
	}
}

func TestCanonical(t *testing.T) {
	key, stems := Canonical("  Dogs, CATS and dogs!! ", index.New().Stem)
	assert.Equal(t, "and cat dog", key)
	assert.Equal(t, []string{"and", "cat", "dog"}, stems)

	key, stems = Canonical("123 ... !!", index.New().Stem)
	assert.Empty(t, key)
	assert.Empty(t, stems)
}

func TestSearchFileExact(t *testing.T) {
	for _, f := range factories() {
		t.Run(f.name, func(t *testing.T) {
			idx := index.NewConcurrent(sampleIndex(), nil)
			p := f.make(t, idx)
			path := writeQueries(t, "dogs", "DOG", "", "cats dogs", "cat!", "42", "missing words")

			require.NoError(t, p.SearchFile(path, true))

			assert.Equal(t, []string{"cat", "cat dog", "dog", "miss word"}, p.Queries())
			dogs := p.Results("dog")
			require.Len(t, dogs, 2)
			assert.Equal(t, "dog.txt", dogs[0].Location(), "1/3 beats 2/7")
			assert.Equal(t, "pets.txt", dogs[1].Location())
			assert.Equal(t, 1, p.Size("cat"))
			assert.Equal(t, 2, p.Size("cat dog"))
			assert.Equal(t, 0, p.Size("miss word"))
			assert.Equal(t, -1, p.Size("never asked"))
			assert.Empty(t, p.Results("never asked"))
		})
	}
}

func TestSearchPartial(t *testing.T) {
	for _, f := range factories() {
		t.Run(f.name, func(t *testing.T) {
			p := f.make(t, index.NewConcurrent(sampleIndex(), nil))
			require.NoError(t, p.SearchFile(writeQueries(t, "cat"), false))

			results := p.Results("cat")
			require.Len(t, results, 2)
			assert.Equal(t, "birds.txt", results[0].Location(), "catalogu is a prefix match")
			assert.Equal(t, "pets.txt", results[1].Location())
		})
	}
}

func TestFirstResultWins(t *testing.T) {
	for _, f := range factories() {
		t.Run(f.name, func(t *testing.T) {
			p := f.make(t, index.NewConcurrent(sampleIndex(), nil))
			require.NoError(t, p.SearchFile(writeQueries(t, "cat"), true))
			require.NoError(t, p.SearchFile(writeQueries(t, "cats"), false))

			assert.Equal(t, 1, p.Size("cat"), "partial search is not recomputed")
		})
	}
}

func TestAllReturnsCopy(t *testing.T) {
	for _, f := range factories() {
		t.Run(f.name, func(t *testing.T) {
			p := f.make(t, index.NewConcurrent(sampleIndex(), nil))
			require.NoError(t, p.SearchFile(writeQueries(t, "dog", "cat"), true))

			all := p.All()
			require.Len(t, all, 2)
			delete(all, "dog")
			all["cat"] = nil
			assert.Equal(t, 2, p.Size("dog"))
			assert.Equal(t, 1, p.Size("cat"))
		})
	}
}

func TestSearchFileMissing(t *testing.T) {
	for _, f := range factories() {
		t.Run(f.name, func(t *testing.T) {
			p := f.make(t, index.NewConcurrent(sampleIndex(), nil))
			assert.Error(t, p.SearchFile(filepath.Join(t.TempDir(), "nope.txt"), true))
		})
	}
}

// countingIndex records how often each query reaches the index.
type countingIndex struct {
	*index.ConcurrentIndex
	mu    sync.Mutex
	calls map[string]int
}

func (c *countingIndex) Search(queries []string, exact bool) []index.Result {
	c.mu.Lock()
	c.calls[strings.Join(queries, " ")]++
	c.mu.Unlock()
	return c.ConcurrentIndex.Search(queries, exact)
}

func TestQueuedDeduplicatesConcurrentQueries(t *testing.T) {
	idx := &countingIndex{ConcurrentIndex: index.NewConcurrent(sampleIndex(), nil), calls: make(map[string]int)}
	queue := workqueue.New(8)
	defer queue.Join()
	p := NewQueued(idx, queue, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				p.Search("dogs cats", true)
				p.Search("Cats, dogs", true)
			}
		}()
	}
	wg.Wait()
	queue.Finish()

	assert.Equal(t, []string{"cat dog"}, p.Queries())
	assert.Equal(t, 1, idx.calls["cat dog"])
	assert.Equal(t, 2, p.Size("cat dog"))
}

func TestQueuedMatchesDirect(t *testing.T) {
	lines := []string{"dog", "cat chase", "the", "birds of", "sleep", "c", "d"}
	path := writeQueries(t, lines...)
	idx := index.NewConcurrent(sampleIndex(), nil)

	for _, exact := range []bool{true, false} {
		direct := NewDirect(idx, nil)
		require.NoError(t, direct.SearchFile(path, exact))

		queue := workqueue.New(4)
		queued := NewQueued(idx, queue, nil)
		require.NoError(t, queued.SearchFile(path, exact))
		queue.Join()

		assert.Equal(t, direct.All(), queued.All())
	}
}
