package index

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lemmas maps irregular forms so the tests can pin exact stems.
func lemmas(word string) string {
	switch word = strings.ToLower(word); word {
	case "running", "runs", "ran":
		return "run"
	case "cats":
		return "cat"
	}
	return word
}

func newTestIndex() *InvertedIndex {
	return NewWithStemmer(lemmas)
}

func TestAddStemsAndDeduplicates(t *testing.T) {
	idx := newTestIndex()

	assert.True(t, idx.Add("running", "a.txt", 3))
	assert.True(t, idx.Add("runs", "a.txt", 1))
	assert.False(t, idx.Add("ran", "a.txt", 3), "same triple after stemming")
	assert.True(t, idx.Add("run", "a.txt", 2))

	assert.Equal(t, []int{1, 2, 3}, idx.Positions("run", "a.txt"))
	assert.Equal(t, 3, idx.WordCount("a.txt"))
	assert.True(t, idx.ContainsPosition("run", "a.txt", 2))
	assert.False(t, idx.ContainsPosition("run", "a.txt", 4))
	assert.False(t, idx.ContainsWord("running"), "lookups are not stemmed")
}

func TestRunningRunsRan(t *testing.T) {
	idx := newTestIndex()
	idx.AddAll(strings.Fields("running runs ran"), "doc")

	assert.Equal(t, []int{1, 2, 3}, idx.Positions("run", "doc"))
	assert.Equal(t, 3, idx.WordCount("doc"))

	results := idx.ExactSearch([]string{"run"})
	require.Len(t, results, 1)
	assert.Equal(t, "doc", results[0].Location())
	assert.Equal(t, 3, results[0].Count())
	assert.Equal(t, 1.0, results[0].Score())
}

func TestSizesAndLookups(t *testing.T) {
	idx := newTestIndex()
	idx.AddAll([]string{"b", "a", "b"}, "x")
	idx.AddAll([]string{"a"}, "y")

	assert.Equal(t, []string{"a", "b"}, idx.Words())
	assert.Equal(t, []string{"x", "y"}, idx.Locations("a"))
	assert.Nil(t, idx.Locations("zzz"))
	assert.Equal(t, 2, idx.SizeWords())
	assert.Equal(t, 2, idx.SizeLocations("a"))
	assert.Equal(t, -1, idx.SizeLocations("zzz"))
	assert.Equal(t, 2, idx.SizePositions("b", "x"))
	assert.Equal(t, -1, idx.SizePositions("b", "y"))
	assert.True(t, idx.ContainsLocation("a", "y"))
	assert.False(t, idx.ContainsLocation("b", "y"))
	assert.Equal(t, map[string]int{"x": 3, "y": 1}, idx.WordCounts())
	assert.True(t, idx.ContainsWordCount("x"))
	assert.False(t, idx.ContainsWordCount("z"))
	assert.Equal(t, "{a={x=[2], y=[1]}, b={x=[1 3]}}", idx.String())
}

func TestReturnedSlicesAreCopies(t *testing.T) {
	idx := newTestIndex()
	idx.AddAll([]string{"a", "b"}, "x")

	positions := idx.Positions("a", "x")
	positions[0] = 99
	words := idx.Words()
	words[0] = "zzz"
	snapshot := idx.Snapshot()
	snapshot["a"]["x"][0] = 42

	assert.Equal(t, []int{1}, idx.Positions("a", "x"))
	assert.Equal(t, []string{"a", "b"}, idx.Words())
}

func TestMergeUnionsPostingsAndSumsCounts(t *testing.T) {
	a := newTestIndex()
	a.AddAll([]string{"apple", "banana"}, "one")

	b := newTestIndex()
	b.AddAll([]string{"banana", "cherry", "banana"}, "two")
	b.Add("apple", "one", 7)

	a.Merge(b)

	assert.Equal(t, []string{"apple", "banana", "cherry"}, a.Words())
	assert.Equal(t, []int{1, 7}, a.Positions("apple", "one"))
	assert.Equal(t, []int{1, 3}, a.Positions("banana", "two"))
	assert.Equal(t, 3, a.WordCount("one"))
	assert.Equal(t, 3, a.WordCount("two"))
}

func TestMergeIsOrderIndependent(t *testing.T) {
	a := newTestIndex()
	a.AddAll(strings.Fields("the quick brown fox"), "one")
	a.AddAll(strings.Fields("lazy dog"), "two")
	b := newTestIndex()
	b.AddAll(strings.Fields("quick dog jumps"), "three")
	b.AddAll(strings.Fields("brown brown cow"), "one-more")

	ab := newTestIndex()
	ab.Merge(a)
	ab.Merge(b)
	ba := newTestIndex()
	ba.Merge(b)
	ba.Merge(a)

	assert.Equal(t, ab.Snapshot(), ba.Snapshot())
	assert.Equal(t, ab.WordCounts(), ba.WordCounts())
	assert.Equal(t, ab.Words(), ba.Words())
}

func TestMergeDoesNotAliasSource(t *testing.T) {
	local := newTestIndex()
	local.AddAll([]string{"a"}, "x")
	shared := newTestIndex()
	shared.Merge(local)

	local.Add("a", "x", 2)
	assert.Equal(t, []int{1}, shared.Positions("a", "x"))
}

func TestExactSearchRanking(t *testing.T) {
	idx := newTestIndex()
	idx.AddAll(strings.Fields("cat dog cat"), "b.txt")
	idx.AddAll(strings.Fields("cat dog bird fish"), "A.txt")
	idx.AddAll(strings.Fields("cat dog bird fish"), "a2.txt")
	idx.AddAll(strings.Fields("dog bird"), "none.txt")

	results := idx.ExactSearch([]string{"cat", "missing"})
	require.Len(t, results, 3)

	assert.Equal(t, "b.txt", results[0].Location())
	assert.Equal(t, 2, results[0].Count())
	assert.InDelta(t, 2.0/3.0, results[0].Score(), 1e-12)
	assert.Equal(t, "A.txt", results[1].Location(), "case-insensitive tie break")
	assert.Equal(t, "a2.txt", results[2].Location())
}

func TestRankingTieOnScoreUsesCount(t *testing.T) {
	idx := newTestIndex()
	idx.AddAll(strings.Fields("cat dog"), "short")
	idx.AddAll(strings.Fields("cat cat dog dog"), "long")

	results := idx.ExactSearch([]string{"cat"})
	require.Len(t, results, 2)
	assert.Equal(t, results[0].Score(), results[1].Score())
	assert.Equal(t, "long", results[0].Location())
	assert.Equal(t, 2, results[0].Count())
}

func TestRankingLocationsDifferingOnlyInCase(t *testing.T) {
	idx := NewWithStemmer(func(w string) string { return w })
	for _, loc := range []string{"b.txt", "A.txt", "B.txt", "a.txt"} {
		idx.AddAll([]string{"cat", "dog"}, loc)
	}

	want := []string{"A.txt", "a.txt", "B.txt", "b.txt"}
	for i := 0; i < 100; i++ {
		for _, exact := range []bool{true, false} {
			var got []string
			for _, r := range idx.Search([]string{"cat"}, exact) {
				got = append(got, r.Location())
			}
			require.Equal(t, want, got, "exact=%v run %d", exact, i)
		}
	}
}

func TestPartialSearch(t *testing.T) {
	idx := newTestIndex()
	idx.AddAll(strings.Fields("apple application apply"), "one")
	idx.AddAll(strings.Fields("apricot ape"), "two")
	idx.AddAll(strings.Fields("banana"), "three")

	results := idx.PartialSearch([]string{"appl"})
	require.Len(t, results, 1)
	assert.Equal(t, "one", results[0].Location())
	assert.Equal(t, 3, results[0].Count())

	results = idx.PartialSearch([]string{"ap"})
	require.Len(t, results, 2)
	assert.Equal(t, "one", results[0].Location(), "both score 1.0, more matches first")
	assert.Equal(t, "two", results[1].Location())

	assert.Empty(t, idx.PartialSearch([]string{"zebra"}))
	assert.Empty(t, idx.PartialSearch([]string{"bananas"}))
}

func TestSearchDispatch(t *testing.T) {
	idx := newTestIndex()
	idx.AddAll(strings.Fields("apple apricot"), "one")

	assert.Empty(t, idx.Search([]string{"ap"}, true))
	assert.Len(t, idx.Search([]string{"ap"}, false), 1)
}

func TestDuplicateQueriesCountOnce(t *testing.T) {
	idx := newTestIndex()
	idx.AddAll(strings.Fields("cat dog"), "one")

	results := idx.ExactSearch([]string{"cat", "cat"})
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Count())
}

func TestSearchIsReadOnly(t *testing.T) {
	idx := newTestIndex()
	idx.AddAll(strings.Fields("alpha beta gamma alpha"), "one")
	before := idx.Snapshot()
	counts := idx.WordCounts()

	first := idx.PartialSearch([]string{"a", "g"})
	second := idx.PartialSearch([]string{"a", "g"})

	assert.Equal(t, first, second)
	assert.Equal(t, before, idx.Snapshot())
	assert.Equal(t, counts, idx.WordCounts())
}

func TestRankingLawOnRandomCorpus(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	vocab := strings.Fields("ant bee cat cow dog eel elk emu fox gnu hen yak")
	idx := newTestIndex()
	for d := 0; d < 60; d++ {
		n := 1 + rng.Intn(30)
		words := make([]string, n)
		for i := range words {
			words[i] = vocab[rng.Intn(len(vocab))]
		}
		loc := fmt.Sprintf("Doc-%02d", d)
		if d%2 == 0 {
			loc = strings.ToLower(loc)
		}
		idx.AddAll(words, loc)
	}

	for _, exact := range []bool{true, false} {
		results := idx.Search([]string{"cat", "e"}, exact)
		for i := 1; i < len(results); i++ {
			r1, r2 := results[i-1], results[i]
			ok := r1.Score() > r2.Score() ||
				(r1.Score() == r2.Score() && r1.Count() > r2.Count()) ||
				(r1.Score() == r2.Score() && r1.Count() == r2.Count() &&
					strings.ToLower(r1.Location()) <= strings.ToLower(r2.Location()))
			assert.True(t, ok, "results %d and %d out of order: %+v %+v", i-1, i, r1, r2)
		}
	}
}

func TestPartialIsSupersetOfExact(t *testing.T) {
	idx := newTestIndex()
	idx.AddAll(strings.Fields("car cart carton scar"), "one")
	idx.AddAll(strings.Fields("car"), "two")
	idx.AddAll(strings.Fields("cartography"), "three")

	locations := func(results []Result) map[string]bool {
		set := make(map[string]bool)
		for _, r := range results {
			set[r.Location()] = true
		}
		return set
	}
	exact := locations(idx.ExactSearch([]string{"car"}))
	partial := locations(idx.PartialSearch([]string{"car"}))
	for loc := range exact {
		assert.True(t, partial[loc], loc)
	}
	assert.True(t, partial["three"])
	assert.False(t, exact["three"])
}

func TestEmptyWordIsIgnored(t *testing.T) {
	idx := NewWithStemmer(func(string) string { return "" })
	assert.False(t, idx.Add("anything", "x", 1))
	assert.Zero(t, idx.SizeWords())
	assert.False(t, idx.ContainsWordCount("x"))
}
