package index

import (
	"cmp"
	"slices"
	"strings"
)

// Result is one location's match against a query set.
type Result struct {
	location string
	count    int
	score    float64
}

func (r Result) Location() string { return r.location }

// Count is the number of matched word occurrences in the location.
func (r Result) Count() int { return r.count }

// Score is Count divided by the location's total word count.
func (r Result) Score() float64 { return r.score }

func (r *Result) update(matches int, wordCount int) {
	r.count += matches
	if wordCount > 0 {
		r.score = float64(r.count) / float64(wordCount)
	}
}

// Compare orders results by descending score, then descending count, then
// ascending location ignoring case. Locations equal ignoring case fall back
// to byte order so the order is total.
func Compare(a, b Result) int {
	if c := cmp.Compare(b.score, a.score); c != 0 {
		return c
	}
	if c := cmp.Compare(b.count, a.count); c != 0 {
		return c
	}
	if c := strings.Compare(strings.ToLower(a.location), strings.ToLower(b.location)); c != 0 {
		return c
	}
	return strings.Compare(a.location, b.location)
}

type collector struct {
	lookup  map[string]*Result
	results []*Result
}

func newCollector() *collector {
	return &collector{lookup: make(map[string]*Result)}
}

func (c *collector) result(location string) *Result {
	r, ok := c.lookup[location]
	if !ok {
		r = &Result{location: location}
		c.lookup[location] = r
		c.results = append(c.results, r)
	}
	return r
}

func (c *collector) ranked() []Result {
	ranked := make([]Result, len(c.results))
	for i, r := range c.results {
		ranked[i] = *r
	}
	slices.SortStableFunc(ranked, Compare)
	return ranked
}
