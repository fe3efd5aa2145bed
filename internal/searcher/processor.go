// Package searcher turns query lines into ranked result lists, remembering
// one list per canonical query.
package searcher

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/internal/indexer/tokenizer"
)

const (
	outcomeComputed = "computed"
	outcomeCached   = "cached"
	outcomeEmpty    = "empty"
)

// Index is the read side of an index that queries run against.
type Index interface {
	Stem(word string) string
	Search(queries []string, exact bool) []index.Result
}

// Processor resolves query lines and keeps the results keyed by canonical
// query.
type Processor interface {
	// Search resolves one query line. Lines with no stems are ignored.
	Search(line string, exact bool)
	// SearchFile resolves every line of the file at path and returns once
	// all of them have results.
	SearchFile(path string, exact bool) error
	// Queries returns the canonical queries seen so far in sorted order.
	Queries() []string
	// Results returns the ranked results of a canonical query.
	Results(query string) []index.Result
	// Size returns the number of results of a canonical query, or -1 if
	// the query has not been seen.
	Size(query string) int
	// All returns a copy of every canonical query and its results.
	All() map[string][]index.Result
}

// Canonical returns the sorted unique stems of line joined by single
// spaces, and the stems themselves.
func Canonical(line string, stem func(string) string) (string, []string) {
	stems := tokenizer.UniqueStems(line, stem)
	return strings.Join(stems, " "), stems
}

func forEachLine(path string, fn func(line string)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening query file %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fn(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading query file %s: %w", path, err)
	}
	return nil
}

func sortedQueries(results map[string][]index.Result) []string {
	queries := make([]string, 0, len(results))
	for q := range results {
		queries = append(queries, q)
	}
	sort.Strings(queries)
	return queries
}

func copyResults(results map[string][]index.Result) map[string][]index.Result {
	out := make(map[string][]index.Result, len(results))
	for q, r := range results {
		out[q] = append([]index.Result(nil), r...)
	}
	return out
}
