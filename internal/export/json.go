// Package export renders the index, word counts and query results as JSON
// documents and hands them to an output sink.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/internal/indexer/index"
)

// resultEntry is one ranked match. Score is pre-formatted so it always
// carries eight decimals.
type resultEntry struct {
	Where string      `json:"where"`
	Count int         `json:"count"`
	Score json.Number `json:"score"`
}

// IndexJSON renders word -> location -> positions with sorted keys.
func IndexJSON(snapshot map[string]map[string][]int) ([]byte, error) {
	if snapshot == nil {
		snapshot = map[string]map[string][]int{}
	}
	return encode(snapshot)
}

// CountsJSON renders location -> word count.
func CountsJSON(counts map[string]int) ([]byte, error) {
	if counts == nil {
		counts = map[string]int{}
	}
	return encode(counts)
}

// ResultsJSON renders query -> ranked results. A query without matches maps
// to an empty array.
func ResultsJSON(results map[string][]index.Result) ([]byte, error) {
	out := make(map[string][]resultEntry, len(results))
	for query, list := range results {
		entries := make([]resultEntry, 0, len(list))
		for _, r := range list {
			entries = append(entries, resultEntry{
				Where: r.Location(),
				Count: r.Count(),
				Score: json.Number(fmt.Sprintf("%.8f", r.Score())),
			})
		}
		out[query] = entries
	}
	return encode(out)
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "\t")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding json: %w", err)
	}
	return buf.Bytes(), nil
}
