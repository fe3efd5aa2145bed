package searcher

import (
	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/pkg/metrics"
)

// Direct resolves queries on the calling goroutine. It is not safe for
// concurrent use.
type Direct struct {
	index   Index
	results map[string][]index.Result
	metrics *metrics.Metrics
}

func NewDirect(idx Index, m *metrics.Metrics) *Direct {
	return &Direct{
		index:   idx,
		results: make(map[string][]index.Result),
		metrics: m,
	}
}

func (d *Direct) Search(line string, exact bool) {
	key, stems := Canonical(line, d.index.Stem)
	if len(stems) == 0 {
		d.metrics.Query(outcomeEmpty)
		return
	}
	if _, ok := d.results[key]; ok {
		d.metrics.Query(outcomeCached)
		return
	}
	d.results[key] = d.index.Search(stems, exact)
	d.metrics.Query(outcomeComputed)
}

func (d *Direct) SearchFile(path string, exact bool) error {
	return forEachLine(path, func(line string) { d.Search(line, exact) })
}

func (d *Direct) Queries() []string {
	return sortedQueries(d.results)
}

func (d *Direct) Results(query string) []index.Result {
	return append([]index.Result(nil), d.results[query]...)
}

func (d *Direct) Size(query string) int {
	r, ok := d.results[query]
	if !ok {
		return -1
	}
	return len(r)
}

func (d *Direct) All() map[string][]index.Result {
	return copyResults(d.results)
}
