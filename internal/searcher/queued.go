package searcher

import (
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/internal/workqueue"
	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/pkg/metrics"
)

// Queued resolves each query as a task on a work queue. The result map has
// its own mutex, separate from the index lock, and identical queries that
// race are collapsed into one index search.
type Queued struct {
	index   Index
	queue   *workqueue.Queue
	metrics *metrics.Metrics
	logger  *slog.Logger
	group   singleflight.Group

	mu      sync.Mutex
	results map[string][]index.Result
}

func NewQueued(idx Index, queue *workqueue.Queue, m *metrics.Metrics) *Queued {
	return &Queued{
		index:   idx,
		queue:   queue,
		metrics: m,
		logger:  slog.Default().With("component", "query-processor"),
		results: make(map[string][]index.Result),
	}
}

// Search submits line for resolution and returns without waiting. Call
// Finish on the queue, or use SearchFile, to wait for results.
func (q *Queued) Search(line string, exact bool) {
	key, stems := Canonical(line, q.index.Stem)
	if len(stems) == 0 {
		q.metrics.Query(outcomeEmpty)
		return
	}
	if q.known(key) {
		q.metrics.Query(outcomeCached)
		return
	}
	err := q.queue.Execute(func() { q.resolve(key, stems, exact) })
	if err != nil {
		q.logger.Warn("query dropped", "query", key, "error", err)
	}
}

func (q *Queued) resolve(key string, stems []string, exact bool) {
	_, _, shared := q.group.Do(key, func() (any, error) {
		if q.known(key) {
			q.metrics.Query(outcomeCached)
			return nil, nil
		}
		results := q.index.Search(stems, exact)
		q.mu.Lock()
		q.results[key] = results
		q.mu.Unlock()
		q.metrics.Query(outcomeComputed)
		return nil, nil
	})
	if shared {
		q.logger.Debug("query collapsed", "query", key)
	}
}

func (q *Queued) known(key string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.results[key]
	return ok
}

func (q *Queued) SearchFile(path string, exact bool) error {
	err := forEachLine(path, func(line string) { q.Search(line, exact) })
	q.queue.Finish()
	return err
}

func (q *Queued) Queries() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return sortedQueries(q.results)
}

func (q *Queued) Results(query string) []index.Result {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]index.Result(nil), q.results[query]...)
}

func (q *Queued) Size(query string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	r, ok := q.results[query]
	if !ok {
		return -1
	}
	return len(r)
}

func (q *Queued) All() map[string][]index.Result {
	q.mu.Lock()
	defer q.mu.Unlock()
	return copyResults(q.results)
}

var (
	_ Processor = (*Direct)(nil)
	_ Processor = (*Queued)(nil)
)
