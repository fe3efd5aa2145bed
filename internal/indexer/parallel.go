package indexer

import (
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/internal/workqueue"
	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/pkg/metrics"
)

// SharedIndex is the synchronised index that worker-local indexes merge into.
type SharedIndex interface {
	Stem(word string) string
	Merge(other *index.InvertedIndex)
}

// ParallelBuilder indexes each file on a work queue into a private index
// and merges it into the shared one, so the shared lock is taken once per
// file rather than once per word.
type ParallelBuilder struct {
	queue   *workqueue.Queue
	shared  SharedIndex
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewParallelBuilder(queue *workqueue.Queue, shared SharedIndex, m *metrics.Metrics) *ParallelBuilder {
	return &ParallelBuilder{
		queue:   queue,
		shared:  shared,
		metrics: m,
		logger:  logger.WithComponent("parallel-indexer"),
	}
}

// Build submits one task per text file under root and waits for the queue
// to go idle, also when submission fails part way.
func (b *ParallelBuilder) Build(root string) error {
	paths, err := FindTextFiles(root)
	if err != nil {
		return err
	}
	for _, path := range paths {
		path := path
		if err := b.queue.Execute(func() { b.indexFile(path) }); err != nil {
			b.queue.Finish()
			return err
		}
	}
	b.queue.Finish()
	b.logger.Info("index built", "root", root, "files", len(paths), "workers", b.queue.Size())
	return nil
}

func (b *ParallelBuilder) indexFile(path string) {
	local := index.NewWithStemmer(b.shared.Stem)
	if err := IndexFile(path, local); err != nil {
		b.logger.Warn("skipping unreadable file", "path", path, "error", err)
		return
	}
	b.shared.Merge(local)
	b.metrics.DocIndexed()
	b.metrics.IndexMerged()
	b.logger.Debug("file merged", "path", path, "words", local.SizeWords())
}
