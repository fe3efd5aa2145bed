// Package workqueue runs submitted tasks on a fixed pool of worker
// goroutines fed from a FIFO queue.
//
// Execute counts a task as pending before it becomes visible to workers, and
// a worker uncounts it only after the task returns, so Finish can never
// observe zero while a submitted task is still outstanding. Finish is an
// idle barrier and leaves the pool usable; Join drains and stops it for good.
package workqueue

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/pkg/metrics"
)

// DefaultWorkers is used when a non-positive worker count is requested.
const DefaultWorkers = 5

// Task is a unit of work.
type Task func()

// Queue is a fixed-size worker pool.
type Queue struct {
	mu       sync.Mutex
	ready    *sync.Cond
	tasks    []Task
	shutdown bool

	pendingMu sync.Mutex
	idle      *sync.Cond
	pending   int

	workers int
	wg      sync.WaitGroup
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures a Queue.
type Option func(*Queue)

// WithMetrics records task outcomes and pending depth.
func WithMetrics(m *metrics.Metrics) Option {
	return func(q *Queue) { q.metrics = m }
}

// New starts n idle workers.
func New(n int, opts ...Option) *Queue {
	if n <= 0 {
		n = DefaultWorkers
	}
	q := &Queue{
		workers: n,
		logger:  slog.Default().With("component", "workqueue"),
	}
	q.ready = sync.NewCond(&q.mu)
	q.idle = sync.NewCond(&q.pendingMu)
	for _, opt := range opts {
		opt(q)
	}
	q.wg.Add(n)
	for i := 0; i < n; i++ {
		go q.work(i)
	}
	q.logger.Debug("work queue started", "workers", n)
	return q
}

// Execute appends task to the queue.
func (q *Queue) Execute(task Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.shutdown {
		return apperrors.ErrQueueClosed
	}
	// pending rises before the task becomes visible to a worker.
	q.incrementPending()
	q.tasks = append(q.tasks, task)
	q.ready.Broadcast()
	return nil
}

// Finish blocks until every submitted task has completed.
func (q *Queue) Finish() {
	q.pendingMu.Lock()
	defer q.pendingMu.Unlock()
	for q.pending > 0 {
		q.idle.Wait()
	}
}

// Shutdown stops workers from picking up new tasks. Idle workers exit at
// once; busy workers exit after their current task.
func (q *Queue) Shutdown() {
	q.mu.Lock()
	q.shutdown = true
	q.ready.Broadcast()
	q.mu.Unlock()
}

// Join waits for pending work, shuts the pool down and waits for every
// worker to exit. The queue cannot be reused afterwards.
func (q *Queue) Join() {
	q.Finish()
	q.Shutdown()
	q.wg.Wait()
	q.logger.Debug("work queue joined", "workers", q.workers)
}

// Size returns the number of workers.
func (q *Queue) Size() int {
	return q.workers
}

// Pending returns the number of submitted tasks that have not finished.
func (q *Queue) Pending() int {
	q.pendingMu.Lock()
	defer q.pendingMu.Unlock()
	return q.pending
}

func (q *Queue) incrementPending() {
	q.pendingMu.Lock()
	q.pending++
	n := q.pending
	q.pendingMu.Unlock()
	q.metrics.SetPending(n)
}

func (q *Queue) decrementPending() {
	q.pendingMu.Lock()
	if q.pending > 0 {
		q.pending--
	}
	n := q.pending
	if n == 0 {
		q.idle.Broadcast()
	}
	q.pendingMu.Unlock()
	q.metrics.SetPending(n)
}

func (q *Queue) work(id int) {
	defer q.wg.Done()
	for {
		q.mu.Lock()
		for len(q.tasks) == 0 && !q.shutdown {
			q.ready.Wait()
		}
		if q.shutdown && len(q.tasks) == 0 {
			q.mu.Unlock()
			return
		}
		task := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		q.run(id, task)
	}
}

func (q *Queue) run(id int, task Task) {
	start := time.Now()
	status := "ok"
	defer func() {
		if r := recover(); r != nil {
			status = "panic"
			q.logger.Error("task failed",
				"worker", id,
				"error", fmt.Sprint(r),
			)
		}
		q.metrics.TaskFinished(status, time.Since(start).Seconds())
		q.decrementPending()
	}()
	task()
}
