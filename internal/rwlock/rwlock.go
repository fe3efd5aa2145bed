// Package rwlock provides a shared/exclusive lock whose writer may re-enter.
//
// Go has no goroutine identity, so callers name themselves with an Owner
// token. A caller holding the write lock under owner o may take further read
// or write locks under o without blocking. Every state change happens under
// one mutex, and every release broadcasts so all waiters recheck their
// condition.
package rwlock

import (
	"fmt"
	"sync"
	"sync/atomic"

	apperrors "github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/concurrent-search-engine/pkg/metrics"
)

// Owner identifies a lock holder. The zero Owner is never handed out.
type Owner uint64

var lastOwner atomic.Uint64

// NewOwner returns a process-unique Owner.
func NewOwner() Owner {
	return Owner(lastOwner.Add(1))
}

// Lock is a reader/writer lock with a reentrant writer.
type Lock struct {
	mu      sync.Mutex
	cond    *sync.Cond
	readers int
	writers int
	active  Owner
	metrics *metrics.Metrics
}

// New creates an unlocked Lock. m may be nil.
func New(m *metrics.Metrics) *Lock {
	l := &Lock{metrics: m}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// AcquireRead blocks while a writer other than owner is active.
func (l *Lock) AcquireRead(owner Owner) {
	l.mu.Lock()
	defer l.mu.Unlock()
	waited := false
	for l.writers > 0 && l.active != owner {
		waited = true
		l.cond.Wait()
	}
	if waited {
		l.metrics.LockWaited("read")
	}
	l.readers++
}

// ReleaseRead drops one read hold.
func (l *Lock) ReleaseRead() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.readers <= 0 {
		return fmt.Errorf("releasing read lock with %d readers: %w", l.readers, apperrors.ErrIllegalState)
	}
	l.readers--
	if l.readers == 0 {
		l.cond.Broadcast()
	}
	return nil
}

// AcquireWrite blocks while any reader or writer is active, unless owner is
// already the active writer.
func (l *Lock) AcquireWrite(owner Owner) {
	l.mu.Lock()
	defer l.mu.Unlock()
	waited := false
	for (l.readers > 0 || l.writers > 0) && l.active != owner {
		waited = true
		l.cond.Wait()
	}
	if waited {
		l.metrics.LockWaited("write")
	}
	l.writers++
	l.active = owner
}

// ReleaseWrite drops one write hold. The last release clears the active
// writer and wakes every waiter.
func (l *Lock) ReleaseWrite(owner Owner) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writers <= 0 {
		return fmt.Errorf("releasing write lock with %d writers: %w", l.writers, apperrors.ErrIllegalState)
	}
	if l.active != owner {
		return fmt.Errorf("releasing write lock held by %d as %d: %w", l.active, owner, apperrors.ErrNotOwner)
	}
	l.writers--
	if l.writers == 0 {
		l.active = 0
		l.cond.Broadcast()
	}
	return nil
}

// Readers returns the number of read holds.
func (l *Lock) Readers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readers
}

// Writers returns the number of nested write holds.
func (l *Lock) Writers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writers
}

// IsActiveWriter reports whether owner currently holds the write lock.
func (l *Lock) IsActiveWriter(owner Owner) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writers > 0 && l.active == owner
}
