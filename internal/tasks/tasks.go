// Package tasks runs named units of work off the consuming goroutine and
// delivers their outcomes through per-kind mailboxes that the consumer
// drains once per processing tick.
package tasks

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Task is a named unit of work performed off the consuming goroutine. T is
// the task kind's success type; failures travel in the outcome's Err.
type Task[T any] interface {
	Name() string
	Perform(ctx context.Context) (T, error)
}

// Outcome is the result of one finished task, delivered exactly once
// through its kind's mailbox.
type Outcome[T any] struct {
	Name  string
	Value T
	Err   error
}

// Mailbox queues finished outcomes of a single task kind until the
// consumer drains them. It grows without bound, so a burst of completions
// between two drains never loses an outcome. Enqueue order is delivery
// order.
type Mailbox[T any] struct {
	mu      sync.Mutex
	pending []Outcome[T]
}

func NewMailbox[T any]() *Mailbox[T] {
	return &Mailbox[T]{}
}

func (m *Mailbox[T]) put(o Outcome[T]) {
	m.mu.Lock()
	m.pending = append(m.pending, o)
	m.mu.Unlock()
}

// Drain returns every outcome enqueued since the previous drain, oldest
// first. It never blocks waiting for in-flight tasks.
func (m *Mailbox[T]) Drain() []Outcome[T] {
	m.mu.Lock()
	out := m.pending
	m.pending = nil
	m.mu.Unlock()

	return out
}

// Pending reports whether the mailbox holds undrained outcomes.
func (m *Mailbox[T]) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.pending) > 0
}

// Runner executes tasks, each on its own goroutine.
type Runner struct {
	logger   hclog.Logger
	wg       sync.WaitGroup
	inflight atomic.Int64
}

func NewRunner(logger hclog.Logger) *Runner {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Runner{logger: logger.Named("tasks")}
}

// InFlight returns the number of tasks spawned but not yet finished.
func (r *Runner) InFlight() int {
	return int(r.inflight.Load())
}

// Wait blocks until every spawned task has delivered its outcome.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Spawn schedules task.Perform on its own goroutine and enqueues the
// outcome into mb. It returns immediately; the outcome becomes observable
// at the consumer's next drain.
func Spawn[T any](ctx context.Context, r *Runner, mb *Mailbox[T], task Task[T]) {
	name := task.Name()
	r.wg.Add(1)
	r.inflight.Add(1)
	r.logger.Debug("spawning task", "task", name)

	go func() {
		defer r.wg.Done()
		defer r.inflight.Add(-1)
		defer func() {
			// a panicking task kills only its own outcome
			if rec := recover(); rec != nil {
				r.logger.Error("task panicked, discarding its outcome", "task", name, "panic", rec)
			}
		}()

		start := time.Now()
		value, err := task.Perform(ctx)
		r.logger.Debug("task finished", "task", name, "elapsed", time.Since(start), "error", err)

		mb.put(Outcome[T]{Name: name, Value: value, Err: err})
	}()
}
