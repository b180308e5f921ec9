// Package tasks runs deferred work after HTTP responses are sent.
// Handlers schedule a task and return immediately; a single runner
// goroutine drains the queue in scheduling order. Task failures are
// logged and swallowed, never reported to the client that scheduled
// them.
package tasks

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/batcomd/batcomd/pkg/logging"
)

// DefaultQueueSize bounds the number of tasks waiting to run.
const DefaultQueueSize = 64

// ErrClosed is returned by Schedule after the runner has stopped.
var ErrClosed = errors.New("task runner is closed")

// ErrQueueFull is returned when the queue has no room for another task.
var ErrQueueFull = errors.New("task queue is full")

// Func is the unit of deferred work.
type Func func(ctx context.Context) error

type task struct {
	id   string
	name string
	fn   Func
}

// Runner owns the task queue and its single consumer goroutine.
type Runner struct {
	log   *slog.Logger
	queue chan task

	mu     sync.Mutex
	closed bool

	wg   sync.WaitGroup
	idle chan struct{}

	pending sync.WaitGroup
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

// WithQueueSize overrides the queue bound.
func WithQueueSize(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.queue = make(chan task, n)
		}
	}
}

// NewRunner starts a runner and its consumer goroutine.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		log:   logging.Nop(),
		queue: make(chan task, DefaultQueueSize),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.wg.Add(1)
	go r.run()
	return r
}

// Schedule enqueues fn for execution after the caller returns. Tasks
// run strictly in the order they were scheduled. The returned id is the
// task's log correlation id.
func (r *Runner) Schedule(name string, fn Func) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return "", ErrClosed
	}

	t := task{id: uuid.NewString(), name: name, fn: fn}
	r.pending.Add(1)
	select {
	case r.queue <- t:
		r.log.Debug("task scheduled", "task", t.name, "task_id", t.id)
		return t.id, nil
	default:
		r.pending.Done()
		return "", ErrQueueFull
	}
}

// Flush blocks until every task scheduled so far has finished. Intended
// for tests and shutdown paths.
func (r *Runner) Flush() {
	r.pending.Wait()
}

// Close stops accepting new tasks, drains the queue, and waits for the
// consumer to exit.
func (r *Runner) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Runner) run() {
	defer r.wg.Done()
	for t := range r.queue {
		start := time.Now()
		err := t.fn(context.Background())
		r.pending.Done()
		if err != nil {
			// Deferred work has no client to report to. The error is
			// recorded here and dropped.
			r.log.Error("task failed",
				"task", t.name,
				"task_id", t.id,
				"error", err,
				"duration", time.Since(start))
			continue
		}
		r.log.Debug("task complete",
			"task", t.name,
			"task_id", t.id,
			"duration", time.Since(start))
	}
}
