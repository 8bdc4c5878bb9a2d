// Package fetch models the secondary data fetches owned by individual widget
// renderers as small state machines: Idle -> Loading -> Ready | Failed.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// State is the lifecycle position of a Task.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// Terminal reports whether the state is Ready or Failed.
func (s State) Terminal() bool {
	return s == StateReady || s == StateFailed
}

// ErrAlreadyStarted is returned by Start when the task left the Idle state.
var ErrAlreadyStarted = errors.New("fetch: task already started")

// Snapshot is a point in time view of a Task.
type Snapshot[T any] struct {
	State State
	Value T
	Err   error
}

// Option customises a Task.
type Option func(*config)

type config struct {
	timeout time.Duration
}

// WithTimeout bounds the fetch function. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(cfg *config) {
		if timeout > 0 {
			cfg.timeout = timeout
		}
	}
}

// Task runs a single fetch function at most once and exposes its progress.
type Task[T any] struct {
	mu       sync.Mutex
	snapshot Snapshot[T]
	timeout  time.Duration
	onChange func(Snapshot[T])
	done     chan struct{}
}

// NewTask returns an idle task.
func NewTask[T any](options ...Option) *Task[T] {
	cfg := config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return &Task[T]{
		snapshot: Snapshot[T]{State: StateIdle},
		timeout:  cfg.timeout,
		done:     make(chan struct{}),
	}
}

// OnChange registers a callback invoked after every state transition. It must
// be set before Start.
func (t *Task[T]) OnChange(fn func(Snapshot[T])) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = fn
}

// Start moves the task to Loading and runs fn in its own goroutine. The
// loading transition is published synchronously before Start returns.
func (t *Task[T]) Start(ctx context.Context, fn func(context.Context) (T, error)) error {
	if fn == nil {
		return errors.New("fetch: fetch function is nil")
	}
	t.mu.Lock()
	if t.snapshot.State != StateIdle {
		t.mu.Unlock()
		return ErrAlreadyStarted
	}
	t.snapshot = Snapshot[T]{State: StateLoading}
	notify, snap := t.onChange, t.snapshot
	t.mu.Unlock()

	if notify != nil {
		notify(snap)
	}

	go t.run(ctx, fn)
	return nil
}

func (t *Task[T]) run(ctx context.Context, fn func(context.Context) (T, error)) {
	runCtx := ctx
	if t.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	value, err := t.call(runCtx, fn)
	if err == nil {
		err = runCtx.Err()
	}

	t.mu.Lock()
	if err != nil {
		var zero T
		t.snapshot = Snapshot[T]{State: StateFailed, Value: zero, Err: err}
	} else {
		t.snapshot = Snapshot[T]{State: StateReady, Value: value}
	}
	notify, snap := t.onChange, t.snapshot
	close(t.done)
	t.mu.Unlock()

	if notify != nil {
		notify(snap)
	}
}

func (t *Task[T]) call(ctx context.Context, fn func(context.Context) (T, error)) (value T, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("fetch: panic: %v", recovered)
		}
	}()
	return fn(ctx)
}

// Snapshot returns the current state.
func (t *Task[T]) Snapshot() Snapshot[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot
}

// Wait blocks until the task settles or ctx is done. It returns the snapshot
// observed at that time; waiting on an idle task returns once ctx is done.
func (t *Task[T]) Wait(ctx context.Context) Snapshot[T] {
	select {
	case <-t.done:
	case <-ctx.Done():
	}
	return t.Snapshot()
}
