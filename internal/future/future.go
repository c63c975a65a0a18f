// Package future provides a cancellable, single-assignment result handle for
// one asynchronous call.
package future

import (
	"context"
	"errors"
	"sync"
)

// ErrCanceled is the result of a Future that was cancelled before its
// result was read. It wraps context.Canceled.
var ErrCanceled = errors.Join(errors.New("future: canceled"), context.Canceled)

// Future holds the eventual result of one call. It resolves exactly once.
type Future[T any] struct {
	done   chan struct{}
	cancel context.CancelFunc

	mu        sync.Mutex
	val       T
	err       error
	canceled  bool
	committed bool
}

// Commit marks the point after which a call's side effects are visible. It
// reports false if the Future was already cancelled; once it reports true,
// Cancel has no effect and the call's result is delivered as is.
type Commit func() bool

// Go runs fn on its own goroutine with a context derived from ctx and
// returns a Future for its result.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	return GoCommit(ctx, func(ctx context.Context, _ Commit) (T, error) {
		return fn(ctx)
	})
}

// GoCommit is Go for calls that mutate shared state. fn must call commit,
// while holding whatever lock guards that state, before mutating it, and
// must skip the mutation when commit reports false.
func GoCommit[T any](ctx context.Context, fn func(context.Context, Commit) (T, error)) *Future[T] {
	cctx, cancel := context.WithCancel(ctx)
	f := &Future[T]{
		done:   make(chan struct{}),
		cancel: cancel,
	}

	go func() {
		defer cancel()
		v, err := fn(cctx, func() bool { return f.commit(cctx) })
		f.resolve(v, err)
	}()
	return f
}

func (f *Future[T]) commit(ctx context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.canceled || ctx.Err() != nil {
		return false
	}
	f.committed = true
	return true
}

// Resolved returns an already completed Future.
func Resolved[T any](v T, err error) *Future[T] {
	f := &Future[T]{
		done:   make(chan struct{}),
		cancel: func() {},
	}
	f.resolve(v, err)
	return f
}

func (f *Future[T]) resolve(v T, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	select {
	case <-f.done:
		return
	default:
	}
	if f.canceled {
		var zero T
		v, err = zero, ErrCanceled
	}
	f.val, f.err = v, err
	close(f.done)
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the Future resolves or ctx is done. Abandoning the wait
// does not cancel the Future.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Cancel cancels the call's context and marks the Future so that its result,
// whenever it arrives, is reported as ErrCanceled. Cancelling a Future that
// has resolved or committed has no effect.
func (f *Future[T]) Cancel() {
	f.mu.Lock()
	select {
	case <-f.done:
		f.mu.Unlock()
		return
	default:
	}
	if f.committed {
		f.mu.Unlock()
		return
	}
	f.canceled = true
	f.mu.Unlock()
	f.cancel()
}

// Canceled reports whether Cancel took effect.
func (f *Future[T]) Canceled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canceled
}
