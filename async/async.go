// Package async implements the cooperative-suspension flavor of the
// engine (component C9): the same operations as package tupledb, but
// every call returns immediately with a Future instead of blocking,
// and the actual work runs one task at a time on a single background
// goroutine — "a single-threaded cooperative scheduler" per the spec's
// concurrency model, rather than a thread pool.
//
// Engine is a thin façade: it holds no state of its own beyond the
// task queue and delegates every operation to a wrapped *tupledb.Engine,
// matching the spec's "the async engine is typically a thin façade
// over a sync engine" note.
package async

import (
	"context"

	"github.com/azmodb/tupledb/storage"
	"github.com/azmodb/tupledb/tupledb"
	"github.com/azmodb/tupledb/tuple"
)

type task func()

// queue bridges an unbounded producer side (in) to a single-consumer
// side (out) without ever blocking a send on in, following the same
// pending-slice pattern the sync engine's own reactivity lineage uses
// for notification delivery (see notify.go in the teacher lineage).
func queue(in <-chan task, out chan<- task) {
	pending := make([]task, 0, 16)
	defer close(out)

	for {
		if len(pending) == 0 {
			t, ok := <-in
			if !ok {
				return
			}
			pending = append(pending, t)
		}

		select {
		case t, ok := <-in:
			if !ok {
				return
			}
			pending = append(pending, t)

		case out <- pending[0]:
			pending = pending[1:]
		}
	}
}

// Future is a pending result of an asynchronous Engine operation.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) resolve(v T, err error) {
	f.val, f.err = v, err
	close(f.done)
}

// Await blocks until the future resolves or ctx is done, whichever
// comes first.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Engine is the cooperative-suspension façade over a *tupledb.Engine.
type Engine struct {
	inner *tupledb.Engine
	in    chan task
	out   chan task
	quit  chan struct{}
}

// Wrap starts a scheduler goroutine running every queued operation
// against inner, one at a time, and returns the async façade over it.
func Wrap(inner *tupledb.Engine) *Engine {
	e := &Engine{
		inner: inner,
		in:    make(chan task),
		out:   make(chan task),
		quit:  make(chan struct{}),
	}
	go queue(e.in, e.out)
	go e.run()
	return e
}

func (e *Engine) run() {
	for {
		select {
		case t, ok := <-e.out:
			if !ok {
				return
			}
			t()
		case <-e.quit:
			return
		}
	}
}

func (e *Engine) submit(t task) { e.in <- t }

// Scan suspends: it returns a Future immediately and performs the
// scan on the scheduler goroutine.
func (e *Engine) Scan(ctx context.Context, args tuple.ScanArgs, txID int64) *Future[[]storage.KV] {
	f := newFuture[[]storage.KV]()
	e.submit(func() {
		rows, err := e.inner.Scan(ctx, args, txID)
		f.resolve(rows, err)
	})
	return f
}

// Commit suspends the same way Scan does.
func (e *Engine) Commit(ctx context.Context, w storage.Writes, txID int64) *Future[struct{}] {
	f := newFuture[struct{}]()
	e.submit(func() {
		err := e.inner.Commit(ctx, w, txID)
		f.resolve(struct{}{}, err)
	})
	return f
}

// Cancel suspends the same way Scan does.
func (e *Engine) Cancel(txID int64) *Future[struct{}] {
	f := newFuture[struct{}]()
	e.submit(func() {
		e.inner.Cancel(txID)
		f.resolve(struct{}{}, nil)
	})
	return f
}

// Subscribe suspends: registration happens on the scheduler goroutine,
// and the returned future resolves to the unsubscribe closure.
// Callbacks themselves run cooperatively too, scheduled back onto this
// same goroutine rather than invoked inline from whatever goroutine
// called Commit on the underlying sync engine.
func (e *Engine) Subscribe(bounds tuple.ScanArgs, callback func(storage.Writes)) *Future[func()] {
	f := newFuture[func()]()
	e.submit(func() {
		unsubscribe := e.inner.Subscribe(bounds, func(w storage.Writes) {
			e.submit(func() { callback(w) })
		})
		f.resolve(unsubscribe, nil)
	})
	return f
}

// Close suspends, then stops the scheduler goroutine once the close
// has run.
func (e *Engine) Close() *Future[struct{}] {
	f := newFuture[struct{}]()
	e.submit(func() {
		err := e.inner.Close()
		close(e.quit)
		f.resolve(struct{}{}, err)
	})
	return f
}
