// Package tupledb binds the tuple codec, sorted-scan primitives,
// storage backend, reactivity tracker, and concurrency log into a
// single transactional, reactive Engine — component C7 of the data
// model this module implements.
//
// The engine is deliberately the only thing in this module that takes
// a single exclusive lock across scan/commit/cancel: the spec's
// scheduling model treats one engine instance as executing one
// operation at a time against storage and the concurrency log, "the
// equivalent of a single exclusive lock around each engine method".
// Following the teacher's db.go, that lock is a plain sync.Mutex
// rather than anything fancier; there is exactly one writer path and
// no benefit to sharding it.
package tupledb

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/azmodb/tupledb/conflictlog"
	"github.com/azmodb/tupledb/reactivity"
	"github.com/azmodb/tupledb/storage"
	"github.com/azmodb/tupledb/tuple"
)

// Engine composes a storage.Backend with a reactivity.Tracker and a
// conflictlog.Log. The zero value is not usable; construct one with
// New.
type Engine struct {
	mu      sync.Mutex
	backend storage.Backend

	reactivity *reactivity.Tracker
	log        *conflictlog.Log

	nextTxID int64
}

// New wraps backend in an Engine. The reactivity tracker and
// concurrency log start empty.
func New(backend storage.Backend) *Engine {
	return &Engine{
		backend:    backend,
		reactivity: reactivity.New(),
		log:        conflictlog.New(),
	}
}

// NextTxID returns a fresh, process-unique, monotonically increasing
// transaction id for callers (typically package client) that open
// transactions against this engine.
func (e *Engine) NextTxID() int64 {
	return atomic.AddInt64(&e.nextTxID, 1)
}

// Scan delegates to the storage backend. If txID is non-zero, the
// scan's bounds are first recorded as a read in the concurrency log,
// so a later commit that touches this range from a different
// transaction will be detected as a conflict.
func (e *Engine) Scan(ctx context.Context, args tuple.ScanArgs, txID int64) ([]storage.KV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if txID != 0 {
		e.log.Read(txID, args)
	}
	return e.backend.Scan(ctx, storage.FromTupleScanArgs(args))
}

// Commit applies w atomically: if txID is non-zero, every key in w is
// first recorded as a write in the concurrency log and checked for a
// read-write conflict against txID's own recorded reads; on conflict
// the batch is never applied to storage and ErrReadWriteConflict is
// returned unchanged so callers can match it with errors.Is.
//
// On success the batch is committed to storage and then handed to the
// reactivity tracker for fan-out, all three steps happening while the
// engine lock is held so the sequence is atomic with respect to every
// other engine call.
func (e *Engine) Commit(ctx context.Context, w storage.Writes, txID int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if txID != 0 {
		for _, kv := range w.Set {
			e.log.Write(txID, kv.Key)
		}
		for _, key := range w.Remove {
			e.log.Write(txID, key)
		}
		if err := e.log.Commit(txID); err != nil {
			return err
		}
	}

	if err := e.backend.Commit(ctx, w); err != nil {
		return err
	}
	e.reactivity.Emit(w)
	return nil
}

// Cancel discards every concurrency-log entry of txID without checking
// for conflicts: its recorded reads, and the write entries a rejected
// Commit of txID left behind (Commit logs a batch's writes before the
// conflict check, and a rejected batch never reaches storage).
func (e *Engine) Cancel(txID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log.Cancel(txID)
}

// Subscribe registers callback for every future commit whose batch
// intersects bounds. It delegates straight to the reactivity tracker,
// which guards its own registry with its own mutex; subscription
// bookkeeping never touches storage or the concurrency log, so
// routing it through the engine's lock as well would only serialize
// unrelated work.
func (e *Engine) Subscribe(bounds tuple.ScanArgs, callback func(storage.Writes)) (unsubscribe func()) {
	return e.reactivity.Subscribe(bounds, callback)
}

// Close discards all subscriptions and releases the storage backend.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reactivity.Close()
	return e.backend.Close()
}
