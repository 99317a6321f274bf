// Package storage defines the minimal sorted-map contract a backend
// must implement to serve as the tuple database's persistence layer:
// scan, atomic commit, and close. Concrete adapters live in
// sub-packages (memstore, boltstore, sqlitestore); the engine in
// package tupledb depends only on the Backend interface defined here.
package storage

import (
	"context"

	"github.com/azmodb/tupledb/tuple"
)

// ScanArgs carries only the already-expanded bound fields; Prefix is
// expanded into Gte/Lte upstream of the storage boundary (see
// tuple.ScanArgs.Normalize and the subspace package), so backends
// never need to reason about prefixes directly.
type ScanArgs struct {
	Gt, Gte, Lt, Lte tuple.Tuple
	Limit            int
	Reverse          bool
}

// FromTupleScanArgs normalizes a tuple.ScanArgs (expanding any Prefix)
// and projects it down to the fields a storage backend understands.
func FromTupleScanArgs(args tuple.ScanArgs) ScanArgs {
	n := args.Normalize()
	return ScanArgs{Gt: n.Gt, Gte: n.Gte, Lt: n.Lt, Lte: n.Lte, Limit: n.Limit, Reverse: n.Reverse}
}

// AsTupleScanArgs converts back, used by callers (e.g. the storage
// adapters) that want to reuse tuple.ScanArgs helpers like Contains.
func (a ScanArgs) AsTupleScanArgs() tuple.ScanArgs {
	return tuple.ScanArgs{Gt: a.Gt, Gte: a.Gte, Lt: a.Lt, Lte: a.Lte, Limit: a.Limit, Reverse: a.Reverse}
}

// KV is a stored key/value pair. The value type is tuple.Value: the
// richest type the data model defines, and the one every backend in
// this module knows how to persist. The core does not thread an
// arbitrary generic value type down to disk-backed adapters.
type KV struct {
	Key   tuple.Tuple
	Value tuple.Value
}

// Writes is an atomic batch: for any key, at most one of Set or Remove
// may mention it (producers are responsible for that invariant; see
// the client package).
type Writes struct {
	Set    []KV
	Remove []tuple.Tuple
}

// Backend is the contract a persistent or in-memory storage adapter
// must implement.
type Backend interface {
	// Scan returns matching pairs in key-ascending order (or
	// descending, if Reverse is set), honoring Limit.
	Scan(ctx context.Context, args ScanArgs) ([]KV, error)

	// Commit atomically applies a batch. A set-after-remove of the
	// same key yields a set; a remove-after-set yields a remove. Must
	// be atomic with respect to concurrent Scans.
	Commit(ctx context.Context, w Writes) error

	// Close releases the backend's resources.
	Close() error
}
