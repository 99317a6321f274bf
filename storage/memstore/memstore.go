// Package memstore implements the storage.Backend contract as a pure
// in-memory adapter, the minimal reference implementation of the
// sorted-map contract.
//
// Internally it follows the teacher lineage's approach: an immutable
// left-leaning red-black tree (github.com/azmodb/llrb), swapped in
// with a single atomic pointer store on commit, so that concurrent
// Scans never observe a torn write and never block on a writer.
package memstore

import (
	"context"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/azmodb/llrb"
	"github.com/azmodb/tupledb/storage"
	"github.com/azmodb/tupledb/tuple"
)

// entry is both the tree element and its own search matcher: Compare
// only ever looks at key, so a bare entry{key: k} is a valid matcher.
type entry struct {
	key   tuple.Tuple
	value tuple.Value
}

func (e *entry) Compare(other llrb.Element) int {
	return tuple.CompareTuple(e.key, other.(*entry).key)
}

// Store is an in-memory storage.Backend.
type Store struct {
	writer sync.Mutex // serializes commits
	root   unsafe.Pointer
}

// New returns an empty in-memory store.
func New() *Store {
	s := &Store{}
	s.store(&llrb.Tree{})
	return s
}

func (s *Store) store(t *llrb.Tree) { atomic.StorePointer(&s.root, unsafe.Pointer(t)) }
func (s *Store) load() *llrb.Tree   { return (*llrb.Tree)(atomic.LoadPointer(&s.root)) }

// Scan implements storage.Backend.
func (s *Store) Scan(_ context.Context, args storage.ScanArgs) ([]storage.KV, error) {
	tree := s.load()
	bounds := args.AsTupleScanArgs()

	var out []storage.KV
	tree.ForEach(func(elem llrb.Element) bool {
		e := elem.(*entry)
		if bounds.Lte != nil && tuple.CompareTuple(e.key, bounds.Lte) > 0 {
			return true // past the upper bound, stop
		}
		if bounds.Lt != nil && tuple.CompareTuple(e.key, bounds.Lt) >= 0 {
			return true
		}
		if bounds.Contains(e.key) {
			out = append(out, storage.KV{Key: e.key.Clone(), Value: e.value})
		}
		return false
	})

	if args.Reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	if args.Limit > 0 && args.Limit < len(out) {
		out = out[:args.Limit]
	}
	return out, nil
}

// Commit implements storage.Backend.
func (s *Store) Commit(_ context.Context, w storage.Writes) error {
	s.writer.Lock()
	defer s.writer.Unlock()

	txn := s.load().Txn()
	for _, kv := range w.Set {
		txn.Insert(&entry{key: kv.Key.Clone(), value: kv.Value})
	}
	for _, key := range w.Remove {
		txn.Delete(&entry{key: key})
	}
	s.store(txn.Commit())
	return nil
}

// Close implements storage.Backend.
func (s *Store) Close() error { return nil }

// Len returns the number of keys currently stored, mostly useful from
// tests.
func (s *Store) Len() int { return s.load().Len() }
