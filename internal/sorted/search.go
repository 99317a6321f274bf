// Package sorted implements the binary-search primitives the spec
// calls for over in-memory sorted arrays of tuples and (tuple, value)
// pairs: set/remove/get/exists/scan all reduce to one binary search
// followed by a constant-time splice.
//
// It backs the client-side transaction write buffers (C8), which are
// small, append-heavy sorted slices rather than a persistent tree.
package sorted

import "github.com/azmodb/tupledb/tuple"

// SearchResult is the outcome of a binary search: either an exact
// match at Index, or the insertion position (Index) that preserves
// order.
type SearchResult struct {
	Index int
	Found bool
}

// KV is a (key, value) pair, generic over the application's value
// type.
type KV[V any] struct {
	Key   tuple.Tuple
	Value V
}

// SearchTuples finds t in a slice of tuples sorted by
// tuple.CompareTuple.
func SearchTuples(items []tuple.Tuple, t tuple.Tuple) SearchResult {
	lo, hi := 0, len(items)
	for lo < hi {
		mid := (lo + hi) / 2
		switch c := tuple.CompareTuple(items[mid], t); {
		case c == 0:
			return SearchResult{Index: mid, Found: true}
		case c < 0:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return SearchResult{Index: lo}
}

// SearchPairs finds t among a slice of KV pairs sorted by key.
func SearchPairs[V any](items []KV[V], t tuple.Tuple) SearchResult {
	lo, hi := 0, len(items)
	for lo < hi {
		mid := (lo + hi) / 2
		switch c := tuple.CompareTuple(items[mid].Key, t); {
		case c == 0:
			return SearchResult{Index: mid, Found: true}
		case c < 0:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return SearchResult{Index: lo}
}

// InsertTuple inserts t into a sorted slice, preserving order, and
// returns the new slice. It is a no-op if t is already present.
func InsertTuple(items []tuple.Tuple, t tuple.Tuple) []tuple.Tuple {
	res := SearchTuples(items, t)
	if res.Found {
		return items
	}
	items = append(items, tuple.Tuple{})
	copy(items[res.Index+1:], items[res.Index:])
	items[res.Index] = t
	return items
}

// RemoveTuple removes t from a sorted slice if present, and returns
// the new slice.
func RemoveTuple(items []tuple.Tuple, t tuple.Tuple) []tuple.Tuple {
	res := SearchTuples(items, t)
	if !res.Found {
		return items
	}
	return append(items[:res.Index], items[res.Index+1:]...)
}

// UpsertPair inserts or overwrites the pair keyed by t, and returns
// the new slice.
func UpsertPair[V any](items []KV[V], t tuple.Tuple, v V) []KV[V] {
	res := SearchPairs(items, t)
	if res.Found {
		items[res.Index].Value = v
		return items
	}
	items = append(items, KV[V]{})
	copy(items[res.Index+1:], items[res.Index:])
	items[res.Index] = KV[V]{Key: t, Value: v}
	return items
}

// RemovePair removes the pair keyed by t if present, and returns the
// new slice.
func RemovePair[V any](items []KV[V], t tuple.Tuple) []KV[V] {
	res := SearchPairs(items, t)
	if !res.Found {
		return items
	}
	return append(items[:res.Index], items[res.Index+1:]...)
}

// GetPair returns the value keyed by t, if present.
func GetPair[V any](items []KV[V], t tuple.Tuple) (V, bool) {
	res := SearchPairs(items, t)
	if !res.Found {
		var zero V
		return zero, false
	}
	return items[res.Index].Value, true
}
