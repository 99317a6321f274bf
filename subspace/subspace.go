// Package subspace implements the prefix-rewriting helpers that give
// clients and transactions a prefix-scoped view of the database: every
// external call is transparently prepended with an immutable prefix
// tuple before it reaches storage, and every result has that prefix
// stripped before it reaches the caller.
package subspace

import (
	"github.com/azmodb/tupledb/internal/sorted"
	"github.com/azmodb/tupledb/tuple"
)

// Prepend returns prefix++t as a fresh tuple.
func Prepend(prefix, t tuple.Tuple) tuple.Tuple { return prefix.Append(t...) }

// Strip returns t with prefix removed. It panics if prefix is not
// actually a prefix of t, since that indicates a programming error at
// a layer that should have already guaranteed it (storage only ever
// returns keys that live under the subspace it was scanned with).
func Strip(prefix, t tuple.Tuple) tuple.Tuple {
	if !tuple.HasPrefix(t, prefix) {
		panic("subspace: key does not have expected prefix")
	}
	return t[len(prefix):].Clone()
}

// NormalizeScanArgs prepends prefix to every bound of args. When only
// Prefix is set on args, it is combined with prefix and converted to
// explicit Gte/Lte bounds so storage never needs to know about
// subspaces. Limit passes through unchanged.
func NormalizeScanArgs(prefix tuple.Tuple, args tuple.ScanArgs) tuple.ScanArgs {
	out := tuple.ScanArgs{Limit: args.Limit, Reverse: args.Reverse}

	if args.Prefix != nil || (!args.HasBound()) {
		full := prefix.Append(args.Prefix...)
		out.Gte = full.Append(tuple.Min)
		out.Lte = full.Append(tuple.Max)
		return out
	}
	if args.Gt != nil {
		out.Gt = Prepend(prefix, args.Gt)
	}
	if args.Gte != nil {
		out.Gte = Prepend(prefix, args.Gte)
	}
	if args.Lt != nil {
		out.Lt = Prepend(prefix, args.Lt)
	}
	if args.Lte != nil {
		out.Lte = Prepend(prefix, args.Lte)
	}
	if out.Gt == nil && out.Gte == nil {
		out.Gte = prefix.Append(tuple.Min)
	}
	if out.Lt == nil && out.Lte == nil {
		out.Lte = prefix.Append(tuple.Max)
	}
	return out
}

// Writes is a pending batch of sets and removes, generic over the
// application's value type V.
type Writes[V any] struct {
	Set    []sorted.KV[V]
	Remove []tuple.Tuple
}

// PrependWrites rewrites a batch built against a subspace view into
// one storage can apply directly.
func PrependWrites[V any](prefix tuple.Tuple, w Writes[V]) Writes[V] {
	out := Writes[V]{
		Set:    make([]sorted.KV[V], len(w.Set)),
		Remove: make([]tuple.Tuple, len(w.Remove)),
	}
	for i, kv := range w.Set {
		out.Set[i] = sorted.KV[V]{Key: Prepend(prefix, kv.Key), Value: kv.Value}
	}
	for i, t := range w.Remove {
		out.Remove[i] = Prepend(prefix, t)
	}
	return out
}

// RemovePrefixFromWrites is the inverse of PrependWrites, used when a
// subspace view needs to report a batch (e.g. a reactivity callback's
// payload) back in its own un-prefixed coordinates.
func RemovePrefixFromWrites[V any](prefix tuple.Tuple, w Writes[V]) Writes[V] {
	out := Writes[V]{
		Set:    make([]sorted.KV[V], len(w.Set)),
		Remove: make([]tuple.Tuple, len(w.Remove)),
	}
	for i, kv := range w.Set {
		out.Set[i] = sorted.KV[V]{Key: Strip(prefix, kv.Key), Value: kv.Value}
	}
	for i, t := range w.Remove {
		out.Remove[i] = Strip(prefix, t)
	}
	return out
}
