package client

import (
	"github.com/azmodb/tupledb/storage"
	"github.com/azmodb/tupledb/subspace"
	"github.com/azmodb/tupledb/tuple"
)

// stripRows returns rows with prefix removed from every key, the
// shape a client or transaction hands back to its caller.
func stripRows(prefix tuple.Tuple, rows []storage.KV) []storage.KV {
	if len(prefix) == 0 {
		return rows
	}
	out := make([]storage.KV, len(rows))
	for i, kv := range rows {
		out[i] = storage.KV{Key: subspace.Strip(prefix, kv.Key), Value: kv.Value}
	}
	return out
}

// stripWrites is stripRows' counterpart for a commit batch, used to
// restate a reactivity callback's payload in subspace-local
// coordinates.
func stripWrites(prefix tuple.Tuple, w storage.Writes) storage.Writes {
	if len(prefix) == 0 {
		return w
	}
	out := storage.Writes{
		Set:    make([]storage.KV, len(w.Set)),
		Remove: make([]tuple.Tuple, len(w.Remove)),
	}
	for i, kv := range w.Set {
		out.Set[i] = storage.KV{Key: subspace.Strip(prefix, kv.Key), Value: kv.Value}
	}
	for i, t := range w.Remove {
		out.Remove[i] = subspace.Strip(prefix, t)
	}
	return out
}
