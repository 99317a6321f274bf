// Package rpc exposes a tupledb.Engine over gRPC: the process-boundary
// transport the spec names only through its contract ("the client may
// wrap a remote server via any request/response channel supporting
// push notifications"). Scan/Commit/Cancel are unary RPCs; Subscribe
// is server-streaming, so a remote client gets the same push-based
// reactivity the in-process client does.
//
// Messages are the hand-declared gogo/protobuf structs in
// internal/tuplepb rather than protoc-generated code: see codec.go for
// how they're wired into gRPC without the standard protobuf codec.
package rpc

import (
	"github.com/azmodb/tupledb/conflictlog"
	"github.com/azmodb/tupledb/internal/tuplepb"
	"github.com/azmodb/tupledb/storage"
	"github.com/azmodb/tupledb/tuple"
)

func encodeValue(v tuple.Value) []byte { return tuple.Encode(nil, tuple.Tuple{v}) }

func decodeValue(b []byte) (tuple.Value, error) {
	t, err := tuple.Decode(b)
	if err != nil {
		return tuple.Value{}, err
	}
	if len(t) == 0 {
		return tuple.Value{}, nil
	}
	return t[0], nil
}

func encodeBounds(args tuple.ScanArgs) *tuplepb.Bounds {
	n := args.Normalize()
	b := &tuplepb.Bounds{Limit: int32(n.Limit), Reverse: n.Reverse}
	if n.Gt != nil {
		b.Gt = tuple.Encode(nil, n.Gt)
	}
	if n.Gte != nil {
		b.Gte = tuple.Encode(nil, n.Gte)
	}
	if n.Lt != nil {
		b.Lt = tuple.Encode(nil, n.Lt)
	}
	if n.Lte != nil {
		b.Lte = tuple.Encode(nil, n.Lte)
	}
	return b
}

func decodeBounds(b *tuplepb.Bounds) (tuple.ScanArgs, error) {
	var args tuple.ScanArgs
	if b == nil {
		return args, nil
	}
	args.Limit = int(b.Limit)
	args.Reverse = b.Reverse

	var err error
	if len(b.Gt) > 0 {
		if args.Gt, err = tuple.Decode(b.Gt); err != nil {
			return args, err
		}
	}
	if len(b.Gte) > 0 {
		if args.Gte, err = tuple.Decode(b.Gte); err != nil {
			return args, err
		}
	}
	if len(b.Lt) > 0 {
		if args.Lt, err = tuple.Decode(b.Lt); err != nil {
			return args, err
		}
	}
	if len(b.Lte) > 0 {
		if args.Lte, err = tuple.Decode(b.Lte); err != nil {
			return args, err
		}
	}
	return args, nil
}

func encodeRows(rows []storage.KV) []*tuplepb.Row {
	out := make([]*tuplepb.Row, len(rows))
	for i, kv := range rows {
		out[i] = &tuplepb.Row{Key: tuple.Encode(nil, kv.Key), Value: encodeValue(kv.Value)}
	}
	return out
}

func decodeRows(rows []*tuplepb.Row) ([]storage.KV, error) {
	out := make([]storage.KV, len(rows))
	for i, r := range rows {
		key, err := tuple.Decode(r.Key)
		if err != nil {
			return nil, err
		}
		val, err := decodeValue(r.Value)
		if err != nil {
			return nil, err
		}
		out[i] = storage.KV{Key: key, Value: val}
	}
	return out, nil
}

func encodeWrites(w storage.Writes) []*tuplepb.WriteEntry {
	out := make([]*tuplepb.WriteEntry, 0, len(w.Set)+len(w.Remove))
	for _, kv := range w.Set {
		out = append(out, &tuplepb.WriteEntry{Key: tuple.Encode(nil, kv.Key), Value: encodeValue(kv.Value)})
	}
	for _, key := range w.Remove {
		out = append(out, &tuplepb.WriteEntry{Key: tuple.Encode(nil, key), Removed: true})
	}
	return out
}

func decodeWrites(entries []*tuplepb.WriteEntry) (storage.Writes, error) {
	var w storage.Writes
	for _, e := range entries {
		key, err := tuple.Decode(e.Key)
		if err != nil {
			return w, err
		}
		if e.Removed {
			w.Remove = append(w.Remove, key)
			continue
		}
		val, err := decodeValue(e.Value)
		if err != nil {
			return w, err
		}
		w.Set = append(w.Set, storage.KV{Key: key, Value: val})
	}
	return w, nil
}

func encodeEmit(w storage.Writes) *tuplepb.Emit {
	return &tuplepb.Emit{Writes: encodeWrites(w)}
}

func decodeEmit(e *tuplepb.Emit) (storage.Writes, error) {
	return decodeWrites(e.Writes)
}

// isConflict reports whether err is the conflict-log's sentinel,
// letting the server translate it into CommitResponse.Conflict
// instead of a generic gRPC status.
func isConflict(err error) bool { return err == conflictlog.ErrReadWriteConflict }
