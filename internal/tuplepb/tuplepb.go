// Package tuplepb defines the protobuf wire envelope used to persist a
// single key/value row to an on-disk backend (boltstore) and to ship a
// conflict-log write entry across the RPC transport.
//
// Messages here are hand-declared against gogo/protobuf's struct-tag
// reflection marshaler rather than protoc-generated, matching the
// teacher lineage's small message shapes (pb.Pair, pb.PairInfo,
// pb.Record) — there is no wire-format reason to generate code for
// messages this small, just the usual protobuf tag discipline.
package tuplepb

import "github.com/gogo/protobuf/proto"

// Row is the on-disk envelope for one key/value pair: Key and Value
// are both order-preserving tuple-codec byte strings (see package
// tuple), so a backend that only understands raw bytes, like bolt,
// never needs to know anything about the tuple data model.
type Row struct {
	Key       []byte `protobuf:"bytes,1,opt,name=key,proto3" json:"key,omitempty"`
	Value     []byte `protobuf:"bytes,2,opt,name=value,proto3" json:"value,omitempty"`
	Tombstone bool   `protobuf:"varint,3,opt,name=tombstone,proto3" json:"tombstone,omitempty"`
}

func (m *Row) Reset()         { *m = Row{} }
func (m *Row) String() string { return proto.CompactTextString(m) }
func (*Row) ProtoMessage()    {}

// MustMarshal marshals m, panicking on failure. Panicking here mirrors
// the teacher's pb.MustMarshal: a marshal failure means the in-process
// message was built incorrectly, not that the backend is unhealthy.
func MustMarshal(m proto.Message) []byte {
	data, err := proto.Marshal(m)
	if err != nil {
		panic("tuplepb: marshal failed: " + err.Error())
	}
	return data
}

// MustUnmarshal unmarshals data into m, panicking on failure.
func MustUnmarshal(data []byte, m proto.Message) {
	if err := proto.Unmarshal(data, m); err != nil {
		panic("tuplepb: unmarshal failed: " + err.Error())
	}
}

// WriteEntry is the wire form of a single write sent to a subscriber
// over the RPC push transport (see package rpc), mirroring
// conflictlog.Entry's write payload.
type WriteEntry struct {
	Key     []byte `protobuf:"bytes,1,opt,name=key,proto3" json:"key,omitempty"`
	Value   []byte `protobuf:"bytes,2,opt,name=value,proto3" json:"value,omitempty"`
	Removed bool   `protobuf:"varint,3,opt,name=removed,proto3" json:"removed,omitempty"`
}

func (m *WriteEntry) Reset()         { *m = WriteEntry{} }
func (m *WriteEntry) String() string { return proto.CompactTextString(m) }
func (*WriteEntry) ProtoMessage()    {}

// Emit is the wire form of one reactivity notification: the subset of
// a committed write batch that fell inside a single listener's bounds.
type Emit struct {
	Writes []*WriteEntry `protobuf:"bytes,1,rep,name=writes" json:"writes,omitempty"`
}

func (m *Emit) Reset()         { *m = Emit{} }
func (m *Emit) String() string { return proto.CompactTextString(m) }
func (*Emit) ProtoMessage()    {}
