package tuplepb

import "github.com/gogo/protobuf/proto"

// Bounds is the wire form of a tuple.ScanArgs, already normalized
// (Prefix expanded) by the caller: every field is an order-preserving
// tuple-codec byte string, empty meaning "unset".
type Bounds struct {
	Gt      []byte `protobuf:"bytes,1,opt,name=gt,proto3" json:"gt,omitempty"`
	Gte     []byte `protobuf:"bytes,2,opt,name=gte,proto3" json:"gte,omitempty"`
	Lt      []byte `protobuf:"bytes,3,opt,name=lt,proto3" json:"lt,omitempty"`
	Lte     []byte `protobuf:"bytes,4,opt,name=lte,proto3" json:"lte,omitempty"`
	Limit   int32  `protobuf:"varint,5,opt,name=limit,proto3" json:"limit,omitempty"`
	Reverse bool   `protobuf:"varint,6,opt,name=reverse,proto3" json:"reverse,omitempty"`
}

func (m *Bounds) Reset()         { *m = Bounds{} }
func (m *Bounds) String() string { return proto.CompactTextString(m) }
func (*Bounds) ProtoMessage()    {}

// ScanRequest is the wire form of an Engine.Scan call. TxId of 0 means
// a non-transactional scan.
type ScanRequest struct {
	Bounds *Bounds `protobuf:"bytes,1,opt,name=bounds" json:"bounds,omitempty"`
	TxId   int64   `protobuf:"varint,2,opt,name=tx_id,json=txId,proto3" json:"tx_id,omitempty"`
}

func (m *ScanRequest) Reset()         { *m = ScanRequest{} }
func (m *ScanRequest) String() string { return proto.CompactTextString(m) }
func (*ScanRequest) ProtoMessage()    {}

// ScanResponse carries the matching rows in the same order storage
// returned them.
type ScanResponse struct {
	Rows []*Row `protobuf:"bytes,1,rep,name=rows" json:"rows,omitempty"`
}

func (m *ScanResponse) Reset()         { *m = ScanResponse{} }
func (m *ScanResponse) String() string { return proto.CompactTextString(m) }
func (*ScanResponse) ProtoMessage()    {}

// CommitRequest is the wire form of an Engine.Commit call.
type CommitRequest struct {
	Writes []*WriteEntry `protobuf:"bytes,1,rep,name=writes" json:"writes,omitempty"`
	TxId   int64         `protobuf:"varint,2,opt,name=tx_id,json=txId,proto3" json:"tx_id,omitempty"`
}

func (m *CommitRequest) Reset()         { *m = CommitRequest{} }
func (m *CommitRequest) String() string { return proto.CompactTextString(m) }
func (*CommitRequest) ProtoMessage()    {}

// CommitResponse carries a conflict flag instead of forcing the client
// to string-match the error message across the wire.
type CommitResponse struct {
	Conflict bool `protobuf:"varint,1,opt,name=conflict,proto3" json:"conflict,omitempty"`
}

func (m *CommitResponse) Reset()         { *m = CommitResponse{} }
func (m *CommitResponse) String() string { return proto.CompactTextString(m) }
func (*CommitResponse) ProtoMessage()    {}

// CancelRequest is the wire form of an Engine.Cancel call.
type CancelRequest struct {
	TxId int64 `protobuf:"varint,1,opt,name=tx_id,json=txId,proto3" json:"tx_id,omitempty"`
}

func (m *CancelRequest) Reset()         { *m = CancelRequest{} }
func (m *CancelRequest) String() string { return proto.CompactTextString(m) }
func (*CancelRequest) ProtoMessage()    {}

// CancelResponse is empty; Cancel never fails.
type CancelResponse struct{}

func (m *CancelResponse) Reset()         { *m = CancelResponse{} }
func (m *CancelResponse) String() string { return proto.CompactTextString(m) }
func (*CancelResponse) ProtoMessage()    {}

// SubscribeRequest opens a server-streaming Subscribe call; the server
// streams back one Emit per commit that intersects Bounds until the
// client cancels the stream (which the server treats as unsubscribe).
type SubscribeRequest struct {
	Bounds *Bounds `protobuf:"bytes,1,opt,name=bounds" json:"bounds,omitempty"`
}

func (m *SubscribeRequest) Reset()         { *m = SubscribeRequest{} }
func (m *SubscribeRequest) String() string { return proto.CompactTextString(m) }
func (*SubscribeRequest) ProtoMessage()    {}
