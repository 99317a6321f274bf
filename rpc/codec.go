package rpc

import (
	"github.com/gogo/protobuf/proto"
	"google.golang.org/grpc/encoding"
)

// codecName is registered as a gRPC content-subtype rather than
// overriding the default "proto" codec globally: this module's
// messages implement gogo/protobuf's proto.Message, not
// google.golang.org/protobuf's, and a process embedding this package
// alongside other gRPC services must not have its unrelated proto
// traffic silently rerouted through gogo's marshaler.
const codecName = "tupledbgogoproto"

func init() {
	encoding.RegisterCodec(gogoCodec{})
}

// gogoCodec adapts gogo/protobuf's reflection-based marshaler to
// gRPC's encoding.Codec, the same marshal/unmarshal pair
// internal/tuplepb already uses for on-disk rows.
type gogoCodec struct{}

func (gogoCodec) Name() string { return codecName }

func (gogoCodec) Marshal(v interface{}) ([]byte, error) {
	return proto.Marshal(v.(proto.Message))
}

func (gogoCodec) Unmarshal(data []byte, v interface{}) error {
	return proto.Unmarshal(data, v.(proto.Message))
}
