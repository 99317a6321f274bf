package rpc

import (
	"context"

	"github.com/azmodb/tupledb/internal/tuplepb"
	"google.golang.org/grpc"
)

const serviceName = "tupledb.TupleDB"

// TupleDBServer is implemented by Server; it is the interface a
// hand-written server registers against ServiceDesc, playing the role
// a protoc-gen-go-grpc *_ServiceServer interface would.
type TupleDBServer interface {
	Scan(context.Context, *tuplepb.ScanRequest) (*tuplepb.ScanResponse, error)
	Commit(context.Context, *tuplepb.CommitRequest) (*tuplepb.CommitResponse, error)
	Cancel(context.Context, *tuplepb.CancelRequest) (*tuplepb.CancelResponse, error)
	Subscribe(*tuplepb.SubscribeRequest, TupleDB_SubscribeServer) error
}

// TupleDB_SubscribeServer is the server-side handle for the streaming
// Subscribe RPC.
type TupleDB_SubscribeServer interface {
	Send(*tuplepb.Emit) error
	grpc.ServerStream
}

type subscribeServer struct{ grpc.ServerStream }

func (s *subscribeServer) Send(e *tuplepb.Emit) error { return s.ServerStream.SendMsg(e) }

func scanHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(tuplepb.ScanRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TupleDBServer).Scan(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Scan"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TupleDBServer).Scan(ctx, req.(*tuplepb.ScanRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func commitHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(tuplepb.CommitRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TupleDBServer).Commit(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Commit"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TupleDBServer).Commit(ctx, req.(*tuplepb.CommitRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func cancelHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(tuplepb.CancelRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TupleDBServer).Cancel(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Cancel"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TupleDBServer).Cancel(ctx, req.(*tuplepb.CancelRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func subscribeHandler(srv interface{}, stream grpc.ServerStream) error {
	in := new(tuplepb.SubscribeRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(TupleDBServer).Subscribe(in, &subscribeServer{stream})
}

// ServiceDesc is the hand-written equivalent of what protoc-gen-go-grpc
// would emit for a service with three unary methods and one
// server-streaming method.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*TupleDBServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Scan", Handler: scanHandler},
		{MethodName: "Commit", Handler: commitHandler},
		{MethodName: "Cancel", Handler: cancelHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Subscribe", Handler: subscribeHandler, ServerStreams: true},
	},
	Metadata: "tupledb.proto",
}
