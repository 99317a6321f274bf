package rpc

import (
	"context"
	"log"

	"github.com/azmodb/tupledb/internal/tuplepb"
	"github.com/azmodb/tupledb/storage"
	"github.com/azmodb/tupledb/tuple"
)

// engine is the subset of *tupledb.Engine (or a decorator such as
// *enginemetrics.Engine) that Server needs. Depending on the
// interface rather than the concrete type lets a caller wrap the
// engine with metrics, logging, or anything else before handing it to
// NewServer, without this package importing enginemetrics.
type engine interface {
	Scan(ctx context.Context, args tuple.ScanArgs, txID int64) ([]storage.KV, error)
	Commit(ctx context.Context, w storage.Writes, txID int64) error
	Cancel(txID int64)
	Subscribe(bounds tuple.ScanArgs, callback func(storage.Writes)) (unsubscribe func())
}

// Server adapts an engine to TupleDBServer. Logging here uses the
// stdlib log package, matching the teacher lineage's CLI-adjacent
// tools: this is the one boundary in the module where a log line
// belongs, not the engine itself.
type Server struct {
	engine engine
}

// NewServer wraps eng for gRPC.
func NewServer(eng engine) *Server { return &Server{engine: eng} }

// Scan implements TupleDBServer.
func (s *Server) Scan(ctx context.Context, req *tuplepb.ScanRequest) (*tuplepb.ScanResponse, error) {
	args, err := decodeBounds(req.Bounds)
	if err != nil {
		return nil, err
	}
	rows, err := s.engine.Scan(ctx, args, req.TxId)
	if err != nil {
		return nil, err
	}
	return &tuplepb.ScanResponse{Rows: encodeRows(rows)}, nil
}

// Commit implements TupleDBServer. A read-write conflict is reported
// through CommitResponse.Conflict rather than a gRPC error status, so
// a client.Transact-style retry loop on the other end of the wire can
// distinguish "retry me" from "something is actually broken" without
// string-matching a status message.
func (s *Server) Commit(ctx context.Context, req *tuplepb.CommitRequest) (*tuplepb.CommitResponse, error) {
	w, err := decodeWrites(req.Writes)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Commit(ctx, w, req.TxId); err != nil {
		if isConflict(err) {
			return &tuplepb.CommitResponse{Conflict: true}, nil
		}
		return nil, err
	}
	return &tuplepb.CommitResponse{}, nil
}

// Cancel implements TupleDBServer.
func (s *Server) Cancel(_ context.Context, req *tuplepb.CancelRequest) (*tuplepb.CancelResponse, error) {
	s.engine.Cancel(req.TxId)
	return &tuplepb.CancelResponse{}, nil
}

// Subscribe implements TupleDBServer: it registers a listener against
// the engine for the lifetime of the stream and pushes one Emit per
// notification, unsubscribing when the client disconnects or the
// stream context is canceled.
func (s *Server) Subscribe(req *tuplepb.SubscribeRequest, stream TupleDB_SubscribeServer) error {
	bounds, err := decodeBounds(req.Bounds)
	if err != nil {
		return err
	}

	errc := make(chan error, 1)
	unsubscribe := s.engine.Subscribe(bounds, func(w storage.Writes) {
		if err := stream.Send(encodeEmit(w)); err != nil {
			select {
			case errc <- err:
			default:
			}
		}
	})
	defer unsubscribe()

	select {
	case <-stream.Context().Done():
		return stream.Context().Err()
	case err := <-errc:
		log.Printf("rpc: subscribe stream send failed, unsubscribing: %v", err)
		return err
	}
}
