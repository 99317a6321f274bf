package rpc

import (
	"context"

	"github.com/azmodb/tupledb/conflictlog"
	"github.com/azmodb/tupledb/internal/tuplepb"
	"github.com/azmodb/tupledb/storage"
	"github.com/azmodb/tupledb/tuple"
	"google.golang.org/grpc"
)

// Client is a thin wrapper over a *grpc.ClientConn speaking the
// TupleDB service, giving a remote caller the same Scan/Commit/Cancel/
// Subscribe shape as a local tupledb.Engine.
type Client struct {
	conn *grpc.ClientConn
}

// NewClient wraps an already-dialed connection. Dial conn with
// grpc.WithDefaultCallOptions(grpc.CallContentSubtype(rpc.CodecName()))
// so requests are marshaled with this package's gogo-based codec.
func NewClient(conn *grpc.ClientConn) *Client { return &Client{conn: conn} }

// CodecName returns the gRPC content-subtype this package's codec is
// registered under, for callers constructing dial options.
func CodecName() string { return codecName }

// Scan performs a remote scan.
func (c *Client) Scan(ctx context.Context, args tuple.ScanArgs, txID int64) ([]storage.KV, error) {
	req := &tuplepb.ScanRequest{Bounds: encodeBounds(args), TxId: txID}
	resp := new(tuplepb.ScanResponse)
	if err := c.conn.Invoke(ctx, "/"+serviceName+"/Scan", req, resp); err != nil {
		return nil, err
	}
	return decodeRows(resp.Rows)
}

// Commit performs a remote commit. A server-reported conflict comes
// back as conflictlog.ErrReadWriteConflict, matching the in-process
// engine's error so callers (including client.Transact) don't need a
// transport-specific conflict check.
func (c *Client) Commit(ctx context.Context, w storage.Writes, txID int64) error {
	req := &tuplepb.CommitRequest{Writes: encodeWrites(w), TxId: txID}
	resp := new(tuplepb.CommitResponse)
	if err := c.conn.Invoke(ctx, "/"+serviceName+"/Commit", req, resp); err != nil {
		return err
	}
	if resp.Conflict {
		return conflictlog.ErrReadWriteConflict
	}
	return nil
}

// Cancel performs a remote cancel.
func (c *Client) Cancel(ctx context.Context, txID int64) error {
	req := &tuplepb.CancelRequest{TxId: txID}
	resp := new(tuplepb.CancelResponse)
	return c.conn.Invoke(ctx, "/"+serviceName+"/Cancel", req, resp)
}

// Subscribe opens the server-streaming Subscribe RPC and invokes
// callback for every Emit the server pushes until ctx is canceled or
// the stream ends. It blocks the calling goroutine; run it in its own
// goroutine for a non-blocking subscription.
func (c *Client) Subscribe(ctx context.Context, bounds tuple.ScanArgs, callback func(storage.Writes)) error {
	stream, err := c.conn.NewStream(ctx, &ServiceDesc.Streams[0], "/"+serviceName+"/Subscribe")
	if err != nil {
		return err
	}
	if err := stream.SendMsg(&tuplepb.SubscribeRequest{Bounds: encodeBounds(bounds)}); err != nil {
		return err
	}
	if err := stream.CloseSend(); err != nil {
		return err
	}

	for {
		emit := new(tuplepb.Emit)
		if err := stream.RecvMsg(emit); err != nil {
			return err
		}
		w, err := decodeEmit(emit)
		if err != nil {
			return err
		}
		callback(w)
	}
}
