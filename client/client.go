// Package client implements the schema-typed façade over a tupledb
// Engine (component C8): a Client scoped to a subspace prefix, and
// Transactions that buffer writes locally, overlay them on storage
// reads for read-your-writes semantics, and commit or cancel against
// the engine's concurrency log.
package client

import (
	"context"

	"github.com/azmodb/tupledb/storage"
	"github.com/azmodb/tupledb/subspace"
	"github.com/azmodb/tupledb/tuple"
	"github.com/azmodb/tupledb/tupledb"
)

type perror string

func (e perror) Error() string { return string(e) }

// ErrTransactionClosed is returned by any Transaction method called
// after that transaction has already committed or canceled.
var ErrTransactionClosed = perror("client: transaction already committed or canceled")

// ErrGetExpectedSingle is returned by Get/Exists when more than one
// row matches the point lookup — storage returned more than one key
// equal to t under the comparator, which should never happen for a
// well-formed key, but is checked rather than assumed.
var ErrGetExpectedSingle = perror("client: get matched more than one row")

// Client wraps an Engine with an immutable subspace prefix. The zero
// Client is not usable; construct one with New.
type Client struct {
	engine *tupledb.Engine
	prefix tuple.Tuple
}

// New wraps engine with an empty (root) subspace.
func New(engine *tupledb.Engine) *Client {
	return &Client{engine: engine}
}

// Subspace returns a new Client whose view is scoped to prefix
// relative to the current one.
func (c *Client) Subspace(prefix tuple.Tuple) *Client {
	return &Client{engine: c.engine, prefix: c.prefix.Append(prefix...)}
}

// Scan performs a non-transactional range scan (no read is recorded
// in the concurrency log), returning rows with keys relative to the
// client's subspace.
func (c *Client) Scan(ctx context.Context, args tuple.ScanArgs) ([]storage.KV, error) {
	abs := subspace.NormalizeScanArgs(c.prefix, args)
	rows, err := c.engine.Scan(ctx, abs, 0)
	if err != nil {
		return nil, err
	}
	return stripRows(c.prefix, rows), nil
}

// Get performs a single-point scan and returns the value at t, if
// any. It returns ErrGetExpectedSingle if storage somehow holds more
// than one row at t.
func (c *Client) Get(ctx context.Context, t tuple.Tuple) (tuple.Value, bool, error) {
	rows, err := c.Scan(ctx, tuple.ScanArgs{Gte: t, Lte: t})
	if err != nil {
		return tuple.Value{}, false, err
	}
	if len(rows) > 1 {
		return tuple.Value{}, false, ErrGetExpectedSingle
	}
	if len(rows) == 0 {
		return tuple.Value{}, false, nil
	}
	return rows[0].Value, true, nil
}

// Exists reports whether a row is stored at t.
func (c *Client) Exists(ctx context.Context, t tuple.Tuple) (bool, error) {
	_, ok, err := c.Get(ctx, t)
	return ok, err
}

// Subscribe registers callback for every future commit whose batch
// intersects bounds, restated in the client's own subspace
// coordinates: both bounds and the keys the callback observes are
// relative to this client's prefix.
func (c *Client) Subscribe(bounds tuple.ScanArgs, callback func(storage.Writes)) (unsubscribe func()) {
	abs := subspace.NormalizeScanArgs(c.prefix, bounds)
	return c.engine.Subscribe(abs, func(w storage.Writes) {
		callback(stripWrites(c.prefix, w))
	})
}

// Transact opens a new transaction scoped to this client's subspace.
func (c *Client) Transact() *Transaction {
	state := txActive
	return &Transaction{
		engine: c.engine,
		txID:   c.engine.NextTxID(),
		prefix: c.prefix,
		buf:    &txBuffer{},
		state:  &state,
	}
}

// Close releases the underlying engine. Every Client sharing the same
// engine is invalidated by this call.
func (c *Client) Close() error { return c.engine.Close() }
