package client

import (
	"context"

	"github.com/azmodb/tupledb/internal/sorted"
	"github.com/azmodb/tupledb/storage"
	"github.com/azmodb/tupledb/subspace"
	"github.com/azmodb/tupledb/tuple"
	"github.com/azmodb/tupledb/tupledb"
)

type txState int32

const (
	txActive txState = iota
	txCommitted
	txCanceled
)

// txBuffer holds a transaction's pending writes in absolute (root
// subspace) key coordinates, so it can be shared unmodified across
// every Subspace view of the same transaction.
type txBuffer struct {
	set    []sorted.KV[tuple.Value]
	remove []tuple.Tuple
}

// Transaction buffers writes locally and overlays them on top of
// storage reads for read-your-writes semantics. It is single-owner:
// callers must not share one across goroutines.
//
// Subspace returns a view sharing the same underlying buffer and
// transaction id under a longer prefix, matching the spec's "shares
// the parent's buffer" requirement for nested subspace views.
type Transaction struct {
	engine *tupledb.Engine
	txID   int64
	prefix tuple.Tuple
	buf    *txBuffer
	state  *txState
}

// Subspace returns a view of tx scoped to prefix relative to the
// current one, sharing the same buffer and transaction id.
func (tx *Transaction) Subspace(prefix tuple.Tuple) *Transaction {
	return &Transaction{
		engine: tx.engine,
		txID:   tx.txID,
		prefix: tx.prefix.Append(prefix...),
		buf:    tx.buf,
		state:  tx.state,
	}
}

// Set buffers a set of t to v, canceling any pending remove of t.
func (tx *Transaction) Set(t tuple.Tuple, v tuple.Value) {
	abs := subspace.Prepend(tx.prefix, t)
	tx.buf.remove = sorted.RemoveTuple(tx.buf.remove, abs)
	tx.buf.set = sorted.UpsertPair(tx.buf.set, abs, v)
}

// Remove buffers a remove of t, canceling any pending set of t.
func (tx *Transaction) Remove(t tuple.Tuple) {
	abs := subspace.Prepend(tx.prefix, t)
	tx.buf.set = sorted.RemovePair(tx.buf.set, abs)
	tx.buf.remove = sorted.InsertTuple(tx.buf.remove, abs)
}

// Scan fetches storage rows matching args (logging a read against
// this transaction's id), overlays the transaction's own buffered
// writes, and returns the result sorted and re-limited.
func (tx *Transaction) Scan(ctx context.Context, args tuple.ScanArgs) ([]storage.KV, error) {
	if *tx.state != txActive {
		return nil, ErrTransactionClosed
	}

	abs := subspace.NormalizeScanArgs(tx.prefix, args)
	// Storage is always asked for ascending, unlimited results: the
	// buffered overlay below assumes ascending sorted order, and
	// Reverse/Limit are reapplied to the overlaid result afterward
	// since buffered writes can add rows storage's own Limit never
	// accounted for.
	unlimited := abs
	unlimited.Limit = 0
	unlimited.Reverse = false

	rows, err := tx.engine.Scan(ctx, unlimited, tx.txID)
	if err != nil {
		return nil, err
	}

	overlay := make([]sorted.KV[tuple.Value], len(rows))
	for i, kv := range rows {
		overlay[i] = sorted.KV[tuple.Value]{Key: kv.Key, Value: kv.Value}
	}
	for _, t := range tx.buf.remove {
		overlay = sorted.RemovePair(overlay, t)
	}
	bounds := abs.Normalize()
	for _, kv := range tx.buf.set {
		if bounds.Contains(kv.Key) {
			overlay = sorted.UpsertPair(overlay, kv.Key, kv.Value)
		}
	}

	out := make([]storage.KV, len(overlay))
	for i, kv := range overlay {
		out[i] = storage.KV{Key: kv.Key, Value: kv.Value}
	}
	if args.Reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	if args.Limit > 0 && args.Limit < len(out) {
		out = out[:args.Limit]
	}
	return stripRows(tx.prefix, out), nil
}

// Get returns the buffered or stored value at t, if any, without
// touching storage when the answer is already known locally.
func (tx *Transaction) Get(ctx context.Context, t tuple.Tuple) (tuple.Value, bool, error) {
	if *tx.state != txActive {
		return tuple.Value{}, false, ErrTransactionClosed
	}

	abs := subspace.Prepend(tx.prefix, t)
	if v, ok := sorted.GetPair(tx.buf.set, abs); ok {
		return v, true, nil
	}
	if sorted.SearchTuples(tx.buf.remove, abs).Found {
		return tuple.Value{}, false, nil
	}

	rows, err := tx.Scan(ctx, tuple.ScanArgs{Gte: t, Lte: t})
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

// Exists reports whether a row is visible at t, combining buffered
// writes with storage.
func (tx *Transaction) Exists(ctx context.Context, t tuple.Tuple) (bool, error) {
	_, ok, err := tx.Get(ctx, t)
	return ok, err
}

// Commit submits the transaction's buffered writes to the engine. If
// the engine returns any error (a read-write conflict or a storage
// error) the transaction is left active so the caller (typically the
// Transact retry wrapper) can inspect the error and decide whether to
// cancel and retry; only a successful commit marks the transaction
// committed. Calling Commit twice, or after Cancel, returns
// ErrTransactionClosed.
func (tx *Transaction) Commit(ctx context.Context) error {
	if *tx.state != txActive {
		return ErrTransactionClosed
	}

	w := storage.Writes{Remove: tx.buf.remove}
	w.Set = make([]storage.KV, len(tx.buf.set))
	for i, kv := range tx.buf.set {
		w.Set[i] = storage.KV{Key: kv.Key, Value: kv.Value}
	}

	if err := tx.engine.Commit(ctx, w, tx.txID); err != nil {
		return err
	}
	*tx.state = txCommitted
	return nil
}

// Cancel discards the transaction's recorded reads and buffered
// writes without committing. Calling Cancel twice, or after Commit,
// returns ErrTransactionClosed.
func (tx *Transaction) Cancel(ctx context.Context) error {
	if *tx.state != txActive {
		return ErrTransactionClosed
	}
	tx.engine.Cancel(tx.txID)
	*tx.state = txCanceled
	return nil
}
