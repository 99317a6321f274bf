package client

import (
	"context"
	"testing"

	"github.com/azmodb/tupledb/storage/memstore"
	"github.com/azmodb/tupledb/tuple"
	"github.com/azmodb/tupledb/tupledb"
)

func scoreKey(name string) tuple.Tuple {
	return tuple.Tuple{tuple.String("score"), tuple.String(name)}
}

func newTestClient() *Client {
	return New(tupledb.New(memstore.New()))
}

func TestTransactionSetCommitThenVisibleToNewScan(t *testing.T) {
	ctx := context.Background()
	c := newTestClient()
	defer c.Close()

	tx := c.Transact()
	tx.Set(scoreKey("chet"), tuple.Number(3))
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	rows, err := c.Scan(ctx, tuple.ScanArgs{Prefix: tuple.Tuple{tuple.String("score")}})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(rows) != 1 || !rows[0].Key.Equal(scoreKey("chet")) {
		t.Fatalf("expected committed row visible, got %+v", rows)
	}
}

func TestTransactionReadYourOwnWrites(t *testing.T) {
	ctx := context.Background()
	c := newTestClient()
	defer c.Close()

	tx := c.Transact()
	tx.Set(scoreKey("chet"), tuple.Number(3))

	v, ok, err := tx.Get(ctx, scoreKey("chet"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || v.AsNumber() != 3 {
		t.Fatalf("expected buffered value visible before commit, got %v, %v", v, ok)
	}

	// not yet committed, so a fresh non-transactional scan must not see it
	rows, err := c.Scan(ctx, tuple.ScanArgs{Prefix: tuple.Tuple{tuple.String("score")}})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected uncommitted write invisible to others, got %+v", rows)
	}
}

func TestTransactionCanceledWriteNeverApplied(t *testing.T) {
	ctx := context.Background()
	c := newTestClient()
	defer c.Close()

	tx := c.Transact()
	tx.Set(scoreKey("chet"), tuple.Number(3))
	if err := tx.Cancel(ctx); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	rows, err := c.Scan(ctx, tuple.ScanArgs{Prefix: tuple.Tuple{tuple.String("score")}})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected canceled write to never apply, got %+v", rows)
	}
}

func TestSecondCommitAfterCommitIsTransactionClosed(t *testing.T) {
	ctx := context.Background()
	c := newTestClient()
	defer c.Close()

	tx := c.Transact()
	tx.Set(scoreKey("chet"), tuple.Number(3))
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := tx.Commit(ctx); err != ErrTransactionClosed {
		t.Fatalf("expected ErrTransactionClosed, got %v", err)
	}
}

func TestSubspaceScopesKeysAndStripsPrefix(t *testing.T) {
	ctx := context.Background()
	c := newTestClient()
	defer c.Close()

	sub := c.Subspace(tuple.Tuple{tuple.String("users")})
	tx := sub.Transact()
	tx.Set(tuple.Tuple{tuple.String("alice")}, tuple.Number(1))
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	rows, err := sub.Scan(ctx, tuple.ScanArgs{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(rows) != 1 || !rows[0].Key.Equal(tuple.Tuple{tuple.String("alice")}) {
		t.Fatalf("expected subspace-relative key, got %+v", rows)
	}

	root, err := c.Scan(ctx, tuple.ScanArgs{Prefix: tuple.Tuple{tuple.String("users")}})
	if err != nil {
		t.Fatalf("root scan: %v", err)
	}
	if len(root) != 1 || !root[0].Key.Equal(tuple.Tuple{tuple.String("users"), tuple.String("alice")}) {
		t.Fatalf("expected absolute key from root client, got %+v", root)
	}
}

func TestTransactRetriesOnConflictThenSucceeds(t *testing.T) {
	ctx := context.Background()
	c := newTestClient()
	defer c.Close()

	bounds := tuple.ScanArgs{Gt: tuple.Tuple{tuple.String("score")}, Lte: tuple.Tuple{tuple.String("score"), tuple.Max}}

	attempts := 0
	err := Transact(ctx, c, func(ctx context.Context, tx *Transaction) error {
		attempts++
		if _, err := tx.Scan(ctx, bounds); err != nil {
			return err
		}
		// simulate an interloper writing into the read range on the
		// first attempt only, so the first commit must conflict and the
		// second must succeed.
		if attempts == 1 {
			interloper := c.Transact()
			interloper.Set(scoreKey("chet"), tuple.Number(1))
			if err := interloper.Commit(ctx); err != nil {
				return err
			}
		}
		tx.Set(tuple.Tuple{tuple.String("total")}, tuple.Number(1))
		return nil
	})
	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected exactly one retry (2 attempts), got %d", attempts)
	}
}

func TestTransactComposesWithExistingTransaction(t *testing.T) {
	ctx := context.Background()
	c := newTestClient()
	defer c.Close()

	tx := c.Transact()
	defer tx.Cancel(ctx)

	inner := 0
	err := Transact(ctx, tx, func(ctx context.Context, inTx *Transaction) error {
		inner++
		if inTx != tx {
			t.Fatalf("expected composition to hand back the same transaction")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if inner != 1 {
		t.Fatalf("expected fn invoked exactly once with no retry wrapping, got %d", inner)
	}
}
