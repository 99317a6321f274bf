package client

import (
	"context"

	"github.com/azmodb/tupledb/conflictlog"
)

// maxTransactAttempts bounds the retry-on-conflict loop Transact
// drives; a transaction that still conflicts after this many attempts
// gives up and returns the last ErrReadWriteConflict to the caller.
const maxTransactAttempts = 5

// TransactSource is implemented by both *Client and *Transaction, so
// Transact can compose: a function written against a Client gets a
// fresh retrying transaction, while one already holding a Transaction
// is simply invoked against it directly (transactions compose rather
// than nest retries).
type TransactSource interface {
	withTransaction(ctx context.Context, fn func(context.Context, *Transaction) error) error
}

func (c *Client) withTransaction(ctx context.Context, fn func(context.Context, *Transaction) error) error {
	var lastErr error
	for attempt := 0; attempt < maxTransactAttempts; attempt++ {
		tx := c.Transact()

		if err := fn(ctx, tx); err != nil {
			tx.Cancel(ctx)
			if err != conflictlog.ErrReadWriteConflict {
				return err
			}
			lastErr = err
			continue
		}

		if err := tx.Commit(ctx); err != nil {
			tx.Cancel(ctx)
			if err != conflictlog.ErrReadWriteConflict {
				return err
			}
			lastErr = err
			continue
		}

		return nil
	}
	return lastErr
}

func (tx *Transaction) withTransaction(ctx context.Context, fn func(context.Context, *Transaction) error) error {
	return fn(ctx, tx)
}

// Transact runs fn against a transaction drawn from src. If src is a
// *Client, a fresh transaction is opened and retried up to
// maxTransactAttempts times on ErrReadWriteConflict, committing on
// success and canceling on any error. If src is already a
// *Transaction, fn runs directly against it with no wrapping or
// retry: nested Transact calls compose into the enclosing
// transaction, matching the spec's "transactions compose" rule.
//
// fn reports its outcome through the error return; callers that need
// a result should assign it to a variable captured by fn's closure.
func Transact(ctx context.Context, src TransactSource, fn func(context.Context, *Transaction) error) error {
	return src.withTransaction(ctx, fn)
}
