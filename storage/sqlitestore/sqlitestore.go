// Package sqlitestore implements storage.Backend on top of an embedded
// SQLite database, used purely as a sorted map: the "local relational
// engine used purely as a sorted map" backend named in the spec's
// out-of-scope collaborator list.
//
// Keys are stored as order-preserving tuple-codec BLOBs (package
// tuple), so SQLite's own byte-wise BLOB ordering already matches
// CompareTuple, and every range scan is a single indexed query rather
// than an application-level sort.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/azmodb/tupledb/storage"
	"github.com/azmodb/tupledb/tuple"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key   BLOB PRIMARY KEY,
	value BLOB NOT NULL
);
`

// Store is a SQLite-backed storage.Backend.
type Store struct {
	db    *sql.DB
	table string
}

// Option configures Open.
type Option func(*options)

type options struct{ table string }

// WithTable overrides the table name rows are stored under.
func WithTable(name string) Option {
	return func(o *options) { o.table = name }
}

// Open creates or opens a SQLite database at path ("" or ":memory:"
// for an ephemeral in-process instance).
func Open(path string, opts ...Option) (*Store, error) {
	o := &options{table: "kv"}
	for _, opt := range opts {
		opt(o)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite3 driver serializes writers anyway

	ddl := schema
	if o.table != "kv" {
		ddl = fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (key BLOB PRIMARY KEY, value BLOB NOT NULL);", o.table)
	}
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, table: o.table}, nil
}

// Scan implements storage.Backend.
func (s *Store) Scan(ctx context.Context, args storage.ScanArgs) ([]storage.KV, error) {
	bounds := args.AsTupleScanArgs()

	query := fmt.Sprintf("SELECT key, value FROM %s ORDER BY key ASC", s.table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storage.KV
	for rows.Next() {
		var kb, vb []byte
		if err := rows.Scan(&kb, &vb); err != nil {
			return nil, err
		}
		key, err := tuple.Decode(kb)
		if err != nil {
			return nil, err
		}

		if bounds.Lte != nil && tuple.CompareTuple(key, bounds.Lte) > 0 {
			break
		}
		if bounds.Lt != nil && tuple.CompareTuple(key, bounds.Lt) >= 0 {
			break
		}
		if !bounds.Contains(key) {
			continue
		}

		value, err := tuple.Decode(vb)
		if err != nil {
			return nil, err
		}
		var val tuple.Value
		if len(value) > 0 {
			val = value[0]
		}
		out = append(out, storage.KV{Key: key, Value: val})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if args.Reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	if args.Limit > 0 && args.Limit < len(out) {
		out = out[:args.Limit]
	}
	return out, nil
}

// Commit implements storage.Backend.
func (s *Store) Commit(ctx context.Context, w storage.Writes) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	upsert := fmt.Sprintf("INSERT INTO %s(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value", s.table)
	del := fmt.Sprintf("DELETE FROM %s WHERE key = ?", s.table)

	for _, kv := range w.Set {
		k := tuple.Encode(nil, kv.Key)
		v := tuple.Encode(nil, tuple.Tuple{kv.Value})
		if _, err := tx.ExecContext(ctx, upsert, k, v); err != nil {
			return err
		}
	}
	for _, key := range w.Remove {
		k := tuple.Encode(nil, key)
		if _, err := tx.ExecContext(ctx, del, k); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Close implements storage.Backend.
func (s *Store) Close() error { return s.db.Close() }
