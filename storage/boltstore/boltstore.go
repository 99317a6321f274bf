// Package boltstore implements storage.Backend on top of an embedded
// bolt database (github.com/boltdb/bolt), the "embedded sorted-key-value
// store" backend named in the spec's out-of-scope collaborator list.
//
// Every row is stored under its order-preserving tuple-codec key
// (package tuple), so bolt's own byte-lexicographic cursor order
// already matches CompareTuple; the adapter does not need to re-sort
// anything it reads back.
package boltstore

import (
	"context"
	"os"
	"time"

	"github.com/azmodb/tupledb/internal/tuplepb"
	"github.com/azmodb/tupledb/storage"
	"github.com/azmodb/tupledb/tuple"
	"github.com/boltdb/bolt"
)

// Option configures Open.
type Option func(*options)

type options struct {
	timeout time.Duration
	mode    os.FileMode
	bucket  []byte
}

// WithTimeout sets the amount of time to wait to obtain bolt's file
// lock. Zero waits indefinitely.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithMode sets the file mode used when bolt creates the database
// file.
func WithMode(mode os.FileMode) Option {
	return func(o *options) { o.mode = mode }
}

// WithBucket overrides the name of the bolt bucket rows are stored
// under, letting one bolt file host more than one tuple database.
func WithBucket(name string) Option {
	return func(o *options) { o.bucket = []byte(name) }
}

// Store is a bolt-backed storage.Backend.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open creates or opens a bolt database at path.
func Open(path string, opts ...Option) (*Store, error) {
	o := &options{mode: 0600, bucket: []byte("kv")}
	for _, opt := range opts {
		opt(o)
	}

	db, err := bolt.Open(path, o.mode, &bolt.Options{Timeout: o.timeout})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(o.bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, bucket: o.bucket}, nil
}

// Scan implements storage.Backend.
func (s *Store) Scan(_ context.Context, args storage.ScanArgs) ([]storage.KV, error) {
	bounds := args.AsTupleScanArgs()

	var out []storage.KV
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			key, err := tuple.Decode(k)
			if err != nil {
				return err
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

			row := &tuplepb.Row{}
			tuplepb.MustUnmarshal(v, row)
			value, err := tuple.Decode(row.Value)
			if err != nil {
				return err
			}
			var val tuple.Value
			if len(value) > 0 {
				val = value[0]
			}
			out = append(out, storage.KV{Key: key, Value: val})
		}
		return nil
	})
	if err != nil {
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
func (s *Store) Commit(_ context.Context, w storage.Writes) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(s.bucket)
		for _, kv := range w.Set {
			k := tuple.Encode(nil, kv.Key)
			v := tuplepb.MustMarshal(&tuplepb.Row{
				Key:   k,
				Value: tuple.Encode(nil, tuple.Tuple{kv.Value}),
			})
			if err := bucket.Put(k, v); err != nil {
				return err
			}
		}
		for _, key := range w.Remove {
			k := tuple.Encode(nil, key)
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close implements storage.Backend.
func (s *Store) Close() error { return s.db.Close() }
