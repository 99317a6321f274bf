package boltstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/azmodb/tupledb/storage"
	"github.com/azmodb/tupledb/tuple"
)

func key(s string) tuple.Tuple { return tuple.Tuple{tuple.String(s)} }

func openTemp(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBoltstoreCommitAndScan(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	err := s.Commit(ctx, storage.Writes{Set: []storage.KV{
		{Key: key("b"), Value: tuple.String("v2")},
		{Key: key("a"), Value: tuple.String("v1")},
	}})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	got, err := s.Scan(ctx, storage.ScanArgs{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, have %d", len(got))
	}
	if got[0].Key[0].AsString() != "a" || got[1].Key[0].AsString() != "b" {
		t.Fatalf("expected ascending key order, got %+v", got)
	}
}

func TestBoltstoreRemove(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	if err := s.Commit(ctx, storage.Writes{Set: []storage.KV{{Key: key("a"), Value: tuple.Number(1)}}}); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := s.Commit(ctx, storage.Writes{Remove: []tuple.Tuple{key("a")}}); err != nil {
		t.Fatalf("commit remove: %v", err)
	}

	got, err := s.Scan(ctx, storage.ScanArgs{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty store after remove, have %+v", got)
	}
}

func TestBoltstorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Commit(ctx, storage.Writes{Set: []storage.KV{{Key: key("a"), Value: tuple.Number(1)}}}); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Scan(ctx, storage.ScanArgs{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected row to survive reopen, have %+v", got)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected db file to exist: %v", err)
	}
}
