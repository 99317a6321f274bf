package memstore

import (
	"context"
	"testing"

	"github.com/azmodb/tupledb/storage"
	"github.com/azmodb/tupledb/tuple"
)

func key(s string) tuple.Tuple { return tuple.Tuple{tuple.String(s)} }

func TestCommitAndScan(t *testing.T) {
	ctx := context.Background()
	s := New()

	err := s.Commit(ctx, storage.Writes{Set: []storage.KV{
		{Key: key("b"), Value: tuple.Number(2)},
		{Key: key("a"), Value: tuple.Number(1)},
		{Key: key("c"), Value: tuple.Number(3)},
	}})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	got, err := s.Scan(ctx, storage.ScanArgs{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 results, have %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if tuple.CompareTuple(got[i-1].Key, got[i].Key) >= 0 {
			t.Fatalf("scan results not sorted: %v", got)
		}
	}
}

func TestCommitSetAfterRemoveIsASet(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.Commit(ctx, storage.Writes{Set: []storage.KV{{Key: key("a"), Value: tuple.Number(1)}}}); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := s.Commit(ctx, storage.Writes{
		Remove: []tuple.Tuple{key("a")},
		Set:    []storage.KV{{Key: key("a"), Value: tuple.Number(2)}},
	}); err != nil {
		t.Fatalf("commit: %v", err)
	}

	got, err := s.Scan(ctx, storage.ScanArgs{Gte: key("a"), Lte: key("a")})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 1 || got[0].Value.AsNumber() != 2 {
		t.Fatalf("expected surviving value 2, got %+v", got)
	}
}

func TestScanIsConcurrencySafeDuringCommit(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.Commit(ctx, storage.Writes{Set: []storage.KV{{Key: key("a"), Value: tuple.Number(1)}}}); err != nil {
		t.Fatalf("commit: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			_, _ = s.Scan(ctx, storage.ScanArgs{})
		}
	}()

	for i := 0; i < 100; i++ {
		_ = s.Commit(ctx, storage.Writes{Set: []storage.KV{{Key: key("b"), Value: tuple.Number(float64(i))}}})
	}
	<-done
}
