package enginemetrics

import (
	"context"
	"testing"

	"github.com/azmodb/tupledb/storage"
	"github.com/azmodb/tupledb/storage/memstore"
	"github.com/azmodb/tupledb/tuple"
	"github.com/azmodb/tupledb/tupledb"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func scoreKey(name string) tuple.Tuple {
	return tuple.Tuple{tuple.String("score"), tuple.String(name)}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := new(dto.Metric)
	if err := c.Write(m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func histogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	m := new(dto.Metric)
	if err := h.(prometheus.Metric).Write(m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestCommitIncrementsCommitsAndFanout(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := New(tupledb.New(memstore.New()), Options{Registerer: reg})
	ctx := context.Background()

	txID := e.inner.NextTxID()
	w := storage.Writes{Set: []storage.KV{{Key: scoreKey("chet"), Value: tuple.Number(5)}}}
	if err := e.Commit(ctx, w, txID); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if got := counterValue(t, e.commits); got != 1 {
		t.Fatalf("commits = %v, want 1", got)
	}
	if got := histogramCount(t, e.commitLatency); got != 1 {
		t.Fatalf("commitLatency count = %v, want 1", got)
	}
	if got := histogramCount(t, e.fanoutSize); got != 1 {
		t.Fatalf("fanoutSize count = %v, want 1", got)
	}
}

func TestCommitConflictIncrementsConflicts(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := New(tupledb.New(memstore.New()), Options{Registerer: reg})
	ctx := context.Background()

	seed := e.inner.NextTxID()
	if err := e.Commit(ctx, storage.Writes{Set: []storage.KV{{Key: scoreKey("chet"), Value: tuple.Number(1)}}}, seed); err != nil {
		t.Fatalf("seed commit: %v", err)
	}

	reader := e.inner.NextTxID()
	bounds := tuple.ScanArgs{Prefix: tuple.Tuple{tuple.String("score")}}
	if _, err := e.Scan(ctx, bounds, reader); err != nil {
		t.Fatalf("scan: %v", err)
	}

	writer := e.inner.NextTxID()
	if err := e.Commit(ctx, storage.Writes{Set: []storage.KV{{Key: scoreKey("chet"), Value: tuple.Number(2)}}}, writer); err != nil {
		t.Fatalf("writer commit: %v", err)
	}

	err := e.Commit(ctx, storage.Writes{Set: []storage.KV{{Key: scoreKey("juan"), Value: tuple.Number(3)}}}, reader)
	if err == nil {
		t.Fatal("expected a conflict error")
	}

	if got := counterValue(t, e.conflicts); got != 1 {
		t.Fatalf("conflicts = %v, want 1", got)
	}
}

func TestCancelIncrementsCancels(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := New(tupledb.New(memstore.New()), Options{Registerer: reg})

	txID := e.inner.NextTxID()
	e.Cancel(txID)

	if got := counterValue(t, e.cancels); got != 1 {
		t.Fatalf("cancels = %v, want 1", got)
	}
}
