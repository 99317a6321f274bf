// Package enginemetrics instruments a tupledb.Engine's commit path
// with Prometheus counters and histograms: commit latency, conflict
// rate, and the number of keys in each committed batch. The engine itself stays free of
// any metrics dependency — instrumentation wraps it from the outside,
// the same layering the teacher lineage's sibling server tools use to
// keep the core library dependency-light.
package enginemetrics

import (
	"context"
	"time"

	"github.com/azmodb/tupledb/conflictlog"
	"github.com/azmodb/tupledb/storage"
	"github.com/azmodb/tupledb/tupledb"
	"github.com/azmodb/tupledb/tuple"
	"github.com/prometheus/client_golang/prometheus"
)

// Engine wraps a *tupledb.Engine, recording metrics around every call
// without changing its semantics.
type Engine struct {
	inner *tupledb.Engine

	commits       prometheus.Counter
	conflicts     prometheus.Counter
	cancels       prometheus.Counter
	commitLatency prometheus.Histogram
	fanoutSize    prometheus.Histogram
}

// Options configures the Prometheus metric names and registerer used
// by New.
type Options struct {
	Namespace  string
	Subsystem  string
	Registerer prometheus.Registerer
}

// New wraps inner and registers its metrics against opts.Registerer
// (prometheus.DefaultRegisterer if unset).
func New(inner *tupledb.Engine, opts Options) *Engine {
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	factory := prometheus.WrapRegistererWith(nil, opts.Registerer)

	e := &Engine{
		inner: inner,
		commits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: opts.Namespace, Subsystem: opts.Subsystem,
			Name: "commits_total", Help: "Total successful engine commits.",
		}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: opts.Namespace, Subsystem: opts.Subsystem,
			Name: "commit_conflicts_total", Help: "Total commits rejected with a read-write conflict.",
		}),
		cancels: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: opts.Namespace, Subsystem: opts.Subsystem,
			Name: "cancels_total", Help: "Total transactions canceled.",
		}),
		commitLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: opts.Namespace, Subsystem: opts.Subsystem,
			Name: "commit_duration_seconds", Help: "Time spent inside Engine.Commit, including storage and fan-out.",
			Buckets: prometheus.DefBuckets,
		}),
		fanoutSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: opts.Namespace, Subsystem: opts.Subsystem,
			Name: "commit_fanout_keys", Help: "Number of keys (set+remove) in each committed write batch.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}

	factory.MustRegister(e.commits, e.conflicts, e.cancels, e.commitLatency, e.fanoutSize)
	return e
}

// Scan delegates to the wrapped engine unmetered: reads don't
// contend for the commit-path budget this package tracks.
func (e *Engine) Scan(ctx context.Context, args tuple.ScanArgs, txID int64) ([]storage.KV, error) {
	return e.inner.Scan(ctx, args, txID)
}

// Commit delegates to the wrapped engine, recording latency and
// outcome.
func (e *Engine) Commit(ctx context.Context, w storage.Writes, txID int64) error {
	start := time.Now()
	err := e.inner.Commit(ctx, w, txID)
	e.commitLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		if err == conflictlog.ErrReadWriteConflict {
			e.conflicts.Inc()
		}
		return err
	}
	e.commits.Inc()
	e.fanoutSize.Observe(float64(len(w.Set) + len(w.Remove)))
	return nil
}

// Cancel delegates to the wrapped engine, recording the cancellation.
func (e *Engine) Cancel(txID int64) {
	e.cancels.Inc()
	e.inner.Cancel(txID)
}

// Subscribe delegates unmetered, matching Scan.
func (e *Engine) Subscribe(bounds tuple.ScanArgs, callback func(storage.Writes)) (unsubscribe func()) {
	return e.inner.Subscribe(bounds, callback)
}

// Close delegates to the wrapped engine.
func (e *Engine) Close() error { return e.inner.Close() }
