// Package conflictlog implements the concurrency log (C6): a linear,
// append-only record of per-transaction reads and writes used to
// detect read-write conflicts at commit time.
//
// This is optimistic concurrency control over range-read sets: a
// transaction that scanned a range and later commits fails only if
// some other transaction committed a write inside that range in the
// interim. Disjoint readers and writers always commit freely.
package conflictlog

import (
	"sync"

	"github.com/azmodb/tupledb/tuple"
)

// ErrReadWriteConflict is returned by Commit when a transaction's
// recorded reads were invalidated by a write committed by another,
// concurrently-live transaction.
var ErrReadWriteConflict = perror("conflictlog: read-write conflict")

type perror string

func (e perror) Error() string { return string(e) }

// Kind identifies the payload carried by an Entry.
type Kind uint8

const (
	KindRead Kind = iota
	KindWrite
)

// Entry is one record in the log: a read's payload is its scan bounds,
// a write's payload is the single tuple it touched.
type Entry struct {
	TxID   int64
	Kind   Kind
	Bounds tuple.ScanArgs // set when Kind == KindRead
	Key    tuple.Tuple    // set when Kind == KindWrite
}

// Log is the append-only, per-engine conflict log. It is safe for
// concurrent use; callers that need commit to be atomic with respect
// to other Read/Write/Commit/Cancel calls must still serialize at a
// higher layer (the engine holds a single exclusive lock around each
// of its own operations, see package tupledb), since Commit's conflict
// scan and compaction are not meaningful if interleaved with another
// transaction's bookkeeping for the same entries.
type Log struct {
	mu      sync.Mutex
	entries []Entry
}

// New returns an empty conflict log.
func New() *Log { return &Log{} }

// Read appends a read entry for txID.
func (l *Log) Read(txID int64, bounds tuple.ScanArgs) {
	l.mu.Lock()
	l.entries = append(l.entries, Entry{TxID: txID, Kind: KindRead, Bounds: bounds})
	l.mu.Unlock()
}

// Write appends a write entry for txID.
func (l *Log) Write(txID int64, key tuple.Tuple) {
	l.mu.Lock()
	l.entries = append(l.entries, Entry{TxID: txID, Kind: KindWrite, Key: key})
	l.mu.Unlock()
}

// Commit checks txID's recorded reads against every write entry from a
// different, still-logged transaction that appears after that read in
// log order. If any such write falls inside the read's bounds, the
// commit is rejected with ErrReadWriteConflict and txID's entries are
// left untouched (the caller is expected to cancel).
//
// Otherwise txID's read entries are dropped (they are done their job;
// nothing will ever check against them again) and nil is returned.
// txID's own write entries, just like anyone else's, are left in the
// log for compact to reclaim once no live read could still be
// invalidated by them: a transaction's write only matters to reads
// that preceded it in log order, not to the writer itself.
func (l *Log) Commit(txID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, e := range l.entries {
		if e.TxID != txID || e.Kind != KindRead {
			continue
		}
		for _, w := range l.entries[i+1:] {
			if w.TxID == txID || w.Kind != KindWrite {
				continue
			}
			if e.Bounds.Contains(w.Key) {
				return ErrReadWriteConflict
			}
		}
	}

	l.removeReads(txID)
	l.compact()
	return nil
}

// Cancel discards all of txID's entries, reads and writes, without
// checking for conflicts. Write entries are present when a Commit of
// txID was rejected; that batch never reached storage, so its writes
// must not go on to conflict with anyone else's reads.
func (l *Log) Cancel(txID int64) {
	l.mu.Lock()
	out := l.entries[:0]
	for _, e := range l.entries {
		if e.TxID != txID {
			out = append(out, e)
		}
	}
	l.entries = out
	l.compact()
	l.mu.Unlock()
}

func (l *Log) removeReads(txID int64) {
	out := l.entries[:0]
	for _, e := range l.entries {
		if e.TxID != txID || e.Kind != KindRead {
			out = append(out, e)
		}
	}
	l.entries = out
}

// compact drops write entries that precede every remaining live read:
// a conflict can only be raised by a write that appears after the
// read it's checked against, so a write with no live read ahead of it
// in the log can never again participate in a conflict check.
func (l *Log) compact() {
	liveReadSeen := false
	out := l.entries[:0]
	for _, e := range l.entries {
		if e.Kind == KindRead {
			liveReadSeen = true
			out = append(out, e)
			continue
		}
		if liveReadSeen {
			out = append(out, e)
		}
	}
	l.entries = out
}

// Len reports the number of live entries, mostly useful from tests.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
