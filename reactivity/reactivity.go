// Package reactivity implements the subscription tracker: callers
// register interest in a bounds (a tuple.ScanArgs), and every commit
// that touches a key inside those bounds triggers exactly one
// notification carrying just the slice of the commit that fell inside
// them.
//
// The registry itself is a plain mutex-guarded structure, following
// the same Register/cancel/Notify shape as the teacher's key-level
// watch stream. It deliberately does not reach for tupledb.Engine to
// store listeners "as an auxiliary tuple database": tupledb depends on
// this package, so holding an Engine here would be circular. Listener
// bookkeeping instead uses a prefix trie keyed by each bounds'
// tuple.ScanArgs.CommonPrefix (§4.C5's "listeners keyed by
// boundsPrefixTuple" efficiency trick) so Emit only evaluates the
// bounds of listeners that could possibly match a given write key,
// rather than every live listener (see DESIGN.md).
package reactivity

import (
	"sync"

	"github.com/azmodb/tupledb/storage"
	"github.com/azmodb/tupledb/tuple"
)

// listener is one registered subscription. prefix is cached at
// registration time so unsubscribe can find it again in the trie
// without recomputing it.
type listener struct {
	id       int64
	bounds   tuple.ScanArgs
	prefix   tuple.Tuple
	callback func(storage.Writes)
}

// trieNode is one node of the bounds-prefix trie: listeners whose
// CommonPrefix ends exactly here, plus a child per next tuple element
// seen among registered prefixes.
type trieNode struct {
	listeners []*listener
	children  map[string]*trieNode
}

func (n *trieNode) child(edge string) *trieNode {
	if n.children == nil {
		n.children = make(map[string]*trieNode)
	}
	c, ok := n.children[edge]
	if !ok {
		c = &trieNode{}
		n.children[edge] = c
	}
	return c
}

// edgeKey returns the trie edge for a single tuple element: its own
// order-preserving encoding, which is simply a convenient unique byte
// representation here (the trie doesn't rely on encode's ordering
// property, only its injectivity).
func edgeKey(v tuple.Value) string {
	return string(tuple.Encode(nil, tuple.Tuple{v}))
}

// Tracker fans a committed batch out to every listener whose bounds
// intersect it.
type Tracker struct {
	mu sync.Mutex
	// listeners is kept in registration order, not keyed by id: §5
	// requires the callback order for a given commit to match
	// registration order, and a map iterates in randomized order.
	listeners []*listener
	prefixes  trieNode
	nextID    int64
	closed    bool
}

// New returns an empty Tracker.
func New() *Tracker {
	return &Tracker{}
}

// Subscribe registers callback to be invoked, synchronously from
// Emit's calling goroutine, with the subset of every future write
// batch that falls inside bounds. The returned func unsubscribes; it
// is idempotent and safe to call more than once or concurrently with
// Emit.
func (t *Tracker) Subscribe(bounds tuple.ScanArgs, callback func(storage.Writes)) (unsubscribe func()) {
	normalized := bounds.Normalize()
	prefix := normalized.CommonPrefix()

	t.mu.Lock()
	t.nextID++
	id := t.nextID
	l := &listener{id: id, bounds: normalized, prefix: prefix, callback: callback}
	t.listeners = append(t.listeners, l)

	n := &t.prefixes
	for _, v := range prefix {
		n = n.child(edgeKey(v))
	}
	n.listeners = append(n.listeners, l)
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		for i, x := range t.listeners {
			if x.id == id {
				t.listeners = append(t.listeners[:i:i], t.listeners[i+1:]...)
				break
			}
		}

		n := &t.prefixes
		for _, v := range prefix {
			if n.children == nil {
				n = nil
				break
			}
			next, ok := n.children[edgeKey(v)]
			if !ok {
				n = nil
				break
			}
			n = next
		}
		if n != nil {
			for i, x := range n.listeners {
				if x.id == id {
					n.listeners = append(n.listeners[:i:i], n.listeners[i+1:]...)
					break
				}
			}
		}
		t.mu.Unlock()
	}
}

// collectCandidates walks the trie along key's elements, gathering
// every listener bucketed at or above the path it traces: those are
// exactly the listeners whose CommonPrefix is itself a prefix of key,
// the only ones key could possibly satisfy.
func collectCandidates(root *trieNode, key tuple.Tuple, out map[int64]*listener) {
	n := root
	for _, l := range n.listeners {
		out[l.id] = l
	}
	for _, v := range key {
		if n.children == nil {
			return
		}
		next, ok := n.children[edgeKey(v)]
		if !ok {
			return
		}
		n = next
		for _, l := range n.listeners {
			out[l.id] = l
		}
	}
}

// reactivityEmit pairs a listener id with the restriction of a write
// batch that fell inside its bounds.
type reactivityEmit struct {
	id int64
	w  storage.Writes
}

// computeReactivityEmits returns, per live listener that matched, the
// restriction of w to its bounds, in the same registration order the
// listeners were subscribed in. A listener with no matching entries is
// omitted entirely, so it receives no notification for this batch.
// Only listeners the prefix trie surfaces as candidates for some key
// in w have their bounds actually evaluated.
func (t *Tracker) computeReactivityEmits(w storage.Writes) []reactivityEmit {
	t.mu.Lock()
	candidates := make(map[int64]*listener)
	for _, kv := range w.Set {
		collectCandidates(&t.prefixes, kv.Key, candidates)
	}
	for _, key := range w.Remove {
		collectCandidates(&t.prefixes, key, candidates)
	}
	order := make([]*listener, len(t.listeners))
	copy(order, t.listeners)
	t.mu.Unlock()

	var emits []reactivityEmit
	for _, l := range order {
		if _, ok := candidates[l.id]; !ok {
			continue
		}
		var out storage.Writes
		for _, kv := range w.Set {
			if l.bounds.Contains(kv.Key) {
				out.Set = append(out.Set, kv)
			}
		}
		for _, key := range w.Remove {
			if l.bounds.Contains(key) {
				out.Remove = append(out.Remove, key)
			}
		}
		if len(out.Set) > 0 || len(out.Remove) > 0 {
			emits = append(emits, reactivityEmit{id: l.id, w: out})
		}
	}
	return emits
}

// Emit notifies every listener whose bounds intersect w, each exactly
// once, with only the part of w that falls inside its bounds, in
// registration order.
func (t *Tracker) Emit(w storage.Writes) {
	emits := t.computeReactivityEmits(w)
	if len(emits) == 0 {
		return
	}

	t.mu.Lock()
	live := make(map[int64]*listener, len(t.listeners))
	for _, l := range t.listeners {
		live[l.id] = l
	}
	t.mu.Unlock()

	for _, e := range emits {
		if l, ok := live[e.id]; ok {
			l.callback(e.w)
		}
	}
}

// Len reports the number of live subscriptions, mostly useful from
// tests.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.listeners)
}

// Close discards every listener without notifying them. Used when the
// owning engine shuts down.
func (t *Tracker) Close() {
	t.mu.Lock()
	t.listeners = nil
	t.prefixes = trieNode{}
	t.closed = true
	t.mu.Unlock()
}
