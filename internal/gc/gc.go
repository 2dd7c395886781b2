// Package gc implements the tracing mark-sweep collector that tracks
// script-visible object liveness (spec.md §4.6). It does not replace Go's
// own garbage collector — internal/object.Object values are ordinary Go
// heap allocations — it tracks which of those allocations the *script* can
// still observe, because an ECMAScript program can build arbitrary
// prototype/closure cycles that Go's collector would happily keep alive by
// some still-reachable-in-Go handle (e.g. an entry cached in a map the
// engine itself keeps). Semantics are translated from
// original_source/boa_gc's cell/gc/ephemeron design into idiomatic Go
// generics rather than transliterated line-for-line.
package gc

import (
	"sync"
)

// Traceable is implemented by every heap-allocated engine type the
// collector must walk: it reports the other Traceable values it directly
// references.
type Traceable interface {
	Trace(visit func(Traceable))
}

// Finalizable is optionally implemented by cell payloads that need cleanup
// when swept (e.g. releasing a held OS resource). Equivalent to boa_gc's
// Finalize trait.
type Finalizable interface {
	Finalize()
}

type cell struct {
	value   Traceable
	marked  bool
	roots   int // count of live Gc[T] handles pointing at this cell
	weakRefs []*weakCell
}

type weakCell struct {
	target *cell
	alive  bool
}

// Heap is one collector instance. A realm.Context owns exactly one Heap;
// every Gc handle it hands out is scoped to that Heap.
type Heap struct {
	mu    sync.Mutex
	cells []*cell

	threshold int // cell count that triggers the next collection
	onCollect func(stats Stats)
}

// Stats summarizes one collection cycle, surfaced through
// internal/realm's logr sink.
type Stats struct {
	Scanned  int
	Marked   int
	Swept    int
	Ephemerons int
}

const initialThreshold = 4096

// NewHeap returns an empty Heap. onCollect may be nil; when set, it is
// called after every cycle (internal/realm wires this to log at V(1)).
func NewHeap(onCollect func(Stats)) *Heap {
	return &Heap{threshold: initialThreshold, onCollect: onCollect}
}

// SetThreshold overrides the cell count that triggers the next collection
// (jsvm.ContextConfig.WithGCThreshold). A non-positive n is ignored.
func (h *Heap) SetThreshold(n int) {
	if n <= 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.threshold = n
}

// Gc is a rooted handle to a heap-managed value: while at least one Gc[T]
// referencing a cell exists, that cell (and everything it transitively
// Traces to) survives collection. Gc is a thin wrapper, safe to copy.
type Gc[T Traceable] struct {
	h *Heap
	c *cell
}

// NewGc allocates v on h and returns a rooted handle to it.
func NewGc[T Traceable](h *Heap, v T) Gc[T] {
	h.mu.Lock()
	defer h.mu.Unlock()
	c := &cell{value: v, roots: 1}
	h.cells = append(h.cells, c)
	if len(h.cells) >= h.threshold {
		h.collectLocked()
	}
	return Gc[T]{h: h, c: c}
}

// Get dereferences the handle.
func (g Gc[T]) Get() T { return g.c.value.(T) }

// Clone returns a new rooted handle to the same cell, incrementing its root
// count; boa_gc's Gc<T> is Clone in the same spirit (an Rc-like handle, not
// a unique owner).
func (g Gc[T]) Clone() Gc[T] {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	g.c.roots++
	return g
}

// Drop releases this handle's root contribution. Callers that keep a Gc
// handle in a long-lived Go struct (rather than letting it go out of scope,
// which Go cannot hook) must call Drop explicitly when done — mirroring how
// the teacher's internal/close package requires explicit resource release
// above Go's own lifetime rules.
func (g Gc[T]) Drop() {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	if g.c.roots > 0 {
		g.c.roots--
	}
}

// WeakGc observes a cell without rooting it: Get returns the value and true
// only if the cell survived the most recent collection.
type WeakGc[T Traceable] struct {
	w *weakCell
}

// Weaken produces a WeakGc observing the same cell as g, without adding a
// root.
func Weaken[T Traceable](g Gc[T]) WeakGc[T] {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	w := &weakCell{target: g.c, alive: true}
	g.c.weakRefs = append(g.c.weakRefs, w)
	return WeakGc[T]{w: w}
}

func (w WeakGc[T]) Get() (T, bool) {
	var zero T
	if w.w == nil || !w.w.alive {
		return zero, false
	}
	return w.w.target.value.(T), true
}

// Ephemeron ties a value's liveness to a key: the value is reachable only
// while the key is (spec.md supplemented feature: WeakMap). An Ephemeron is
// not registered with its Heap: Value only reports whether the key cell is
// still rooted or was marked by the last collection, and the collector does
// not trace the value.
type Ephemeron[K Traceable, V Traceable] struct {
	h     *Heap
	key   *cell
	value V
}

// NewEphemeron registers an ephemeron on h: key must already be rooted by
// some live Gc[K] handle for the pairing to have any effect; value is kept
// alive only as long as key survives a mark phase.
func NewEphemeron[K Traceable, V Traceable](h *Heap, key Gc[K], value V) *Ephemeron[K, V] {
	return &Ephemeron[K, V]{h: h, key: key.c, value: value}
}

func (e *Ephemeron[K, V]) Value() (V, bool) {
	var zero V
	if e.key.marked || e.key.roots > 0 {
		return e.value, true
	}
	return zero, false
}

// Collect forces a collection cycle synchronously. No package in this
// module calls it; threshold-triggered collections run from the
// allocation path through collectLocked instead.
func (h *Heap) Collect() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.collectLocked()
}

// collectLocked runs Mark, then a combined Finalize+Sweep pass. The heap
// keeps no list of ephemerons, so no ephemeron fixpoint runs: an
// Ephemeron's value is never traced by the collector. Callers must hold
// h.mu.
func (h *Heap) collectLocked() Stats {
	stats := Stats{Scanned: len(h.cells)}

	// Mark: every rooted cell, transitively.
	for _, c := range h.cells {
		c.marked = false
	}
	var stack []*cell
	for _, c := range h.cells {
		if c.roots > 0 {
			c.marked = true
			stack = append(stack, c)
		}
	}
	cellOf := make(map[Traceable]*cell, len(h.cells))
	for _, c := range h.cells {
		cellOf[c.value] = c
	}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c.value.Trace(func(t Traceable) {
			child, ok := cellOf[t]
			if ok && !child.marked {
				child.marked = true
				stack = append(stack, child)
			}
		})
		stats.Marked++
	}

	// Sweep: unmarked cells are finalized and dropped; weak observers of
	// swept cells are marked dead.
	live := h.cells[:0]
	for _, c := range h.cells {
		if c.marked {
			live = append(live, c)
			continue
		}
		if f, ok := c.value.(Finalizable); ok {
			f.Finalize()
		}
		for _, w := range c.weakRefs {
			w.alive = false
		}
		stats.Swept++
	}
	h.cells = live
	h.threshold = len(h.cells)*2 + initialThreshold

	if h.onCollect != nil {
		h.onCollect(stats)
	}
	return stats
}

// Len reports the live cell count, for diagnostics and tests.
func (h *Heap) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.cells)
}
