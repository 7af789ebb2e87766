// Package ac compiles a built trie into an Aho-Corasick automaton: fail
// links for mismatch recovery and report links chaining every suffix of
// the current node that is itself a terminal. Scan then finds every
// (possibly overlapping) pattern occurrence in one linear pass.
package ac

import (
	"container/list"
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/danwakefield/mpmatch/trie"
)

// Backend is the trie capability an Automaton compiles and scans over.
// Both trie.DAT and trie.Ternary satisfy it.
type Backend[S trie.Symbol, N trie.ID, V any] interface {
	Insert(syms []S, value V) (bool, error)
	Build() bool
	Clear()
	Len() int
	Child(parent N, label S) (N, bool)
	IsFinal(p N) bool
	ValueOf(p N) (V, bool)
	Edges(parent N) []trie.Edge[S, N]
	NumNodes() int
	NodeSizeBytes() int
	Name() string
	Stats() string
	Dump(w io.Writer) error
}

// Automaton wraps a Backend with compiled fail/report links.
type Automaton[S trie.Symbol, N trie.ID, V any, B Backend[S, N, V]] struct {
	backend B
	fail    map[N]N
	report  map[N]N
	built   bool

	matchPool sync.Pool
}

// Match is one reported occurrence: Value at end-offset Pos.
type Match[V any] struct {
	Value V
	Pos   int
}

// New wraps an empty backend, ready for Insert.
func New[S trie.Symbol, N trie.ID, V any, B Backend[S, N, V]](backend B) *Automaton[S, N, V, B] {
	a := &Automaton[S, N, V, B]{backend: backend}
	a.matchPool.New = func() any { return make([]Match[V], 0, 16) }
	return a
}

// Insert stages a pattern for the next Build call.
func (a *Automaton[S, N, V, B]) Insert(syms []S, value V) (bool, error) {
	return a.backend.Insert(syms, value)
}

// Build constructs the underlying trie and compiles fail/report links. It
// returns false (and does nothing) if already built.
func (a *Automaton[S, N, V, B]) Build() bool {
	if a.built {
		return false
	}
	if !a.backend.Build() {
		return false
	}
	a.compile()
	a.built = true
	return true
}

// Clear discards the compiled automaton and the underlying trie, and
// returns both to a fresh insert-ready state.
func (a *Automaton[S, N, V, B]) Clear() {
	a.backend.Clear()
	a.fail = nil
	a.report = nil
	a.built = false
}

func (a *Automaton[S, N, V, B]) compile() {
	root := trie.Root[N]()
	a.fail = map[N]N{root: root}
	a.report = map[N]N{}

	queue := list.New()
	queue.PushBack(root)
	for queue.Len() > 0 {
		front := queue.Front()
		queue.Remove(front)
		parent := front.Value.(N)

		for _, e := range a.backend.Edges(parent) {
			fail := a.findFail(parent, e.Label)
			a.fail[e.To] = fail
			queue.PushBack(e.To)
		}
		a.report[parent] = a.findReport(parent)
	}
	// Root has no proper suffix of its own; an inserted empty pattern is
	// emitted once at the start of Scan instead of via the report chain,
	// so the chain must never loop back through root.
	a.report[root] = trie.Null[N]()
	slog.Debug("aho-corasick: compile complete", "nodes", a.backend.NumNodes(), "backend", a.backend.Name())
}

func (a *Automaton[S, N, V, B]) findFail(parent N, label S) N {
	root := trie.Root[N]()
	var fail N
	ok := false
	for parent != root {
		fail, ok = a.backend.Child(a.fail[parent], label)
		if ok {
			break
		}
		parent = a.fail[parent]
	}
	if !ok {
		fail = root
	}
	return fail
}

func (a *Automaton[S, N, V, B]) findReport(p N) N {
	fail := a.fail[p]
	if fail != trie.Root[N]() && a.backend.IsFinal(fail) {
		return fail
	}
	return a.report[fail]
}

// Scan finds every pattern occurrence in syms, calling sink once per
// occurrence in left-to-right, longest-match-first order (current
// node's own value, then each shorter match ending at the same position
// via the report chain).
func (a *Automaton[S, N, V, B]) Scan(syms []S, sink trie.Sink[V]) {
	if !a.built {
		return
	}
	root := trie.Root[N]()
	if v, ok := a.backend.ValueOf(root); ok {
		sink(v, 0)
	}

	cur := root
	for i, s := range syms {
		var nxt N
		var ok bool
		for {
			nxt, ok = a.backend.Child(cur, s)
			if ok {
				break
			}
			if cur == root {
				break
			}
			cur = a.fail[cur]
		}
		if !ok {
			continue
		}
		cur = nxt
		pos := i
		if v, vok := a.backend.ValueOf(cur); vok {
			sink(v, pos)
		}
		for report := a.report[cur]; report != trie.Null[N](); report = a.report[report] {
			if v, vok := a.backend.ValueOf(report); vok {
				sink(v, pos)
			}
		}
	}
}

// ScanContext behaves like Scan but polls ctx for cancellation every 256
// input symbols, returning ctx.Err() if it fires.
func (a *Automaton[S, N, V, B]) ScanContext(ctx context.Context, syms []S, sink trie.Sink[V]) error {
	const checkEvery = 256
	if !a.built {
		return nil
	}
	root := trie.Root[N]()
	if v, ok := a.backend.ValueOf(root); ok {
		sink(v, 0)
	}

	cur := root
	for i, s := range syms {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		var nxt N
		var ok bool
		for {
			nxt, ok = a.backend.Child(cur, s)
			if ok {
				break
			}
			if cur == root {
				break
			}
			cur = a.fail[cur]
		}
		if !ok {
			continue
		}
		cur = nxt
		pos := i
		if v, vok := a.backend.ValueOf(cur); vok {
			sink(v, pos)
		}
		for report := a.report[cur]; report != trie.Null[N](); report = a.report[report] {
			if v, vok := a.backend.ValueOf(report); vok {
				sink(v, pos)
			}
		}
	}
	return nil
}

// Find is convenience sugar over Scan: it returns every match as a slice,
// backed by a pooled buffer to avoid an allocation on the hot path when
// callers scan many short inputs back to back. Callers that want to
// return the slice to the pool may call Automaton.Release.
func (a *Automaton[S, N, V, B]) Find(syms []S) []Match[V] {
	out := a.matchPool.Get().([]Match[V])[:0]
	a.Scan(syms, func(value V, pos int) {
		out = append(out, Match[V]{Value: value, Pos: pos})
	})
	return out
}

// Release returns a slice obtained from Find to the internal pool.
func (a *Automaton[S, N, V, B]) Release(matches []Match[V]) {
	a.matchPool.Put(matches[:0]) //nolint:staticcheck // pool element type round-trips.
}

// ScanValues is Scan's Sink-free sibling: it appends matched values,
// ignoring position, in emission order.
func (a *Automaton[S, N, V, B]) ScanValues(syms []S, dst *[]V) {
	a.Scan(syms, trie.ValueCollector(dst))
}

// NumNodes, NodeSizeBytes, Name, Stats and Dump delegate to the backend;
// Name is prefixed to distinguish the automaton from a bare trie dump.
func (a *Automaton[S, N, V, B]) NumNodes() int      { return a.backend.NumNodes() }
func (a *Automaton[S, N, V, B]) NodeSizeBytes() int { return a.backend.NodeSizeBytes() }
func (a *Automaton[S, N, V, B]) Name() string       { return "AhoCorasick(" + a.backend.Name() + ")" }
func (a *Automaton[S, N, V, B]) Stats() string      { return a.backend.Stats() }
func (a *Automaton[S, N, V, B]) Dump(w io.Writer) error {
	return a.backend.Dump(w)
}
