// Package mpm implements the naive, trie-replay multi-pattern matcher: at
// every input offset it replays MatchPrefix against the built trie. It is
// O(N·L) rather than ac's O(N), and exists chiefly as a correctness oracle
// to check ac.Automaton's output against.
package mpm

import (
	"context"
	"io"

	"github.com/danwakefield/mpmatch/trie"
)

// Backend is the trie capability a Matcher replays MatchPrefix against.
// Both trie.DAT and trie.Ternary satisfy it.
type Backend[S trie.Symbol, V any] interface {
	Insert(syms []S, value V) (bool, error)
	Build() bool
	Clear()
	Len() int
	MatchExact(syms []S) (V, bool)
	MatchPrefix(syms []S, sink trie.Sink[V])
	NumNodes() int
	NodeSizeBytes() int
	Name() string
	Stats() string
	Dump(w io.Writer) error
}

// Matcher is the trie-based (non-AC) multi-pattern matcher.
type Matcher[S trie.Symbol, V any, B Backend[S, V]] struct {
	backend B
	built   bool
}

// New wraps an empty backend, ready for Insert.
func New[S trie.Symbol, V any, B Backend[S, V]](backend B) *Matcher[S, V, B] {
	return &Matcher[S, V, B]{backend: backend}
}

// Insert stages a pattern for the next Build call.
func (m *Matcher[S, V, B]) Insert(syms []S, value V) (bool, error) {
	return m.backend.Insert(syms, value)
}

// Build constructs the underlying trie. Returns false if already built.
func (m *Matcher[S, V, B]) Build() bool {
	if m.built {
		return false
	}
	if !m.backend.Build() {
		return false
	}
	m.built = true
	return true
}

// Clear discards the built trie and returns to a fresh insert-ready state.
func (m *Matcher[S, V, B]) Clear() {
	m.backend.Clear()
	m.built = false
}

// MatchExact reports whether syms was inserted (and survived dedup).
func (m *Matcher[S, V, B]) MatchExact(syms []S) (V, bool) {
	return m.backend.MatchExact(syms)
}

// Scan replays MatchPrefix from every offset in syms, calling sink once
// per occurrence. Matches at a given offset are emitted shortest-pattern-
// first (the order MatchPrefix itself visits terminals in). An inserted
// empty pattern therefore matches at every offset, including none at all
// when syms itself is empty — callers that need the zero-offset empty-
// pattern match on empty input should call MatchExact(nil) directly.
func (m *Matcher[S, V, B]) Scan(syms []S, sink trie.Sink[V]) {
	if !m.built {
		return
	}
	for base := 0; base < len(syms); base++ {
		m.scanFrom(base, syms, sink)
	}
}

func (m *Matcher[S, V, B]) scanFrom(base int, syms []S, sink trie.Sink[V]) {
	m.backend.MatchPrefix(syms[base:], func(value V, pos int) {
		sink(value, base+pos)
	})
}

// ScanContext behaves like Scan but polls ctx for cancellation every 256
// starting offsets, returning ctx.Err() if it fires.
func (m *Matcher[S, V, B]) ScanContext(ctx context.Context, syms []S, sink trie.Sink[V]) error {
	const checkEvery = 256
	if !m.built {
		return nil
	}
	for base := 0; base < len(syms); base++ {
		if base%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		m.scanFrom(base, syms, sink)
	}
	return nil
}

// ScanValues appends matched values, ignoring position, in emission order.
func (m *Matcher[S, V, B]) ScanValues(syms []S, dst *[]V) {
	m.Scan(syms, trie.ValueCollector(dst))
}

func (m *Matcher[S, V, B]) NumNodes() int      { return m.backend.NumNodes() }
func (m *Matcher[S, V, B]) NodeSizeBytes() int { return m.backend.NodeSizeBytes() }
func (m *Matcher[S, V, B]) Name() string       { return "TrieMultiPatternMatcher(" + m.backend.Name() + ")" }
func (m *Matcher[S, V, B]) Stats() string      { return m.backend.Stats() }
func (m *Matcher[S, V, B]) Dump(w io.Writer) error {
	return m.backend.Dump(w)
}
