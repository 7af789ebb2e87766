package trie

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"unsafe"
)

// auxUnit is one node of the free-slot ring used during placement search:
// unused base/check slots are threaded into a circular doubly linked list
// so fetch never has to scan occupied slots to find a candidate base.
type auxUnit struct {
	prev, next int
	used       bool
}

type datKey[S Symbol, V any] struct {
	syms     []S
	value    V
	insertAt int
}

// DAT is a Double-Array Trie: two parallel integer arrays (base, check)
// encode the full transition function of a trie over S, with O(1) child
// lookups and no per-node pointer overhead.
type DAT[S Symbol, N ID, V any] struct {
	base  []int
	check []int
	aux   []auxUnit

	values []V
	lens   []int

	// edges records, per parent node id, the (label, child) pairs placed
	// during Build — i.e. excluding the NullSym terminal pseudo-child.
	// Kept separately because base/check alone cannot be enumerated
	// without a full array scan, and package ac needs to walk the trie
	// breadth-first at compile time.
	edges map[int][]Edge[S, N]

	built bool
	keys  []datKey[S, V]
}

// NewDAT returns an empty, insert-ready double-array trie.
func NewDAT[S Symbol, N ID, V any]() *DAT[S, N, V] {
	d := &DAT[S, N, V]{}
	d.reset()
	return d
}

func (d *DAT[S, N, V]) reset() {
	d.base = nil
	d.check = nil
	d.aux = nil
	d.ensureCap(2)
	d.occupy(1)
	d.values = d.values[:0]
	d.lens = d.lens[:0]
	d.edges = nil
	d.built = false
	d.keys = d.keys[:0]
}

// Name reports the backend's display name.
func (d *DAT[S, N, V]) Name() string { return "DoubleArrayTrie" }

// Insert stages a pattern for the next Build call. It is a no-op once the
// trie has been built. accepted is false either because the trie is
// already built or because syms contains the reserved null symbol, in
// which case err is ErrNullSymbol.
func (d *DAT[S, N, V]) Insert(syms []S, value V) (accepted bool, err error) {
	if d.built {
		return false, nil
	}
	for _, s := range syms {
		if s == S(0) {
			return false, ErrNullSymbol
		}
	}
	cp := make([]S, len(syms))
	copy(cp, syms)
	d.keys = append(d.keys, datKey[S, V]{syms: cp, value: value, insertAt: len(d.keys)})
	return true, nil
}

// Len reports the number of patterns staged (pre-Build) or surviving
// dedup (post-Build).
func (d *DAT[S, N, V]) Len() int {
	if d.built {
		return len(d.values)
	}
	return len(d.keys)
}

// Clear discards the built index (or staged inserts) and returns the trie
// to a fresh insert-ready state.
func (d *DAT[S, N, V]) Clear() {
	d.reset()
}

// Build consumes every staged Insert and constructs the immutable index.
// It returns false (and does nothing) if the trie was already built.
func (d *DAT[S, N, V]) Build() bool {
	if d.built {
		return false
	}
	d.built = true

	sort.SliceStable(d.keys, func(i, j int) bool {
		return lessSyms(d.keys[i].syms, d.keys[j].syms)
	})
	deduped := d.keys[:0:0]
	for i, k := range d.keys {
		if i > 0 && sameSyms(d.keys[i-1].syms, k.syms) {
			continue
		}
		deduped = append(deduped, k)
	}
	d.keys = deduped
	slog.Debug("double-array trie: staged keys deduped", "keys", len(d.keys))

	d.values = make([]V, len(d.keys))
	d.lens = make([]int, len(d.keys))
	for i, k := range d.keys {
		d.values[i] = k.value
		d.lens[i] = len(k.syms)
	}

	d.edges = make(map[int][]Edge[S, N])

	type frame = struct {
		depth, parent, lo, hi int
	}
	stack := []frame{{0, 1, 0, len(d.keys)}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		d.buildNode(f.depth, f.parent, f.lo, f.hi, &stack)
	}

	d.keys = nil
	slog.Debug("double-array trie: build complete", "nodes", d.NumNodes(), "array_len", len(d.base))
	return true
}

func labelAt[S Symbol, V any](k datKey[S, V], depth int) int {
	if depth >= len(k.syms) {
		return 0
	}
	return index(k.syms[depth])
}

// buildNode groups keys[lo:hi] by their depth-th label, places the group
// into a freshly fetched base, and either records a terminal value (label
// 0, the NullSym pseudo-child) or pushes the child range for later
// placement.
func (d *DAT[S, N, V]) buildNode(depth, parent, lo, hi int, stack *[]struct{ depth, parent, lo, hi int }) {
	sort.SliceStable(d.keys[lo:hi], func(i, j int) bool {
		return labelAt(d.keys[lo+i], depth) < labelAt(d.keys[lo+j], depth)
	})

	var labels []int
	var runLo, runHi []int
	i := lo
	for i < hi {
		lbl := labelAt(d.keys[i], depth)
		j := i + 1
		for j < hi && labelAt(d.keys[j], depth) == lbl {
			j++
		}
		labels = append(labels, lbl)
		runLo = append(runLo, i)
		runHi = append(runHi, j)
		i = j
	}

	base := d.fetch(labels)
	d.base[parent] = base
	for idx, lbl := range labels {
		pos := base + lbl
		d.ensureCap(pos + 1)
		d.occupy(pos)
		d.check[pos] = parent
		if lbl == 0 {
			// Terminal pseudo-child: the key at runLo[idx] is exactly
			// depth symbols long, so it ends here. Its base slot stores
			// the value index directly rather than another base.
			d.base[pos] = runLo[idx]
		} else {
			d.edges[parent] = append(d.edges[parent], Edge[S, N]{Label: d.keys[runLo[idx]].syms[depth], To: N(pos)})
			*stack = append(*stack, struct{ depth, parent, lo, hi int }{depth + 1, pos, runLo[idx], runHi[idx]})
		}
	}
}

// fetch finds the smallest feasible base such that base+label is free (or
// beyond the current array) for every label in labels, walking the
// free-slot ring from its head and falling back to appending past the end
// of the array if the ring holds no feasible candidate.
func (d *DAT[S, N, V]) fetch(labels []int) int {
	if len(labels) == 0 {
		// No children (shouldn't happen: every node has at least the
		// terminal marker once a key ends there, or it is a dead node).
		return d.nextFreeBase(0)
	}
	first := labels[0]
	pos := d.aux[0].next
	for pos != 0 {
		base := pos - first
		if d.feasible(base, labels) {
			return base
		}
		pos = d.aux[pos].next
	}
	return d.nextFreeBase(first)
}

func (d *DAT[S, N, V]) feasible(base int, labels []int) bool {
	for _, lbl := range labels {
		p := base + lbl
		if p < len(d.aux) && d.aux[p].used {
			return false
		}
	}
	return true
}

func (d *DAT[S, N, V]) nextFreeBase(first int) int {
	return len(d.base) - first
}

func (d *DAT[S, N, V]) ensureCap(n int) {
	old := len(d.base)
	if n <= old {
		return
	}
	grown := make([]int, n)
	copy(grown, d.base)
	d.base = grown
	grown2 := make([]int, n)
	copy(grown2, d.check)
	d.check = grown2
	grownAux := make([]auxUnit, n)
	copy(grownAux, d.aux)
	d.aux = grownAux
	if old == 0 {
		// aux[0] is the ring sentinel: a self-referencing, permanently
		// occupied slot that never represents a real node.
		d.aux[0] = auxUnit{prev: 0, next: 0, used: true}
		old = 1
	}
	for i := old; i < n; i++ {
		d.linkFree(i)
	}
}

func (d *DAT[S, N, V]) linkFree(i int) {
	tail := d.aux[0].prev
	d.aux[i] = auxUnit{prev: tail, next: 0, used: false}
	d.aux[tail].next = i
	d.aux[0].prev = i
}

func (d *DAT[S, N, V]) occupy(pos int) {
	a := d.aux[pos]
	d.aux[a.prev].next = a.next
	d.aux[a.next].prev = a.prev
	d.aux[pos].used = true
}

// Edges returns parent's outgoing (label, child) transitions, excluding
// the NullSym terminal pseudo-child. Used by package ac to compile
// fail/report links breadth-first.
func (d *DAT[S, N, V]) Edges(parent N) []Edge[S, N] {
	return d.edges[int(parent)]
}

// Child returns the node reached from parent by label, and whether it
// exists.
func (d *DAT[S, N, V]) Child(parent N, label S) (N, bool) {
	p := int(parent)
	if p <= 0 || p >= len(d.base) {
		return Null[N](), false
	}
	pos := d.base[p] + index(label)
	if pos < 0 || pos >= len(d.check) || d.check[pos] != p {
		return Null[N](), false
	}
	return N(pos), true
}

// IsFinal reports whether node p terminates a pattern.
func (d *DAT[S, N, V]) IsFinal(p N) bool {
	pp := int(p)
	if pp <= 0 || pp >= len(d.base) {
		return false
	}
	pos := d.base[pp]
	return pos >= 0 && pos < len(d.check) && d.check[pos] == pp
}

// ValueOf returns the value stored at terminal node p. ok is false if p is
// not terminal.
func (d *DAT[S, N, V]) ValueOf(p N) (v V, ok bool) {
	pp := int(p)
	if pp <= 0 || pp >= len(d.base) {
		return v, false
	}
	pos := d.base[pp]
	if pos < 0 || pos >= len(d.check) || d.check[pos] != pp {
		return v, false
	}
	idx := d.base[pos]
	if idx < 0 || idx >= len(d.values) {
		return v, false
	}
	return d.values[idx], true
}

// MatchExact reports whether syms was inserted (and survived dedup).
func (d *DAT[S, N, V]) MatchExact(syms []S) (V, bool) {
	cur := Root[N]()
	for _, s := range syms {
		nxt, ok := d.Child(cur, s)
		if !ok {
			var zero V
			return zero, false
		}
		cur = nxt
	}
	return d.ValueOf(cur)
}

// MatchPrefix walks syms from the root, calling sink once for every
// terminal crossed (including at position 0, for an inserted empty
// pattern), and stops at the first symbol with no outgoing transition.
func (d *DAT[S, N, V]) MatchPrefix(syms []S, sink Sink[V]) {
	cur := Root[N]()
	if v, ok := d.ValueOf(cur); ok {
		sink(v, 0)
	}
	for i, s := range syms {
		nxt, ok := d.Child(cur, s)
		if !ok {
			return
		}
		cur = nxt
		if v, ok := d.ValueOf(cur); ok {
			sink(v, i)
		}
	}
}

// NumNodes returns the number of occupied base/check slots.
func (d *DAT[S, N, V]) NumNodes() int {
	n := 0
	for i := 1; i < len(d.aux); i++ {
		if d.aux[i].used {
			n++
		}
	}
	return n
}

// NodeSizeBytes returns the per-slot storage cost (base + check).
func (d *DAT[S, N, V]) NodeSizeBytes() int {
	return 2 * int(unsafe.Sizeof(int(0)))
}

// Stats renders a one-line size summary in the style of the original
// balgo StatsString().
func (d *DAT[S, N, V]) Stats() string {
	n := d.NumNodes()
	b := d.NodeSizeBytes()
	return fmt.Sprintf("nodes=%d, node_size=%d, size=%.4fM", n, b, float64(b)*float64(n)/(1<<20))
}

// Dump writes one line per occupied slot, in ascending node-id order.
func (d *DAT[S, N, V]) Dump(w io.Writer) error {
	for i := 1; i < len(d.aux); i++ {
		if !d.aux[i].used {
			continue
		}
		if _, err := fmt.Fprintf(w, "node=%d base=%d check=%d\n", i, d.base[i], d.check[i]); err != nil {
			return err
		}
	}
	return nil
}

func lessSyms[S Symbol](a, b []S) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func sameSyms[S Symbol](a, b []S) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
