package trie_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danwakefield/mpmatch/trie"
)

func syms(s string) []byte { return []byte(s) }

func newDATWithPatterns(t *testing.T, patterns []string) *trie.DAT[byte, uint32, int] {
	t.Helper()
	d := trie.NewDAT[byte, uint32, int]()
	for i, p := range patterns {
		ok, err := d.Insert(syms(p), i)
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.True(t, d.Build())
	return d
}

func TestDATExactMatch(t *testing.T) {
	d := newDATWithPatterns(t, []string{"a", "bc", "abc", "abcde", "cd"})

	v, ok := d.MatchExact(syms("abc"))
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = d.MatchExact(syms("ab"))
	assert.False(t, ok)
}

func TestDATNonMembership(t *testing.T) {
	d := newDATWithPatterns(t, []string{"a", "bc", "abc", "abcde", "cd"})
	for _, s := range []string{"z", "abcd", "b", "c", "abcdef"} {
		_, ok := d.MatchExact(syms(s))
		assert.False(t, ok, "expected %q to not match", s)
	}
}

func TestDATPrefixScan(t *testing.T) {
	d := newDATWithPatterns(t, []string{"a", "abc", "abcde", "bca"})

	var values []int
	d.MatchPrefix(syms("abcdefgh"), trie.ValueCollector(&values))
	assert.Equal(t, []int{0, 1, 2}, values)
}

func TestDATInsertAfterBuildIsNoop(t *testing.T) {
	d := newDATWithPatterns(t, []string{"a"})
	ok, err := d.Insert(syms("b"), 1)
	assert.False(t, ok)
	assert.NoError(t, err)
	assert.False(t, d.Build())
}

func TestDATRejectsNullSymbol(t *testing.T) {
	d := trie.NewDAT[byte, uint32, int]()
	ok, err := d.Insert([]byte{'a', 0, 'b'}, 0)
	assert.False(t, ok)
	assert.ErrorIs(t, err, trie.ErrNullSymbol)
}

func TestDATDuplicatePatternFirstInsertionWins(t *testing.T) {
	d := trie.NewDAT[byte, uint32, int]()
	_, _ = d.Insert(syms("dup"), 100)
	_, _ = d.Insert(syms("dup"), 200)
	require.True(t, d.Build())

	v, ok := d.MatchExact(syms("dup"))
	require.True(t, ok)
	assert.Equal(t, 100, v)
	assert.Equal(t, 1, d.Len())
}

func TestDATEmptyPatternCorner(t *testing.T) {
	empty := trie.NewDAT[byte, uint32, int]()
	require.True(t, empty.Build())
	_, ok := empty.MatchExact(nil)
	assert.False(t, ok)

	withEmpty := trie.NewDAT[byte, uint32, int]()
	_, _ = withEmpty.Insert(nil, 7)
	require.True(t, withEmpty.Build())
	v, ok := withEmpty.MatchExact(nil)
	require.True(t, ok)
	assert.Equal(t, 7, v)
}

func TestDATIdempotentClear(t *testing.T) {
	d := newDATWithPatterns(t, []string{"a", "b"})
	d.Clear()
	d.Clear()
	ok, err := d.Insert(syms("c"), 0)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestDATCheckMatchesParentInvariant(t *testing.T) {
	d := newDATWithPatterns(t, []string{"a", "bc", "abc", "abcde", "cd"})

	var walk func(parent uint32, depth int)
	walk = func(parent uint32, depth int) {
		if depth > 6 {
			return
		}
		for _, b := range []byte("abcde") {
			child, ok := d.Child(parent, b)
			if !ok {
				continue
			}
			walk(child, depth+1)
		}
	}
	walk(trie.Root[uint32](), 0)
	// Reaching here without panics/infinite loops demonstrates Child()
	// never follows a slot whose check field disagrees with its parent.
}
