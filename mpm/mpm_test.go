package mpm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danwakefield/mpmatch/mpm"
	"github.com/danwakefield/mpmatch/trie"
)

func syms(s string) []byte { return []byte(s) }

func newMatcher(t *testing.T, patterns []string) *mpm.Matcher[byte, int, *trie.DAT[byte, uint32, int]] {
	t.Helper()
	m := mpm.New[byte, int](trie.NewDAT[byte, uint32, int]())
	for i, p := range patterns {
		ok, err := m.Insert(syms(p), i)
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.True(t, m.Build())
	return m
}

func TestTrieMPMScanOverlapping(t *testing.T) {
	m := newMatcher(t, []string{"a", "bc", "abc", "abcde", "cd"})

	var values []int
	m.Scan(syms("ababcdef"), trie.ValueCollector(&values))
	assert.Equal(t, []int{0, 0, 2, 3, 1, 4}, values)
}

func TestTrieMPMExactMatch(t *testing.T) {
	m := newMatcher(t, []string{"a", "bc", "abc", "abcde", "cd"})

	v, ok := m.MatchExact(syms("abc"))
	require.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = m.MatchExact(syms("ab"))
	assert.False(t, ok)
}

func TestTrieMPMBuildTwiceReturnsFalse(t *testing.T) {
	m := newMatcher(t, []string{"a"})
	assert.False(t, m.Build())
}

func TestTrieMPMClearThenReinsert(t *testing.T) {
	m := newMatcher(t, []string{"a", "b"})
	m.Clear()
	ok, err := m.Insert(syms("c"), 0)
	assert.NoError(t, err)
	assert.True(t, ok)
	require.True(t, m.Build())

	v, ok := m.MatchExact(syms("c"))
	require.True(t, ok)
	assert.Equal(t, 0, v)
}

func TestTrieMPMEmptyInputNoPatterns(t *testing.T) {
	m := mpm.New[byte, int](trie.NewDAT[byte, uint32, int]())
	require.True(t, m.Build())

	var values []int
	m.Scan(nil, trie.ValueCollector(&values))
	assert.Empty(t, values)
}
