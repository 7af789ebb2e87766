package trie

import "golang.org/x/exp/constraints"

// Symbol is the alphabet a trie is built over. Bytes (uint8) give the usual
// ASCII/UTF-8-byte alphabet; a wider unsigned type lets callers index by
// rune or by some other pre-tokenized unit.
type Symbol interface {
	constraints.Unsigned
}

// ID identifies a node within a trie's internal arrays. The zero value is
// reserved (Null); the root always lives at ID 1.
type ID interface {
	constraints.Unsigned
}

// index maps a symbol onto the 1-based offset used throughout the
// double-array and ternary layouts: offset 0 is reserved for the
// terminal/NullSym pseudo-child, so every real symbol is pushed up by one.
func index[S Symbol](s S) int {
	return int(s) + 1
}

// Null returns the reserved "no node" id, always the zero value.
func Null[N ID]() N {
	return N(0)
}

// Root returns the id of the trie's root node.
func Root[N ID]() N {
	return N(1)
}
