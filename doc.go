// mpmatch: multi-pattern string matching over compact, array-backed tries.
//
// A pattern set known in advance is inserted into a trie (Double-Array or
// Ternary), the trie is built into an immutable index, and the index is
// either scanned directly with an Aho-Corasick automaton (package ac) or
// replayed prefix-by-prefix with a naive matcher (package mpm) used mostly
// as a correctness oracle for the former.
//
// http://en.wikipedia.org/wiki/Aho%E2%80%93Corasick_string_matching_algorithm
package mpmatch
