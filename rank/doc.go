// Package rank scores catalog variables against free-text audience
// descriptions.
//
// Three signals are combined per candidate: a keyword score from a typed
// synonym table, a lexical score from token overlap and edit distance
// against the descriptor text, and a semantic score from term-weighted
// vector similarity (or a pluggable external Embedder). The composite is a
// configurable weighted sum, with an intent boost for candidates in the
// query's dominant category and a category round-robin re-rank so the top
// results span multiple attribute categories.
//
// Scoring is deterministic: identical (query, catalog version, weights)
// yields identical ranked output.
package rank
