// Package catalog builds and serves the immutable variable catalog index.
//
// Build merges descriptor rows from an ordered list of sources into one
// deduplicated collection and derives two search structures from it: a
// roaring-bitmap inverted keyword index for candidate pruning and a
// term-weighted (TF-IDF) vector per descriptor for similarity scoring.
//
// An Index is read-only after construction and safe for unlocked concurrent
// reads. Reload never mutates a live index: build a fresh one and publish it
// through a Holder, which swaps the shared pointer atomically. In-flight
// requests keep using the version they started with.
package catalog
