// Package testutil provides testing utilities for Segmenta.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe random number generator and
// synthetic record-matrix generators for the partitioner.
//
//	rng := testutil.NewRNG(seed)
//	m := rng.ClusteredMatrix(1000, 4, 10, 0.5)
//	m = rng.WithMissing(m, 0.1)
package testutil
