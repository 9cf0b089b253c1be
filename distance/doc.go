// Package distance provides the vector distance functions used by the
// partitioner and the semantic scorer.
//
// The partitioner is built on Manhattan (L1) distance paired with
// component-wise medians, which keeps group representatives robust against
// outliers. SquaredL2 is provided for callers that want a classic
// mean-based clustering distance instead.
package distance
