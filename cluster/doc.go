// Package cluster partitions a record matrix into size-bounded groups.
//
// The algorithm is a capacity-aware K-Medians variant under L1 distance:
// medians are seeded deterministically by greedy farthest-point selection
// from a caller-supplied seed, records are assigned most-confident-first
// with per-group capacity caps, under-filled groups pull boundary records
// from donors, and group representatives are recomputed as component-wise
// medians until assignments stabilize, the dispersion improvement falls
// below epsilon, or the iteration cap is hit.
//
// Preprocessing is pure and deterministic: missing numerics are imputed with
// the column median, missing categoricals with an explicit "unknown" label,
// categoricals are one-hot encoded, numerics standardized, and columns left
// constant after imputation are dropped and reported.
//
// When the requested size band is unsatisfiable for the population, the run
// reports the achieved sizes with ConstraintsMet=false instead of failing:
// records are never dropped or fabricated to force compliance.
package cluster
