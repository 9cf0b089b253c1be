package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/segmenta/model"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// NormFloat64 returns a standard-normal pseudo-random number.
func (r *RNG) NormFloat64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.NormFloat64()
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float64 in a loop).
func (r *RNG) FillUniform(dst []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float64()
	}
}

// RecordIDs generates n unique record identifiers.
func RecordIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("r%05d", i)
	}
	return ids
}

// ClusteredMatrix generates a record matrix whose numeric columns cluster
// around per-group centers with Gaussian noise, plus one categorical column
// correlated with the cluster. Records rotate through clusters round-robin,
// so cluster membership of record i is i%clusters.
func (r *RNG) ClusteredMatrix(num, numericCols, clusters int, spread float64) *model.Matrix {
	r.mu.Lock()
	defer r.mu.Unlock()

	centers := make([][]float64, clusters)
	for c := range centers {
		centers[c] = make([]float64, numericCols)
		for j := range centers[c] {
			centers[c][j] = r.rand.Float64() * 10
		}
	}

	m := &model.Matrix{RecordIDs: RecordIDs(num)}

	for j := 0; j < numericCols; j++ {
		values := make([]float64, num)
		for i := range values {
			values[i] = centers[i%clusters][j] + r.rand.NormFloat64()*spread
		}
		m.Columns = append(m.Columns, model.Column{
			Code:    fmt.Sprintf("NUM_%02d", j),
			Kind:    model.ColumnNumeric,
			Numeric: values,
		})
	}

	labels := make([]string, num)
	for i := range labels {
		labels[i] = fmt.Sprintf("group_%d", i%clusters)
	}
	m.Columns = append(m.Columns, model.Column{
		Code:   "SEG_GROUP",
		Kind:   model.ColumnCategorical,
		Labels: labels,
	})

	return m
}

// IdenticalClustersMatrix generates k well-separated clusters of perCluster
// records each, with zero within-cluster noise. Record i belongs to cluster
// i%k. The clusters are trivially recoverable by any sane partitioner.
func IdenticalClustersMatrix(k, perCluster, numericCols int) *model.Matrix {
	num := k * perCluster
	m := &model.Matrix{RecordIDs: RecordIDs(num)}

	for j := 0; j < numericCols; j++ {
		values := make([]float64, num)
		for i := range values {
			// Separation of 100 per cluster dwarfs any standardization effect.
			values[i] = float64(i%k)*100 + float64(j)
		}
		m.Columns = append(m.Columns, model.Column{
			Code:    fmt.Sprintf("NUM_%02d", j),
			Kind:    model.ColumnNumeric,
			Numeric: values,
		})
	}

	return m
}

// WithMissing punches holes into a matrix: each value goes missing with the
// given probability. Numeric columns get NaN, categorical columns get "".
func (r *RNG) WithMissing(m *model.Matrix, missingRate float64) *model.Matrix {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range m.Columns {
		col := &m.Columns[i]
		switch col.Kind {
		case model.ColumnNumeric:
			for j := range col.Numeric {
				if r.rand.Float64() < missingRate {
					col.Numeric[j] = math.NaN()
				}
			}
		case model.ColumnCategorical:
			for j := range col.Labels {
				if r.rand.Float64() < missingRate {
					col.Labels[j] = ""
				}
			}
		}
	}

	return m
}
