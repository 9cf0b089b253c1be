package catalog

import (
	"math"
	"sort"
)

// TermVector is a sparse term-weighted representation of a text. Terms are
// sorted and Weights aligns with them; Norm caches the Euclidean norm for
// cosine computation. The fixed term order keeps dot products bit-identical
// across calls: float addition is order-sensitive, and map iteration order
// is not stable.
type TermVector struct {
	Terms   []string
	Weights []float32
	Norm    float32
}

// Cosine returns the cosine similarity of two term vectors in [0,1].
func Cosine(a, b TermVector) float32 {
	if a.Norm == 0 || b.Norm == 0 {
		return 0
	}

	var dot float32
	i, j := 0, 0
	for i < len(a.Terms) && j < len(b.Terms) {
		switch {
		case a.Terms[i] < b.Terms[j]:
			i++
		case a.Terms[i] > b.Terms[j]:
			j++
		default:
			dot += a.Weights[i] * b.Weights[j]
			i++
			j++
		}
	}
	if dot <= 0 {
		return 0
	}

	sim := dot / (a.Norm * b.Norm)
	if sim > 1 {
		// Rounding can nudge identical texts past 1.
		sim = 1
	}
	return sim
}

// idf computes the inverse document frequency for a term occurring in df of
// n documents. Same smoothed formulation BM25 uses, so rare catalog terms
// dominate and boilerplate words fade out.
func idf(df, n int) float64 {
	return math.Log(1 + (float64(n)-float64(df)+0.5)/(float64(df)+0.5))
}

// newTermVector builds a TF-IDF vector from raw token weights and the
// document frequencies of the corpus.
func newTermVector(tokenWeights map[string]float64, df map[string]int, docCount int) TermVector {
	terms := make([]string, 0, len(tokenWeights))
	for term := range tokenWeights {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	v := TermVector{
		Terms:   make([]string, 0, len(terms)),
		Weights: make([]float32, 0, len(terms)),
	}
	var norm2 float64
	for _, term := range terms {
		w := tokenWeights[term] * idf(df[term], docCount)
		if w == 0 {
			continue
		}
		v.Terms = append(v.Terms, term)
		v.Weights = append(v.Weights, float32(w))
		norm2 += w * w
	}
	v.Norm = float32(math.Sqrt(norm2))
	return v
}

// NewQueryVector builds a term vector for a query against this index's
// document frequencies. tokenWeights carries per-token multiplicities;
// refined queries weight fresh tokens higher than carried-over ones.
func (x *Index) NewQueryVector(tokenWeights map[string]float64) TermVector {
	return newTermVector(tokenWeights, x.df, len(x.descriptors))
}

// IDF exposes the index's inverse document frequency for a term.
func (x *Index) IDF(term string) float64 {
	return idf(x.df[term], len(x.descriptors))
}
