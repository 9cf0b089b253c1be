package rank

import (
	"context"
	"fmt"
	"sort"

	"github.com/hupe1980/segmenta/catalog"
	"github.com/hupe1980/segmenta/internal/text"
	"github.com/hupe1980/segmenta/model"
)

// Weights holds the composite score weights for the three signals.
type Weights struct {
	Semantic float32
	Keyword  float32
	Lexical  float32
}

// DefaultWeights is the default signal weighting.
var DefaultWeights = Weights{Semantic: 0.4, Keyword: 0.3, Lexical: 0.3}

// DefaultBoostFactor is the default multiplier for candidates in the query's
// dominant intent category.
const DefaultBoostFactor = 1.2

// refineTokenWeight is the weight carried by tokens from the refinement text
// relative to tokens carried over from the prior query.
const refineTokenWeight = 2.0

// poolExpansionFactor controls when keyword-index pruning is abandoned: with
// fewer than poolExpansionFactor*topK index hits the whole catalog is scored
// so purely semantic matches can still surface.
const poolExpansionFactor = 4

// Embedder is an injectable external semantic similarity strategy. When
// configured it replaces the built-in term-vector cosine.
type Embedder interface {
	// Similarities returns one similarity in [0,1] per code, aligned with
	// the codes slice.
	Similarities(ctx context.Context, query string, codes []string) ([]float32, error)
}

// Scorer ranks catalog variables against free-text queries. A Scorer is
// immutable after construction and safe for concurrent use.
type Scorer struct {
	table    *SynonymTable
	weights  Weights
	boost    float32
	embedder Embedder
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithSynonymTable sets the keyword-to-variable mapping table.
func WithSynonymTable(t *SynonymTable) Option {
	return func(s *Scorer) {
		if t != nil {
			s.table = t
		}
	}
}

// WithWeights sets the composite score weights.
func WithWeights(w Weights) Option {
	return func(s *Scorer) { s.weights = w }
}

// WithBoostFactor sets the intent-category boost multiplier.
func WithBoostFactor(f float32) Option {
	return func(s *Scorer) {
		if f > 0 {
			s.boost = f
		}
	}
}

// WithEmbedder sets an external semantic similarity strategy.
func WithEmbedder(e Embedder) Option {
	return func(s *Scorer) { s.embedder = e }
}

// NewScorer creates a Scorer with the given options.
func NewScorer(optFns ...Option) *Scorer {
	s := &Scorer{
		table:   NewSynonymTable(DefaultGroups()),
		weights: DefaultWeights,
		boost:   DefaultBoostFactor,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(s)
		}
	}
	return s
}

// SearchOptions holds the per-call knobs of Search and Refine.
type SearchOptions struct {
	// Category restricts results to one category when non-nil.
	Category *model.Category
	// ExcludeCodes removes specific variables from consideration.
	ExcludeCodes []string
}

// WithCategoryFilter restricts results to the given category.
func WithCategoryFilter(c model.Category) func(*SearchOptions) {
	return func(o *SearchOptions) { o.Category = &c }
}

// WithExcludeCodes removes the given codes from consideration.
func WithExcludeCodes(codes ...string) func(*SearchOptions) {
	return func(o *SearchOptions) {
		o.ExcludeCodes = append(o.ExcludeCodes, codes...)
	}
}

// Search ranks catalog variables against the query text and returns at most
// topK candidates, most relevant first.
func (s *Scorer) Search(ctx context.Context, x *catalog.Index, query string, topK int, optFns ...func(*SearchOptions)) ([]model.Candidate, error) {
	if x == nil {
		return nil, ErrCatalogUnavailable
	}
	if topK <= 0 {
		return nil, ErrInvalidK
	}

	tokens := text.Tokenize(query)
	if len(tokens) == 0 {
		return nil, ErrInvalidQuery
	}

	qw := make(map[string]float64, len(tokens))
	for _, tok := range tokens {
		qw[tok]++
	}

	var o SearchOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}

	return s.search(ctx, x, query, qw, topK, &o)
}

// Refine re-runs the search with the prior query's tokens merged with the
// extra text, the extra tokens carrying a higher weight, and the given codes
// excluded. No state is kept between calls; the caller threads the prior
// query text through.
func (s *Scorer) Refine(ctx context.Context, x *catalog.Index, priorQuery, extraText string, excludeCodes []string, topK int, optFns ...func(*SearchOptions)) ([]model.Candidate, error) {
	if x == nil {
		return nil, ErrCatalogUnavailable
	}
	if topK <= 0 {
		return nil, ErrInvalidK
	}

	prior := text.Tokenize(priorQuery)
	extra := text.Tokenize(extraText)
	if len(prior)+len(extra) == 0 {
		return nil, ErrInvalidQuery
	}

	qw := make(map[string]float64, len(prior)+len(extra))
	for _, tok := range prior {
		qw[tok]++
	}
	for _, tok := range extra {
		qw[tok] += refineTokenWeight
	}

	o := SearchOptions{ExcludeCodes: excludeCodes}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}

	return s.search(ctx, x, MergedQuery(priorQuery, extraText), qw, topK, &o)
}

// MergedQuery is the combined query text a Refine call scores against.
// Callers thread it into a further Refine as the new prior query; no state
// lives in the scorer.
func MergedQuery(priorQuery, extraText string) string {
	switch {
	case extraText == "":
		return priorQuery
	case priorQuery == "":
		return extraText
	default:
		return priorQuery + " " + extraText
	}
}

func (s *Scorer) search(ctx context.Context, x *catalog.Index, rawQuery string, qw map[string]float64, topK int, o *SearchOptions) ([]model.Candidate, error) {
	exclude := make(map[string]struct{}, len(o.ExcludeCodes))
	for _, code := range o.ExcludeCodes {
		exclude[code] = struct{}{}
	}

	// Weighted sums below are float accumulations; the sorted token order
	// keeps identical queries producing bit-identical scores.
	tokens := make([]string, 0, len(qw))
	for tok := range qw {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)

	pool := x.CandidatesFor(tokens)

	// Keyword signal and intent strengths from the synonym table.
	kwRaw := make(map[int]float64)
	catStrength := make(map[model.Category]float64)
	for _, tok := range tokens {
		w := qw[tok]
		for _, gi := range s.table.Match(tok) {
			g := s.table.Group(gi)
			catStrength[g.Category] += float64(g.Weight) * w
			for _, code := range g.Codes {
				if ord, ok := x.Ordinal(code); ok {
					kwRaw[ord] += float64(g.Weight) * w
					pool.Add(uint32(ord))
				}
			}
		}
	}

	var maxKw float64
	for _, v := range kwRaw {
		if v > maxKw {
			maxKw = v
		}
	}

	dominant := dominantCategories(catStrength)

	fullScan := pool.GetCardinality() < uint64(poolExpansionFactor*topK)

	ords := make([]int, 0, pool.GetCardinality())
	appendOrd := func(ord int) {
		desc := x.At(ord)
		if _, skip := exclude[desc.Code]; skip {
			return
		}
		if o.Category != nil && desc.Category != *o.Category {
			return
		}
		ords = append(ords, ord)
	}
	if fullScan {
		for ord := 0; ord < x.Len(); ord++ {
			appendOrd(ord)
		}
	} else {
		it := pool.Iterator()
		for it.HasNext() {
			appendOrd(int(it.Next()))
		}
	}

	semantic, err := s.semanticScores(ctx, x, rawQuery, qw, ords)
	if err != nil {
		return nil, err
	}

	scored := make([]model.Candidate, 0, len(ords))
	for i, ord := range ords {
		desc := x.At(ord)

		var kw float32
		if maxKw > 0 {
			kw = float32(kwRaw[ord] / maxKw)
		}
		lex := float32(lexicalScore(tokens, qw, x.DocTokens(ord)))
		sem := semantic[i]

		c := model.Candidate{
			Descriptor:    desc,
			KeywordScore:  kw,
			LexicalScore:  lex,
			SemanticScore: sem,
			Score:         s.composite(kw, lex, sem),
		}
		if _, hot := dominant[desc.Category]; hot {
			c.Score *= s.boost
			c.Boosted = true
		}
		if c.Score > 0 {
			scored = append(scored, c)
		}
	}

	sortCandidates(scored)
	return diversify(scored, topK), nil
}

// composite combines the three normalized signals with the configured
// weights. It is monotonic non-decreasing in each signal.
func (s *Scorer) composite(kw, lex, sem float32) float32 {
	return s.weights.Semantic*sem + s.weights.Keyword*kw + s.weights.Lexical*lex
}

func (s *Scorer) semanticScores(ctx context.Context, x *catalog.Index, rawQuery string, qw map[string]float64, ords []int) ([]float32, error) {
	out := make([]float32, len(ords))

	if s.embedder == nil {
		qvec := x.NewQueryVector(qw)
		for i, ord := range ords {
			out[i] = catalog.Cosine(qvec, x.Vector(ord))
		}
		return out, nil
	}

	codes := make([]string, len(ords))
	for i, ord := range ords {
		codes[i] = x.At(ord).Code
	}
	sims, err := s.embedder.Similarities(ctx, rawQuery, codes)
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}
	if len(sims) != len(codes) {
		return nil, fmt.Errorf("embedder returned %d similarities for %d codes", len(sims), len(codes))
	}
	copy(out, sims)
	return out, nil
}

// dominantCategories returns the categories with the maximum positive
// aggregate keyword strength. Multiple categories tie when their strengths
// are equal.
func dominantCategories(strength map[model.Category]float64) map[model.Category]struct{} {
	var max float64
	for _, v := range strength {
		if v > max {
			max = v
		}
	}

	out := make(map[model.Category]struct{})
	if max == 0 {
		return out
	}
	for c, v := range strength {
		if v == max {
			out[c] = struct{}{}
		}
	}
	return out
}

// sortCandidates orders by composite score descending, code ascending on
// ties, so output is stable across runs.
func sortCandidates(cands []model.Candidate) {
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		return cands[i].Descriptor.Code < cands[j].Descriptor.Code
	})
}

// diversify re-ranks the sorted candidates with category round-robin
// interleaving: categories are visited in descending best-score order, one
// candidate taken per visited category per pass, until topK is filled or
// candidates are exhausted.
func diversify(sorted []model.Candidate, topK int) []model.Candidate {
	if len(sorted) <= 1 {
		if len(sorted) > topK {
			return sorted[:topK]
		}
		return sorted
	}

	type bucket struct {
		category model.Category
		cands    []model.Candidate
	}

	index := make(map[model.Category]int)
	var buckets []bucket
	for _, c := range sorted {
		cat := c.Descriptor.Category
		bi, ok := index[cat]
		if !ok {
			bi = len(buckets)
			index[cat] = bi
			buckets = append(buckets, bucket{category: cat})
		}
		buckets[bi].cands = append(buckets[bi].cands, c)
	}
	// Buckets inherit descending best-score order from the first appearance
	// of each category in the sorted input.

	if topK > len(sorted) {
		topK = len(sorted)
	}

	out := make([]model.Candidate, 0, topK)
	for len(out) < topK {
		took := false
		for bi := range buckets {
			if len(out) == topK {
				break
			}
			if len(buckets[bi].cands) == 0 {
				continue
			}
			out = append(out, buckets[bi].cands[0])
			buckets[bi].cands = buckets[bi].cands[1:]
			took = true
		}
		if !took {
			break
		}
	}
	return out
}
