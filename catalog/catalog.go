package catalog

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/segmenta/internal/text"
	"github.com/hupe1980/segmenta/model"
	"github.com/hupe1980/segmenta/source"
)

// DefaultMinCount is the default minimum number of descriptors a merged
// catalog must contain. Production deployments configure a much higher gate;
// the permissive default keeps embedded and test catalogs usable.
const DefaultMinCount = 1

// ErrTooSmall indicates the merged catalog fell below the configured minimum
// descriptor count. This is a hard build failure: a silently shrunken catalog
// must never serve searches.
type ErrTooSmall struct {
	Count int
	Min   int
}

func (e *ErrTooSmall) Error() string {
	return fmt.Sprintf("catalog below minimum size: %d descriptors, minimum %d", e.Count, e.Min)
}

// Info carries merge diagnostics from a catalog build.
type Info struct {
	// Sources is the number of sources merged.
	Sources int
	// RowsRead is the total row count across all sources before dedup.
	RowsRead int
	// Replaced counts codes that a later source overwrote.
	Replaced int
	// Descriptors is the final deduplicated descriptor count.
	Descriptors int
}

// Index is the immutable variable catalog index.
type Index struct {
	version     uint64
	descriptors []model.VariableDescriptor
	byCode      map[string]int
	inverted    map[string]*roaring.Bitmap
	vectors     []TermVector
	tokens      [][]string
	df          map[string]int
	info        Info
}

type buildOptions struct {
	minCount int
}

// BuildOption configures catalog construction.
type BuildOption func(*buildOptions)

// WithMinCount sets the minimum descriptor count the merged catalog must
// reach. Build fails with *ErrTooSmall below it.
func WithMinCount(n int) BuildOption {
	return func(o *buildOptions) {
		if n > 0 {
			o.minCount = n
		}
	}
}

// Build merges descriptor rows from the ordered source list into one index.
// Sources are read concurrently; merge order follows the slice order, with
// later sources overwriting earlier ones on duplicate codes.
func Build(ctx context.Context, sources []source.Source, optFns ...BuildOption) (*Index, error) {
	o := buildOptions{minCount: DefaultMinCount}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}

	rowsBySource := make([][]source.Row, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			rows, err := src.Rows(gctx)
			if err != nil {
				return fmt.Errorf("source %s: %w", src.Name(), err)
			}
			rowsBySource[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	x := &Index{
		byCode:   make(map[string]int),
		inverted: make(map[string]*roaring.Bitmap),
		df:       make(map[string]int),
	}
	x.info.Sources = len(sources)

	for i, rows := range rowsBySource {
		for _, row := range rows {
			x.info.RowsRead++
			desc, err := rowToDescriptor(row)
			if err != nil {
				return nil, fmt.Errorf("source %s: %w", sources[i].Name(), err)
			}
			if ord, exists := x.byCode[desc.Code]; exists {
				// Last source wins; position in the index is kept stable.
				x.descriptors[ord] = desc
				x.info.Replaced++
				continue
			}
			x.byCode[desc.Code] = len(x.descriptors)
			x.descriptors = append(x.descriptors, desc)
		}
	}

	x.info.Descriptors = len(x.descriptors)
	if len(x.descriptors) < o.minCount {
		return nil, &ErrTooSmall{Count: len(x.descriptors), Min: o.minCount}
	}

	x.buildSearchStructures()
	x.version = x.fingerprint()

	return x, nil
}

func rowToDescriptor(row source.Row) (model.VariableDescriptor, error) {
	if row.Code == "" {
		return model.VariableDescriptor{}, fmt.Errorf("row with empty code (description %q)", row.Description)
	}
	category, err := model.ParseCategory(row.Category)
	if err != nil {
		return model.VariableDescriptor{}, fmt.Errorf("code %s: %w", row.Code, err)
	}
	return model.VariableDescriptor{
		Code:        row.Code,
		Description: row.Description,
		Category:    category,
		Keywords:    row.Keywords,
		Stats:       row.Stats,
	}, nil
}

// docTokens returns the tokens a descriptor is indexed under: its description
// text plus its curated keywords.
func docTokens(desc *model.VariableDescriptor) []string {
	tokens := text.Tokenize(desc.Description)
	for _, kw := range desc.Keywords {
		tokens = append(tokens, text.Tokenize(kw)...)
	}
	return tokens
}

func (x *Index) buildSearchStructures() {
	x.tokens = make([][]string, len(x.descriptors))
	for ord := range x.descriptors {
		tokens := docTokens(&x.descriptors[ord])
		x.tokens[ord] = tokens

		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			x.df[tok]++

			bm, ok := x.inverted[tok]
			if !ok {
				bm = roaring.New()
				x.inverted[tok] = bm
			}
			bm.Add(uint32(ord))
		}
	}

	x.vectors = make([]TermVector, len(x.descriptors))
	for ord, tokens := range x.tokens {
		tf := make(map[string]float64, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		x.vectors[ord] = newTermVector(tf, x.df, len(x.descriptors))
	}
}

// fingerprint hashes the merged descriptor content into the index version.
func (x *Index) fingerprint() uint64 {
	h := fnv.New64a()
	for i := range x.descriptors {
		d := &x.descriptors[i]
		_, _ = h.Write([]byte(d.Code))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(d.Description))
		_, _ = h.Write([]byte{0, byte(d.Category)})
		for _, kw := range d.Keywords {
			_, _ = h.Write([]byte(kw))
			_, _ = h.Write([]byte{0})
		}
	}
	return h.Sum64()
}

// Version returns the content fingerprint of the index. Two indexes built
// from identical merged content share a version.
func (x *Index) Version() uint64 { return x.version }

// Len returns the number of descriptors in the index.
func (x *Index) Len() int { return len(x.descriptors) }

// Info returns the merge diagnostics recorded at build time.
func (x *Index) Info() Info { return x.info }

// Lookup returns the descriptor for code, or false if absent.
func (x *Index) Lookup(code string) (*model.VariableDescriptor, bool) {
	ord, ok := x.byCode[code]
	if !ok {
		return nil, false
	}
	return &x.descriptors[ord], true
}

// Ordinal returns the dense index position of code, or false if absent.
func (x *Index) Ordinal(code string) (int, bool) {
	ord, ok := x.byCode[code]
	return ord, ok
}

// At returns the descriptor at the given ordinal.
func (x *Index) At(ord int) *model.VariableDescriptor {
	return &x.descriptors[ord]
}

// Vector returns the term-weighted vector of the descriptor at ord.
func (x *Index) Vector(ord int) TermVector {
	return x.vectors[ord]
}

// DocTokens returns the normalized tokens the descriptor at ord is indexed
// under. Callers must not modify the returned slice.
func (x *Index) DocTokens(ord int) []string {
	return x.tokens[ord]
}

// CandidatesFor returns the ordinals of descriptors whose indexed tokens
// intersect the given tokens. The returned bitmap is owned by the caller.
func (x *Index) CandidatesFor(tokens []string) *roaring.Bitmap {
	out := roaring.New()
	for _, tok := range tokens {
		if bm, ok := x.inverted[tok]; ok {
			out.Or(bm)
		}
	}
	return out
}

// Codes returns all catalog codes in sorted order.
func (x *Index) Codes() []string {
	codes := make([]string, 0, len(x.byCode))
	for code := range x.byCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Stats returns the numeric statistics of a variable, if present.
func (x *Index) Stats(code string) (*model.NumericStats, bool) {
	desc, ok := x.Lookup(code)
	if !ok || desc.Stats == nil {
		return nil, false
	}
	return desc.Stats, true
}
