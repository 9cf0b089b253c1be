package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/segmenta/internal/text"
	"github.com/hupe1980/segmenta/model"
	"github.com/hupe1980/segmenta/source"
)

func testRows() []source.Row {
	return []source.Row{
		{Code: "AGE_18_24", Description: "Share of population aged 18 to 24", Category: "demographic", Keywords: []string{"age", "young", "millennials"}},
		{Code: "INC_HIGH", Description: "High income households", Category: "financial", Keywords: []string{"income", "wealth", "affluent"}},
		{Code: "ENV_GREEN", Description: "Environmentally conscious consumers", Category: "psychographic", Keywords: []string{"environmental", "green", "sustainable"}},
		{Code: "URB_CORE", Description: "Residents of urban core areas", Category: "geographic", Keywords: []string{"urban", "city"}},
	}
}

func buildTestIndex(t *testing.T, optFns ...BuildOption) *Index {
	t.Helper()
	x, err := Build(context.Background(), []source.Source{
		source.NewMemorySource("test", testRows()),
	}, optFns...)
	require.NoError(t, err)
	return x
}

func TestBuildAndLookup(t *testing.T) {
	x := buildTestIndex(t)
	assert.Equal(t, 4, x.Len())

	desc, ok := x.Lookup("INC_HIGH")
	require.True(t, ok)
	assert.Equal(t, "High income households", desc.Description)

	_, ok = x.Lookup("NOPE")
	assert.False(t, ok)

	info := x.Info()
	assert.Equal(t, 1, info.Sources)
	assert.Equal(t, 4, info.RowsRead)
	assert.Equal(t, 0, info.Replaced)
	assert.Equal(t, 4, info.Descriptors)
}

func TestBuildLastSourceWins(t *testing.T) {
	first := source.NewMemorySource("first", []source.Row{
		{Code: "AGE_18_24", Description: "old description", Category: "demographic"},
	})
	second := source.NewMemorySource("second", []source.Row{
		{Code: "AGE_18_24", Description: "new description", Category: "demographic"},
		{Code: "INC_HIGH", Description: "High income", Category: "financial"},
	})

	x, err := Build(context.Background(), []source.Source{first, second})
	require.NoError(t, err)

	assert.Equal(t, 2, x.Len())
	desc, ok := x.Lookup("AGE_18_24")
	require.True(t, ok)
	assert.Equal(t, "new description", desc.Description)
	assert.Equal(t, 1, x.Info().Replaced)
}

func TestBuildMinCountGate(t *testing.T) {
	_, err := Build(context.Background(), []source.Source{
		source.NewMemorySource("small", testRows()),
	}, WithMinCount(100))

	var tooSmall *ErrTooSmall
	require.ErrorAs(t, err, &tooSmall)
	assert.Equal(t, 4, tooSmall.Count)
	assert.Equal(t, 100, tooSmall.Min)
}

func TestBuildRejectsBadCategory(t *testing.T) {
	_, err := Build(context.Background(), []source.Source{
		source.NewMemorySource("bad", []source.Row{
			{Code: "X", Description: "x", Category: "astrological"},
		}),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")
}

func TestBuildRejectsEmptyCode(t *testing.T) {
	_, err := Build(context.Background(), []source.Source{
		source.NewMemorySource("bad", []source.Row{
			{Description: "anonymous", Category: "demographic"},
		}),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty code")
}

func TestCandidatesFor(t *testing.T) {
	x := buildTestIndex(t)

	bm := x.CandidatesFor(text.Tokenize("high income millennials"))
	var codes []string
	it := bm.Iterator()
	for it.HasNext() {
		codes = append(codes, x.At(int(it.Next())).Code)
	}
	assert.ElementsMatch(t, []string{"AGE_18_24", "INC_HIGH"}, codes)

	assert.True(t, x.CandidatesFor([]string{"zzz"}).IsEmpty())
}

func TestVectorSimilarity(t *testing.T) {
	x := buildTestIndex(t)

	ordEnv, ok := x.Ordinal("ENV_GREEN")
	require.True(t, ok)
	ordInc, ok := x.Ordinal("INC_HIGH")
	require.True(t, ok)

	q := x.NewQueryVector(map[string]float64{"environmentally": 1, "conscious": 1})

	simEnv := Cosine(q, x.Vector(ordEnv))
	simInc := Cosine(q, x.Vector(ordInc))
	assert.Greater(t, simEnv, simInc)
	assert.GreaterOrEqual(t, simEnv, float32(0))
	assert.LessOrEqual(t, simEnv, float32(1))
}

func TestCosineSelfIsOne(t *testing.T) {
	x := buildTestIndex(t)
	v := x.Vector(0)
	assert.InDelta(t, 1.0, float64(Cosine(v, v)), 1e-5)
}

func TestCosineStableAcrossCalls(t *testing.T) {
	// A dominant weight next to tiny ones makes the dot product sensitive to
	// summation order; repeated calls must still agree to the bit.
	v := newTermVector(map[string]float64{"alpha": 4096, "beta": 1, "gamma": 1}, map[string]int{}, 4)
	w := newTermVector(map[string]float64{"alpha": 1, "beta": 4096, "gamma": 1}, map[string]int{}, 4)

	self := Cosine(v, v)
	cross := Cosine(v, w)
	for i := 0; i < 2000; i++ {
		require.Equal(t, self, Cosine(v, v))
		require.Equal(t, cross, Cosine(v, w))
	}
}

func TestTermVectorSorted(t *testing.T) {
	v := newTermVector(map[string]float64{"zebra": 1, "alpha": 2, "mid": 3}, map[string]int{}, 4)
	assert.Equal(t, []string{"alpha", "mid", "zebra"}, v.Terms)
	assert.Len(t, v.Weights, 3)
	assert.Positive(t, v.Norm)
}

func TestVersionDeterministic(t *testing.T) {
	a := buildTestIndex(t)
	b := buildTestIndex(t)
	assert.Equal(t, a.Version(), b.Version())

	changed, err := Build(context.Background(), []source.Source{
		source.NewMemorySource("test", testRows()[:3]),
	})
	require.NoError(t, err)
	assert.NotEqual(t, a.Version(), changed.Version())
}

func TestCodesSorted(t *testing.T) {
	x := buildTestIndex(t)
	assert.Equal(t, []string{"AGE_18_24", "ENV_GREEN", "INC_HIGH", "URB_CORE"}, x.Codes())
}

func TestStats(t *testing.T) {
	x, err := Build(context.Background(), []source.Source{
		source.NewMemorySource("stats", []source.Row{
			{Code: "AGE_MED", Description: "Median age", Category: "demographic",
				Stats: &model.NumericStats{Min: 18, Max: 95, Mean: 41.2}},
			{Code: "URB_CORE", Description: "Urban core residents", Category: "geographic"},
		}),
	})
	require.NoError(t, err)

	stats, ok := x.Stats("AGE_MED")
	require.True(t, ok)
	assert.Equal(t, 41.2, stats.Mean)

	_, ok = x.Stats("URB_CORE")
	assert.False(t, ok)
}

func TestHolderSwap(t *testing.T) {
	h := NewHolder(nil)
	assert.Nil(t, h.Load())

	a := buildTestIndex(t)
	assert.Nil(t, h.Swap(a))
	assert.Same(t, a, h.Load())

	b := buildTestIndex(t)
	assert.Same(t, a, h.Swap(b))
	assert.Same(t, b, h.Load())
}
