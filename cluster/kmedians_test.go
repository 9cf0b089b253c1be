package cluster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/segmenta/model"
	"github.com/hupe1980/segmenta/testutil"
)

func sumSizes(res *model.PartitionResult) int {
	total := 0
	for _, s := range res.Segments {
		total += s.Size
	}
	return total
}

func TestPartitionSizeBand(t *testing.T) {
	rng := testutil.NewRNG(42)
	m := rng.ClusteredMatrix(1000, 4, 10, 0.5)

	res, err := Partition(context.Background(), m, Params{
		K:       10,
		MinFrac: 0.05,
		MaxFrac: 0.10,
		Seed:    1,
	})
	require.NoError(t, err)

	assert.Equal(t, 1000, sumSizes(res))
	assert.Len(t, res.Assignments, 1000)
	assert.True(t, res.ConstraintsMet)

	for _, s := range res.Segments {
		assert.GreaterOrEqual(t, s.Size, 50, "segment %d", s.ID)
		assert.LessOrEqual(t, s.Size, 100, "segment %d", s.ID)
		assert.True(t, s.WithinBounds, "segment %d", s.ID)
		assert.InDelta(t, float64(s.Size)/1000, s.Fraction, 1e-9)
	}
}

func TestPartitionEveryRecordAssignedOnce(t *testing.T) {
	rng := testutil.NewRNG(7)
	m := rng.ClusteredMatrix(200, 3, 4, 1.0)

	res, err := Partition(context.Background(), m, Params{K: 4, MinFrac: 0.1, MaxFrac: 0.4, Seed: 7})
	require.NoError(t, err)

	seen := make(map[string]int)
	for _, s := range res.Segments {
		for _, id := range s.Members {
			seen[id]++
		}
	}
	require.Len(t, seen, 200)
	for id, n := range seen {
		assert.Equal(t, 1, n, id)
	}

	for rec, g := range res.Assignments {
		assert.Contains(t, res.Segments[g].Members, m.RecordIDs[rec])
	}
}

func TestPartitionRecoversPlantedClusters(t *testing.T) {
	// Four zero-noise clusters of 25 records each; record i belongs to i%4.
	m := testutil.IdenticalClustersMatrix(4, 25, 3)

	res, err := Partition(context.Background(), m, Params{K: 4, MinFrac: 0.2, MaxFrac: 0.3, Seed: 99})
	require.NoError(t, err)
	require.True(t, res.Converged)

	// Same planted cluster means same segment, up to label permutation.
	labelOf := make(map[int]int)
	for rec, g := range res.Assignments {
		planted := rec % 4
		if want, ok := labelOf[planted]; ok {
			assert.Equal(t, want, g, "record %d", rec)
		} else {
			labelOf[planted] = g
		}
	}
	assert.Len(t, labelOf, 4)

	for _, s := range res.Segments {
		assert.Equal(t, 25, s.Size)
		assert.Zero(t, s.Dispersion)
	}
}

func TestPartitionDeterministic(t *testing.T) {
	rng := testutil.NewRNG(5)
	m := rng.ClusteredMatrix(300, 3, 5, 0.8)

	a, err := Partition(context.Background(), m, Params{K: 5, MinFrac: 0.1, MaxFrac: 0.3, Seed: 1234})
	require.NoError(t, err)
	b, err := Partition(context.Background(), m, Params{K: 5, MinFrac: 0.1, MaxFrac: 0.3, Seed: 1234})
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestPartitionParamValidation(t *testing.T) {
	rng := testutil.NewRNG(1)
	m := rng.ClusteredMatrix(20, 2, 2, 0.5)
	ctx := context.Background()

	_, err := Partition(ctx, m, Params{K: 0})
	assert.ErrorIs(t, err, ErrInvalidK)

	_, err = Partition(ctx, m, Params{K: 2, MinFrac: 0.5, MaxFrac: 0.2, Seed: 1})
	var fracErr *ErrInvalidFraction
	assert.ErrorAs(t, err, &fracErr)

	_, err = Partition(ctx, m, Params{K: 2, MinFrac: -0.1, MaxFrac: 0.5, Seed: 1})
	assert.ErrorAs(t, err, &fracErr)

	_, err = Partition(ctx, m, Params{K: 2, MinFrac: 0.1, MaxFrac: 1.5, Seed: 1})
	assert.ErrorAs(t, err, &fracErr)

	_, err = Partition(ctx, m, Params{K: 50, MinFrac: 0.01, MaxFrac: 0.9, Seed: 1})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestPartitionDefaultBand(t *testing.T) {
	rng := testutil.NewRNG(3)
	m := rng.ClusteredMatrix(1000, 3, 10, 0.5)

	res, err := Partition(context.Background(), m, Params{K: 10, Seed: 3})
	require.NoError(t, err)

	for _, s := range res.Segments {
		assert.GreaterOrEqual(t, s.Size, 50)
		assert.LessOrEqual(t, s.Size, 100)
	}
}

func TestPartitionUnsatisfiableBandReported(t *testing.T) {
	rng := testutil.NewRNG(11)
	m := rng.ClusteredMatrix(30, 2, 3, 0.5)

	// 3 segments of at most 6 records cannot hold 30 records.
	res, err := Partition(context.Background(), m, Params{K: 3, MinFrac: 0.1, MaxFrac: 0.2, Seed: 11})
	require.NoError(t, err)

	assert.Equal(t, 30, sumSizes(res))
	assert.False(t, res.ConstraintsMet)
	assert.NotEmpty(t, res.Notes)

	out := 0
	for _, s := range res.Segments {
		if !s.WithinBounds {
			out++
		}
	}
	assert.Positive(t, out)
}

func TestPartitionCancelledReturnsPartial(t *testing.T) {
	rng := testutil.NewRNG(8)
	m := rng.ClusteredMatrix(500, 4, 8, 1.0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Partition(ctx, m, Params{K: 8, MinFrac: 0.05, MaxFrac: 0.3, Seed: 8})
	require.NoError(t, err)

	assert.True(t, res.Partial)
	assert.Equal(t, 500, sumSizes(res))
	assert.Len(t, res.Assignments, 500)
}

func TestPartitionDeviationsProfileSegments(t *testing.T) {
	m := testutil.IdenticalClustersMatrix(2, 10, 1)

	res, err := Partition(context.Background(), m, Params{K: 2, MinFrac: 0.4, MaxFrac: 0.6, Seed: 2})
	require.NoError(t, err)

	// Two symmetric clusters deviate from the population mean in opposite
	// directions by exactly one (population) standard deviation.
	var devs []float64
	for _, s := range res.Segments {
		require.Len(t, s.Deviations, 1)
		d := s.Deviations[0]
		assert.Equal(t, "NUM_00", d.Dimension)
		assert.InDelta(t, 50, d.PopulationMean, 1e-6)
		devs = append(devs, d.Deviation)
	}
	require.Len(t, devs, 2)
	assert.InDelta(t, 0, devs[0]+devs[1], 1e-5)
	assert.InDelta(t, 1, devs[0]*devs[0], 1e-5)

	// Segment means are reported in raw units.
	means := []float64{res.Segments[0].Deviations[0].SegmentMean, res.Segments[1].Deviations[0].SegmentMean}
	assert.ElementsMatch(t, []float64{0, 100}, means)
}

func TestPartitionDroppedColumnsSurface(t *testing.T) {
	m := &model.Matrix{
		RecordIDs: testutil.RecordIDs(10),
		Columns: []model.Column{
			{Code: "CONST", Kind: model.ColumnNumeric, Numeric: make([]float64, 10)},
			{Code: "X", Kind: model.ColumnNumeric, Numeric: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
		},
	}

	res, err := Partition(context.Background(), m, Params{K: 2, MinFrac: 0.2, MaxFrac: 0.8, Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"CONST"}, res.DroppedColumns)
}

func TestDetectDegenerate(t *testing.T) {
	r := &run{n: 3, k: 2, d: []float32{1, 1, 1, 1, 1, 1}}
	r.detectDegenerate()
	assert.True(t, r.degenerate)
	assert.NotEmpty(t, r.notes)

	r = &run{n: 3, k: 2, d: []float32{1, 1, 1, 2, 1, 1}}
	r.detectDegenerate()
	assert.False(t, r.degenerate)
}

func TestConfidenceOrderPrefersUnambiguousRecords(t *testing.T) {
	// Record 0 is ambiguous (margin 0), record 1 is confident (margin 5).
	r := &run{n: 2, k: 2, d: []float32{3, 3, 1, 6}}
	order := r.confidenceOrder()
	assert.Equal(t, []int{1, 0}, order)
}
