package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryRoundTrip(t *testing.T) {
	for _, c := range Categories() {
		parsed, err := ParseCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}

	_, err := ParseCategory("astrological")
	assert.Error(t, err)
}

func TestColumnMissing(t *testing.T) {
	num := Column{Code: "AGE", Kind: ColumnNumeric, Numeric: []float64{41, math.NaN()}}
	assert.False(t, num.Missing(0))
	assert.True(t, num.Missing(1))

	cat := Column{Code: "REG", Kind: ColumnCategorical, Labels: []string{"north", ""}}
	assert.False(t, cat.Missing(0))
	assert.True(t, cat.Missing(1))
}

func TestMatrixValidate(t *testing.T) {
	valid := &Matrix{
		RecordIDs: []string{"a", "b"},
		GeoKeys:   []string{"plz:10115", "plz:80331"},
		Columns: []Column{
			{Code: "AGE", Kind: ColumnNumeric, Numeric: []float64{20, 30}},
			{Code: "REG", Kind: ColumnCategorical, Labels: []string{"north", "south"}},
		},
	}
	require.NoError(t, valid.Validate())
	assert.Equal(t, 2, valid.Rows())

	dup := &Matrix{RecordIDs: []string{"a", "a"}}
	assert.ErrorContains(t, dup.Validate(), "duplicate record id")

	short := &Matrix{
		RecordIDs: []string{"a", "b"},
		Columns:   []Column{{Code: "AGE", Kind: ColumnNumeric, Numeric: []float64{20}}},
	}
	assert.ErrorContains(t, short.Validate(), "expected 2")

	geo := &Matrix{
		RecordIDs: []string{"a", "b"},
		GeoKeys:   []string{"plz:10115"},
	}
	assert.ErrorContains(t, geo.Validate(), "geo keys")

	empty := &Matrix{
		Columns: []Column{{Code: "X", Kind: ColumnNumeric}},
	}
	assert.ErrorContains(t, empty.Validate(), "no values")
}
