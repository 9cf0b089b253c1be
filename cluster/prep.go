package cluster

import (
	"fmt"
	"math"
	"sort"

	"github.com/hupe1980/segmenta/model"
)

// unknownLabel is the explicit category assigned to missing categorical
// values. Rows are never dropped for missingness.
const unknownLabel = "unknown"

// Prepared is an encoded, standardized matrix ready for clustering.
type Prepared struct {
	RecordIDs []string
	// Vectors is the flattened n*Dim encoded matrix.
	Vectors []float32
	Dim     int
	// DimNames names each encoded dimension; one-hot dimensions are named
	// "column=label".
	DimNames []string
	// Dropped lists encoded dimensions removed for being constant or fully
	// missing.
	Dropped []string
	// PopMean and PopStd describe each kept dimension before standardization;
	// standardized numeric dimensions report their raw mean/std so deviation
	// stats can be mapped back.
	PopMean []float64
	PopStd  []float64
	// Standardized marks which kept dimensions were z-scored (raw numerics);
	// one-hot indicators keep their 0/1 values.
	Standardized []bool
}

// encodedDim is one candidate output dimension during preparation.
type encodedDim struct {
	name   string
	values []float64
	// standardize marks raw numeric dimensions; one-hot indicators stay 0/1.
	standardize bool
}

// Prepare imputes, encodes and standardizes the matrix. It is a pure
// function of its input.
func Prepare(m *model.Matrix) (*Prepared, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	n := m.Rows()
	if n == 0 {
		return nil, ErrInsufficientData
	}

	var dims []encodedDim
	for i := range m.Columns {
		col := &m.Columns[i]
		switch col.Kind {
		case model.ColumnNumeric:
			dims = append(dims, imputeNumeric(col))
		case model.ColumnCategorical:
			dims = append(dims, encodeCategorical(col, n)...)
		default:
			return nil, fmt.Errorf("column %q: unknown kind %v", col.Code, col.Kind)
		}
	}

	p := &Prepared{
		RecordIDs: m.RecordIDs,
	}

	for _, d := range dims {
		mean, std := meanStd(d.values)
		if std == 0 {
			// Constant after imputation carries no distance signal.
			p.Dropped = append(p.Dropped, d.name)
			continue
		}
		p.DimNames = append(p.DimNames, d.name)
		p.PopMean = append(p.PopMean, mean)
		p.PopStd = append(p.PopStd, std)
		p.Standardized = append(p.Standardized, d.standardize)
		if d.standardize {
			for i, v := range d.values {
				d.values[i] = (v - mean) / std
			}
		}
	}

	p.Dim = len(p.DimNames)
	if p.Dim == 0 {
		return nil, ErrEmptyMatrix
	}

	// Second pass flattens kept dimensions row-major.
	p.Vectors = make([]float32, n*p.Dim)
	kept := 0
	for _, d := range dims {
		if isDropped(p.Dropped, d.name) {
			continue
		}
		for row, v := range d.values {
			p.Vectors[row*p.Dim+kept] = float32(v)
		}
		kept++
	}

	return p, nil
}

func isDropped(dropped []string, name string) bool {
	for _, d := range dropped {
		if d == name {
			return true
		}
	}
	return false
}

// imputeNumeric replaces NaN values with the column median. A fully missing
// column imputes to zero and is dropped later as constant.
func imputeNumeric(col *model.Column) encodedDim {
	present := make([]float64, 0, len(col.Numeric))
	for _, v := range col.Numeric {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}

	med := 0.0
	if len(present) > 0 {
		med = median(present)
	}

	values := make([]float64, len(col.Numeric))
	for i, v := range col.Numeric {
		if math.IsNaN(v) {
			values[i] = med
		} else {
			values[i] = v
		}
	}

	return encodedDim{name: col.Code, values: values, standardize: true}
}

// encodeCategorical one-hot encodes a categorical column, with missing
// values mapped to an explicit unknown label. Label order is sorted for
// determinism.
func encodeCategorical(col *model.Column, n int) []encodedDim {
	labels := make(map[string][]int)
	for i, label := range col.Labels {
		if label == "" {
			label = unknownLabel
		}
		labels[label] = append(labels[label], i)
	}

	names := make([]string, 0, len(labels))
	for label := range labels {
		names = append(names, label)
	}
	sort.Strings(names)

	dims := make([]encodedDim, 0, len(names))
	for _, label := range names {
		values := make([]float64, n)
		for _, row := range labels[label] {
			values[row] = 1
		}
		dims = append(dims, encodedDim{
			name:   col.Code + "=" + label,
			values: values,
		})
	}
	return dims
}

// median returns the median of values. values is modified (sorted).
// Even-sized inputs return the mean of the two middle values.
func median(values []float64) float64 {
	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid]
	}
	return (values[mid-1] + values[mid]) / 2
}

func meanStd(values []float64) (float64, float64) {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(values)))
}
