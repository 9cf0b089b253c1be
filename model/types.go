package model

import (
	"fmt"
	"math"
)

// Category classifies a catalog variable by the kind of audience signal it
// captures.
type Category int

const (
	CategoryDemographic Category = iota
	CategoryBehavioral
	CategoryFinancial
	CategoryPsychographic
	CategoryGeographic
)

// Categories returns all known categories in declaration order.
func Categories() []Category {
	return []Category{
		CategoryDemographic,
		CategoryBehavioral,
		CategoryFinancial,
		CategoryPsychographic,
		CategoryGeographic,
	}
}

func (c Category) String() string {
	switch c {
	case CategoryDemographic:
		return "demographic"
	case CategoryBehavioral:
		return "behavioral"
	case CategoryFinancial:
		return "financial"
	case CategoryPsychographic:
		return "psychographic"
	case CategoryGeographic:
		return "geographic"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// ParseCategory maps a string (as it appears in ingested rows) to a Category.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "demographic":
		return CategoryDemographic, nil
	case "behavioral":
		return CategoryBehavioral, nil
	case "financial":
		return CategoryFinancial, nil
	case "psychographic":
		return CategoryPsychographic, nil
	case "geographic":
		return CategoryGeographic, nil
	default:
		return 0, fmt.Errorf("unknown category: %q", s)
	}
}

// NumericStats carries the optional value range of a numeric variable.
type NumericStats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// VariableDescriptor describes one attribute in the catalog.
// Descriptors are immutable once the catalog index is built.
type VariableDescriptor struct {
	// Code is the unique key of the variable within the catalog.
	Code string `json:"code"`
	// Description is the human-readable description text.
	Description string `json:"description"`
	// Category is the coarse classification of the variable.
	Category Category `json:"category"`
	// Keywords are curated search terms attached by the source.
	Keywords []string `json:"keywords,omitempty"`
	// Stats is present for numeric variables only.
	Stats *NumericStats `json:"stats,omitempty"`
}

// Candidate is one ranked search result.
type Candidate struct {
	// Descriptor points into the immutable catalog index.
	Descriptor *VariableDescriptor
	// Score is the composite relevance score.
	Score float32
	// KeywordScore, LexicalScore and SemanticScore are the normalized
	// per-signal sub-scores the composite was built from.
	KeywordScore  float32
	LexicalScore  float32
	SemanticScore float32
	// Boosted reports whether the intent-category boost was applied.
	Boosted bool
}

// ColumnKind distinguishes numeric from categorical matrix columns.
type ColumnKind int

const (
	ColumnNumeric ColumnKind = iota
	ColumnCategorical
)

func (k ColumnKind) String() string {
	switch k {
	case ColumnNumeric:
		return "numeric"
	case ColumnCategorical:
		return "categorical"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Column holds one variable's values across all records of a matrix.
// Exactly one of Numeric/Labels is populated, matching Kind.
// Missing values are NaN (numeric) or "" (categorical).
type Column struct {
	Code    string
	Kind    ColumnKind
	Numeric []float64
	Labels  []string
}

// Len returns the number of record values in the column.
func (c *Column) Len() int {
	if c.Kind == ColumnNumeric {
		return len(c.Numeric)
	}
	return len(c.Labels)
}

// Missing reports whether the value at row i is missing.
func (c *Column) Missing(i int) bool {
	if c.Kind == ColumnNumeric {
		return math.IsNaN(c.Numeric[i])
	}
	return c.Labels[i] == ""
}

// Matrix is a columnar record matrix as returned by a data retriever.
// Columns are ordered to match the variable codes that were requested.
type Matrix struct {
	// RecordIDs identify the rows. Must be unique.
	RecordIDs []string
	// GeoKeys optionally attach a geographic key per record. Carried
	// through untouched for downstream profiling; empty means absent.
	GeoKeys []string
	// Columns hold the per-variable values, each of length len(RecordIDs).
	Columns []Column
}

// Rows returns the number of records in the matrix.
func (m *Matrix) Rows() int { return len(m.RecordIDs) }

// Validate checks the structural invariants of the matrix.
func (m *Matrix) Validate() error {
	n := len(m.RecordIDs)
	seen := make(map[string]struct{}, n)
	for _, id := range m.RecordIDs {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate record id: %q", id)
		}
		seen[id] = struct{}{}
	}
	if m.GeoKeys != nil && len(m.GeoKeys) != n {
		return fmt.Errorf("geo keys: %d values, expected %d", len(m.GeoKeys), n)
	}
	for i := range m.Columns {
		c := &m.Columns[i]
		if c.Len() != n {
			return fmt.Errorf("column %q has %d values, expected %d", c.Code, c.Len(), n)
		}
		if c.Kind == ColumnNumeric && c.Numeric == nil {
			return fmt.Errorf("numeric column %q has no values", c.Code)
		}
		if c.Kind == ColumnCategorical && c.Labels == nil {
			return fmt.Errorf("categorical column %q has no values", c.Code)
		}
	}
	return nil
}

// DeviationStat reports how far a segment deviates from the population on one
// encoded dimension, in population standard deviation units. This is the
// structured input an external profile service renders into prose.
type DeviationStat struct {
	Dimension      string  `json:"dimension"`
	SegmentMean    float64 `json:"segment_mean"`
	PopulationMean float64 `json:"population_mean"`
	Deviation      float64 `json:"deviation"`
}

// Segment is one output group of a partition run.
type Segment struct {
	// ID is the segment label, 0..k-1.
	ID int `json:"id"`
	// Members are the record ids of the segment, in input order.
	Members []string `json:"members"`
	// Size is len(Members).
	Size int `json:"size"`
	// Fraction is Size divided by the population size.
	Fraction float64 `json:"fraction"`
	// Centroid is the component-wise median of the members in encoded space.
	Centroid []float32 `json:"centroid"`
	// Dispersion is the mean L1 distance of members to the centroid.
	Dispersion float64 `json:"dispersion"`
	// WithinBounds reports whether Size lies inside the configured band.
	WithinBounds bool `json:"within_bounds"`
	// Deviations describe the segment against the population per dimension.
	Deviations []DeviationStat `json:"deviations,omitempty"`
}

// PartitionResult is the complete outcome of one partition run.
type PartitionResult struct {
	Segments []Segment `json:"segments"`
	// Assignments maps record index to segment ID.
	Assignments []int `json:"assignments"`
	// ConstraintsMet is false when at least one segment size is out of band.
	ConstraintsMet bool `json:"constraints_met"`
	// Partial is true when the run was cancelled and the best assignment so
	// far was returned.
	Partial bool `json:"partial"`
	// Converged is true when the run stopped because assignments stabilized.
	Converged bool `json:"converged"`
	// Iterations is the number of assign/update rounds performed.
	Iterations int `json:"iterations"`
	// TotalDispersion is the summed L1 distance of records to their medians.
	TotalDispersion float64 `json:"total_dispersion"`
	// DroppedColumns lists encoded columns removed during preprocessing.
	DroppedColumns []string `json:"dropped_columns,omitempty"`
	// Degenerate is true when the input had no usable spread and ties were
	// broken by record order.
	Degenerate bool `json:"degenerate"`
	// Notes carry human-readable remarks, e.g. which segments are out of band.
	Notes []string `json:"notes,omitempty"`
}
