package source

import (
	"context"

	"github.com/hupe1980/segmenta/model"
)

// Row is one descriptor row as delivered by a catalog source.
type Row struct {
	Code        string              `json:"code"`
	Description string              `json:"description"`
	Category    string              `json:"category"`
	Keywords    []string            `json:"keywords,omitempty"`
	Stats       *model.NumericStats `json:"stats,omitempty"`
}

// Source yields descriptor rows for catalog construction.
// Implementations must be safe to call from multiple goroutines; the catalog
// builder reads sources concurrently.
type Source interface {
	// Name identifies the source in logs and build diagnostics.
	Name() string
	// Rows reads all descriptor rows from the source.
	Rows(ctx context.Context) ([]Row, error)
}

// MemorySource is a Source backed by an in-memory row slice.
type MemorySource struct {
	name string
	rows []Row
}

// NewMemorySource creates a MemorySource with the given name and rows.
func NewMemorySource(name string, rows []Row) *MemorySource {
	return &MemorySource{name: name, rows: rows}
}

// Name implements Source.
func (s *MemorySource) Name() string { return s.name }

// Rows implements Source.
func (s *MemorySource) Rows(ctx context.Context) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Row, len(s.rows))
	copy(out, s.rows)
	return out, nil
}
