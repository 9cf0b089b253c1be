package cluster

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrInsufficientData is returned when the matrix holds fewer records
	// than the requested number of groups.
	ErrInsufficientData = errors.New("insufficient data: fewer records than groups")

	// ErrEmptyMatrix is returned when the matrix has no usable columns after
	// preprocessing.
	ErrEmptyMatrix = errors.New("no usable columns after preprocessing")
)

// ErrInvalidFraction indicates a malformed size band.
type ErrInvalidFraction struct {
	Min float64
	Max float64
}

func (e *ErrInvalidFraction) Error() string {
	return fmt.Sprintf("invalid size band: [%g, %g] (need 0 < min <= max <= 1)", e.Min, e.Max)
}
