package segmenta

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/segmenta/catalog"
	"github.com/hupe1980/segmenta/cluster"
	"github.com/hupe1980/segmenta/rank"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrInvalidQuery is returned when a query carries no usable tokens.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrCatalogUnavailable is returned when no catalog index is installed.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrClosed is returned for operations on a closed engine.
	ErrClosed = errors.New("engine is closed")

	// ErrInsufficientData is returned when a matrix holds fewer records than
	// the requested number of segments.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrCancelled is returned when an operation was cut short by its
	// context before producing a result. Partition runs are the exception:
	// they return their best assignment so far with Partial=true instead.
	ErrCancelled = errors.New("operation cancelled")
)

// ErrCatalogTooSmall indicates a catalog below the configured minimum size.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrCatalogTooSmall struct {
	Count int
	Min   int
	cause error
}

func (e *ErrCatalogTooSmall) Error() string {
	return fmt.Sprintf("catalog too small: %d variables, need at least %d", e.Count, e.Min)
}

func (e *ErrCatalogTooSmall) Unwrap() error { return e.cause }

// ErrInvalidFraction indicates a malformed segment size band.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidFraction struct {
	Min   float64
	Max   float64
	cause error
}

func (e *ErrInvalidFraction) Error() string {
	return fmt.Sprintf("invalid size band: [%g, %g]", e.Min, e.Max)
}

func (e *ErrInvalidFraction) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}

	// Argument normalization across subpackages.
	if errors.Is(err, rank.ErrInvalidK) || errors.Is(err, cluster.ErrInvalidK) {
		return fmt.Errorf("%w: %w", ErrInvalidK, err)
	}
	if errors.Is(err, rank.ErrInvalidQuery) {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	if errors.Is(err, rank.ErrCatalogUnavailable) {
		return fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	if errors.Is(err, cluster.ErrInsufficientData) || errors.Is(err, cluster.ErrEmptyMatrix) {
		return fmt.Errorf("%w: %w", ErrInsufficientData, err)
	}

	var ts *catalog.ErrTooSmall
	if errors.As(err, &ts) {
		return &ErrCatalogTooSmall{Count: ts.Count, Min: ts.Min, cause: err}
	}
	var fr *cluster.ErrInvalidFraction
	if errors.As(err, &fr) {
		return &ErrInvalidFraction{Min: fr.Min, Max: fr.Max, cause: err}
	}

	return err
}
