package rank

import "errors"

var (
	// ErrInvalidQuery is returned when the query is empty or contains no
	// scoreable tokens.
	ErrInvalidQuery = errors.New("invalid query: no scoreable tokens")

	// ErrCatalogUnavailable is returned when no catalog index has been
	// published yet. Callers may retry after the catalog loads.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrInvalidK is returned when topK is not positive.
	ErrInvalidK = errors.New("k must be positive")
)
