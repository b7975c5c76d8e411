package tm

import "errors"

// Domain errors for type validation
var (
	// Candidate errors
	ErrMissingSource  = errors.New("candidate source cannot be empty")
	ErrInvalidQuality = errors.New("quality must be between 0 and 100")

	// Query errors
	ErrEmptyQuery = errors.New("query source text cannot be empty")
)
