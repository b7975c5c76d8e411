package tm

// Query describes a single translation memory lookup. The Source text is the
// cache identity, exactly as submitted (case- and whitespace-sensitive).
type Query struct {
	Source     string
	SourceLang string
	TargetLang string
}

// Validate checks if the query is valid
func (q *Query) Validate() error {
	if q.Source == "" {
		return ErrEmptyQuery
	}
	return nil
}

// Candidate represents a single suggested translation produced by a backend.
type Candidate struct {
	// Matched original text and its suggested translation. Target may be
	// empty when the backend only knows the source side.
	Source string
	Target string

	// Quality is the match quality in [0, 100]. Nil means the backend did
	// not score the candidate; the engine scores it before ranking.
	Quality *int

	// Metadata
	Context string // Disambiguation context, if the backend provides one
	Origin  string // Name of the backend that produced the candidate
}

// Validate checks if the candidate is valid
func (c *Candidate) Validate() error {
	if c.Source == "" {
		return ErrMissingSource
	}
	if c.Quality != nil && (*c.Quality < 0 || *c.Quality > 100) {
		return ErrInvalidQuality
	}
	return nil
}

// Scored reports whether the candidate carries a backend-supplied quality.
func (c *Candidate) Scored() bool {
	return c.Quality != nil
}

// QualityOf returns a pointer to q, for building scored candidates inline.
func QualityOf(q int) *int {
	return &q
}

// Sink receives ranked match lists from the engine. Implementations belong
// to the host application (a suggestion popup, an MCP response buffer, a
// test capture). Every DisplayMatches call carries a fresh slice that
// replaces the previously displayed list.
type Sink interface {
	DisplayMatches(matches []Candidate)
	ClearMatches()
}
