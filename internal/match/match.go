package match

import (
	"context"
	"errors"

	"github.com/localizers/tmatch/pkg/tm"
)

// Common errors
var (
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrBackendDisabled    = errors.New("backend disabled")
	ErrLangUnsupported    = errors.New("language pair not supported")
	ErrMalformedResponse  = errors.New("malformed backend response")
)

// Backend names, also used as candidate origins
const (
	SourceLocal    = "currentfile"
	SourceRemote   = "remotetm"
	SourceOpenTran = "opentran"
)

// Retry configuration for network-backed sources
const (
	MaxRetries        = 3
	InitialBackoffMs  = 100
	MaxBackoffMs      = 5000
	BackoffMultiplier = 2.0
)

// Source is a single translation memory backend. Implementations decide
// their own candidate filtering (dropping exact self-matches, capping
// candidate counts) but never perform cross-backend ranking; that belongs
// to the engine's aggregator.
//
// Query returns the backend's candidates for the query, or an error. The
// engine treats any error as "zero candidates" and keeps the pipeline
// alive; a Source must not panic across the call boundary.
type Source interface {
	// Query returns zero or more candidates for the query
	Query(ctx context.Context, q tm.Query) ([]tm.Candidate, error)

	// Name returns the backend's stable identifier
	Name() string

	// Close releases any resources held by the backend
	Close() error
}

// Pusher is implemented by sources that can accept uploads of translated
// units from the open document.
type Pusher interface {
	Push(ctx context.Context, name string, q tm.Query, units []Unit) error
}

// Unit is a translated pair uploaded to a remote TM server.
type Unit struct {
	Source  string `json:"source"`
	Target  string `json:"target"`
	Context string `json:"context,omitempty"`
}
