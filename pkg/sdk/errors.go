package classdex

import "github.com/kailas-cloud/classdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation = domain.ErrValidation
	ErrNoMatch    = domain.ErrNoMatch
	ErrStore      = domain.ErrStore
	ErrNotFound   = domain.ErrNotFound
)

// Error types re-exported for errors.As.
type (
	// ValidationError names the rejected input field.
	ValidationError = domain.ValidationError
	// NoMatchError carries suggestions for an unresolvable filter value.
	NoMatchError = domain.NoMatchError
	// StoreError wraps a failed Redis round trip.
	StoreError = domain.StoreError
)
