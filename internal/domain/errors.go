package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation signals caller-correctable malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrNoMatch signals that a free-text value did not resolve to a catalog value.
	ErrNoMatch = errors.New("no matching value")
	// ErrStore signals a failed or malformed document store round trip.
	ErrStore = errors.New("store failure")
	// ErrNotFound signals a missing section.
	ErrNotFound = errors.New("not found")
)

// Kind is the closed set of failure categories callers branch on.
type Kind int

const (
	// KindInternal covers anything not classified below.
	KindInternal Kind = iota
	KindValidation
	KindNoMatch
	KindStore
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNoMatch:
		return "no_match"
	case KindStore:
		return "store"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// KindOf classifies err. Nil maps to KindInternal; check err != nil first.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNoMatch):
		return KindNoMatch
	case errors.Is(err, ErrStore):
		return KindStore
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindInternal
	}
}

// ValidationError names the offending field and, for list inputs, the
// zero-based position of the offending element (-1 when not applicable).
type ValidationError struct {
	Field    string
	Position int
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s: %s[%d]: %s", ErrValidation.Error(), e.Field, e.Position, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidation creates a validation error for a scalar field.
func NewValidation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Position: -1, Reason: fmt.Sprintf(format, args...)}
}

// NewValidationAt creates a validation error for element pos of a list field.
func NewValidationAt(field string, pos int, format string, args ...any) error {
	return &ValidationError{Field: field, Position: pos, Reason: fmt.Sprintf(format, args...)}
}

// Relabel reports err as a validation failure of field. The reason of a
// wrapped *ValidationError is kept; any other error becomes the reason.
func Relabel(field string, err error) error {
	return RelabelAt(field, -1, err)
}

// RelabelAt is Relabel for element pos of a list field.
func RelabelAt(field string, pos int, err error) error {
	reason := err.Error()
	var ve *ValidationError
	if errors.As(err, &ve) {
		reason = ve.Reason
	}
	return &ValidationError{Field: field, Position: pos, Reason: reason}
}

// NoMatchError carries the suggestions a caller may surface for clarification.
type NoMatchError struct {
	Field       string
	Input       string
	Suggestions []string
}

func (e *NoMatchError) Error() string {
	msg := fmt.Sprintf("%s for %s %q", ErrNoMatch.Error(), e.Field, e.Input)
	if len(e.Suggestions) > 0 {
		msg += "; did you mean: " + strings.Join(e.Suggestions, ", ")
	}
	return msg
}

func (e *NoMatchError) Unwrap() error { return ErrNoMatch }

// StoreError wraps a document store failure with the operation that failed.
// It matches both ErrStore and the underlying cause.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStore.Error(), e.Op, e.Err)
}

func (e *StoreError) Unwrap() []error { return []error{ErrStore, e.Err} }

// NewStoreError wraps err unless it is nil.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
