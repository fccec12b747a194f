package dto

import (
	"errors"

	"github.com/kailas-cloud/classdex/internal/domain"
)

// ErrorCode is a stable, machine-readable error identifier.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeNoMatch          ErrorCode = "no_match"
	CodeNotFound         ErrorCode = "not_found"
	CodeStoreUnavailable ErrorCode = "store_unavailable"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the error body of every transport.
type ErrorResponse struct {
	Code        ErrorCode `json:"code"`
	Message     string    `json:"message"`
	Field       string    `json:"field,omitempty"`
	Suggestions []string  `json:"suggestions,omitempty"`
}

// NewErrorResponse classifies err. Store and internal failures get a
// generic message so driver details never reach callers.
func NewErrorResponse(err error) ErrorResponse {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		out := ErrorResponse{Code: CodeValidationFailed, Message: err.Error()}
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			out.Field = ve.Field
		}
		return out
	case domain.KindNoMatch:
		out := ErrorResponse{Code: CodeNoMatch, Message: err.Error()}
		var nm *domain.NoMatchError
		if errors.As(err, &nm) {
			out.Field = nm.Field
			out.Suggestions = nm.Suggestions
		}
		return out
	case domain.KindNotFound:
		return ErrorResponse{Code: CodeNotFound, Message: err.Error()}
	case domain.KindStore:
		return ErrorResponse{Code: CodeStoreUnavailable, Message: domain.ErrStore.Error()}
	default:
		return ErrorResponse{Code: CodeInternalError, Message: "internal error"}
	}
}
