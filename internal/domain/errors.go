package domain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned by a KeyValueStore for a missing key.
var ErrNotFound = errors.New("not found")

// ErrorType is the taxonomy surfaced to clients.
type ErrorType string

// Error types.
const (
	ErrorTypeValidation          ErrorType = "validation_error"
	ErrorTypeUnsupportedProvider ErrorType = "unsupported_provider"
	ErrorTypeUnsupportedModel    ErrorType = "unsupported_model"
	ErrorTypeProviderHTTP        ErrorType = "provider_http_error"
	ErrorTypeProviderParse       ErrorType = "provider_parse_error"
	ErrorTypeTimeout             ErrorType = "timeout"
	ErrorTypeCanceled            ErrorType = "canceled"
	ErrorTypeUnknown             ErrorType = "unknown_error"
)

// ValidationError indicates a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// UnsupportedProviderError indicates a provider with no registered adapter.
type UnsupportedProviderError struct {
	Provider string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("Unsupported provider: %s", e.Provider)
}

// UnsupportedModelError indicates a provider/model pair unknown to the estimator.
type UnsupportedModelError struct {
	Provider ProviderID
	Model    string
}

func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("Unsupported model %s for provider %s", e.Model, e.Provider)
}

// ProviderHTTPError indicates a non-2xx upstream response.
type ProviderHTTPError struct {
	Provider ProviderID
	Status   int
	Body     string
}

func (e *ProviderHTTPError) Error() string {
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.Status, e.Body)
}

// Retryable reports whether the upstream status is worth retrying.
func (e *ProviderHTTPError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

// ProviderParseError indicates an upstream response of unexpected shape.
type ProviderParseError struct {
	Provider ProviderID
	Cause    error
}

func (e *ProviderParseError) Error() string {
	return fmt.Sprintf("failed to parse %s response: %v", e.Provider, e.Cause)
}

func (e *ProviderParseError) Unwrap() error {
	return e.Cause
}

// ClassifyError maps an error onto the taxonomy.
func ClassifyError(err error) ErrorType {
	var (
		validationErr *ValidationError
		providerErr   *UnsupportedProviderError
		modelErr      *UnsupportedModelError
		httpErr       *ProviderHTTPError
		parseErr      *ProviderParseError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &validationErr):
		return ErrorTypeValidation
	case errors.As(err, &providerErr):
		return ErrorTypeUnsupportedProvider
	case errors.As(err, &modelErr):
		return ErrorTypeUnsupportedModel
	case errors.As(err, &httpErr):
		return ErrorTypeProviderHTTP
	case errors.As(err, &parseErr):
		return ErrorTypeProviderParse
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeTimeout
	case errors.Is(err, context.Canceled):
		return ErrorTypeCanceled
	default:
		return ErrorTypeUnknown
	}
}

// HTTPStatus returns the HTTP status code for an error.
func HTTPStatus(err error) int {
	return StatusForErrorType(ClassifyError(err))
}

// StatusForErrorType returns the HTTP status code for an error type.
func StatusForErrorType(t ErrorType) int {
	switch t {
	case ErrorTypeValidation, ErrorTypeUnsupportedProvider, ErrorTypeUnsupportedModel:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
