// Package provider holds helpers shared by the provider adapters.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/davidbz/markl/internal/domain"
)

// Temperature is the sampling temperature every adapter sends.
const Temperature = 0.7

// WrapError normalizes a failure that did not carry an upstream status.
// Context errors pass through so callers can classify timeouts and cancellation.
func WrapError(id domain.ProviderID, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &domain.ProviderParseError{Provider: id, Cause: err}
	}

	return fmt.Errorf("%s request failed: %w", id, err)
}

// HTTPError builds the error for a non-2xx upstream response.
func HTTPError(id domain.ProviderID, status int, body string) error {
	return &domain.ProviderHTTPError{Provider: id, Status: status, Body: body}
}
