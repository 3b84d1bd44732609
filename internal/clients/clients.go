// Package clients holds error types shared by the outbound API clients.
package clients

import (
	"errors"
	"fmt"
)

// ErrRateLimited marks a provider rate-limit rejection. Callers check it
// with errors.Is to decide between backing off and treating the failure as
// generic.
var ErrRateLimited = errors.New("rate limit exceeded")

// APIError represents an error response from an external API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d on %s: %s", e.StatusCode, e.Endpoint, e.Message)
}
