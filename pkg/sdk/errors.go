package lawdex

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when the service rejects the API key.
// Use errors.Is() to check.
var ErrUnauthorized = errors.New("lawdex: unauthorized")

// APIError is a structured error response from the service.
type APIError struct {
	StatusCode int    // HTTP status
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("lawdex: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Is maps 401 responses onto ErrUnauthorized.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == 401
}
