package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is the uniform failure returned by every call.
// Message is the backend's human-readable text when it sent one.
type APIError struct {
	StatusCode int    // 0 when the request never got a response
	Message    string // backend "error" (or "message") field, may be empty
	Err        error  // transport or decode failure, if any
}

func (e *APIError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	case e.Err != nil && e.StatusCode == 0:
		return fmt.Sprintf("api request failed: %v", e.Err)
	case e.Err != nil:
		return fmt.Sprintf("api error %d: %v", e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("api error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Unauthorized reports a rejected credential
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// newAPIError builds an APIError from a non-2xx body
func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Message = payload.Error
		if apiErr.Message == "" {
			apiErr.Message = payload.Message
		}
	}
	return apiErr
}

// ErrorMessage extracts the text to show a user: the backend's message when
// present, otherwise fallback.
func ErrorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	return fallback
}

// IsUnauthorized reports whether err is a 401/403 from the backend
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Unauthorized()
}
