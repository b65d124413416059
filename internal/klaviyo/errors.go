package klaviyo

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingAPIKey is returned by every call when no private key is configured.
var ErrMissingAPIKey = errors.New("klaviyo: private API key not configured")

// ErrMissingProfileID is returned when a successful profile response has no id.
var ErrMissingProfileID = errors.New("klaviyo: profile response carried no id")

// APIError is any non-2xx response from the API.
type APIError struct {
	Operation  string
	StatusCode int
	Body       string
	Errors     []ErrorObject
}

func (e *APIError) Error() string {
	return fmt.Sprintf("klaviyo %s: API error (status %d): %s", e.Operation, e.StatusCode, e.Body)
}

func newAPIError(op string, status int, body []byte) *APIError {
	apiErr := &APIError{Operation: op, StatusCode: status, Body: string(body)}
	var doc errorDocument
	if err := json.Unmarshal(body, &doc); err == nil {
		apiErr.Errors = doc.Errors
	}
	return apiErr
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// ResponseBody returns the raw response body carried by err, if any.
func ResponseBody(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Body
	}
	return ""
}

// DuplicateProfileID extracts the pre-existing profile id from a 409
// conflict returned by profile creation. ok is false for any other error,
// including a 409 whose body does not carry the id.
func DuplicateProfileID(err error) (id string, ok bool) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusConflict {
		return "", false
	}
	for _, e := range apiErr.Errors {
		if e.Meta.DuplicateProfileID != "" {
			return e.Meta.DuplicateProfileID, true
		}
	}
	return "", false
}
