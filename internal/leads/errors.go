package leads

import (
	"errors"
	"fmt"
)

// Error codes returned to the caller in the failure payload
const (
	CodeMissingFields       = "missing_fields"
	CodeInvalidEmail        = "invalid_email"
	CodeConfiguration       = "configuration_error"
	CodeProfileUpsertFailed = "profile_upsert_failed"
	CodeInternal            = "internal_error"
)

// ValidationError means the submission itself is malformed.
type ValidationError struct {
	Code     string
	Received map[string]bool
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Code
}

// ConfigurationError means a required setting is absent. Nothing was sent.
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	return "missing configuration: " + e.Field
}

// UpstreamError is the one blocking upstream failure: no profile id could
// be obtained.
type UpstreamError struct {
	Code   string
	Status int
	Body   string
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s (status %d): %v", e.Code, e.Status, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// DegradedOutcome records a profile that exists but could not be attached
// to the list by any strategy. Logged, never returned to the caller.
type DegradedOutcome struct {
	ProfileID string
	ListID    string
	Attempts  []error
}

func (e *DegradedOutcome) Error() string {
	return fmt.Sprintf("profile %s not attached to list %s: %v", e.ProfileID, e.ListID, errors.Join(e.Attempts...))
}

func (e *DegradedOutcome) Unwrap() []error { return e.Attempts }

// NonCriticalFailure records a failed informational step. Logged only.
type NonCriticalFailure struct {
	Step string
	Err  error
}

func (e *NonCriticalFailure) Error() string {
	return fmt.Sprintf("%s failed (non-critical): %v", e.Step, e.Err)
}

func (e *NonCriticalFailure) Unwrap() error { return e.Err }
