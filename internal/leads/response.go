package leads

import (
	"errors"
	"time"
)

// Result is the success payload.
type Result struct {
	Success            bool               `json:"success"`
	Message            string             `json:"message"`
	ProfileID          string             `json:"profile_id"`
	ProfileCreated     bool               `json:"profile_created"`
	ListID             string             `json:"list_id"`
	SubscriptionMethod SubscriptionMethod `json:"subscription_method"`
	Timestamp          time.Time          `json:"timestamp"`
}

// Failure is the error payload. It never carries upstream bodies.
type Failure struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Details   any       `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewFailure shapes err into the failure payload.
func NewFailure(err error, at time.Time) Failure {
	f := Failure{Success: false, Timestamp: at.UTC()}

	var validationErr *ValidationError
	var configErr *ConfigurationError
	var upstreamErr *UpstreamError

	switch {
	case errors.As(err, &validationErr):
		f.Error = validationErr.Code
		switch validationErr.Code {
		case CodeMissingFields:
			f.Message = "email and first name are required"
			f.Details = map[string]any{"received": validationErr.Received}
		default:
			f.Message = "invalid email format"
		}
	case errors.As(err, &configErr):
		f.Error = CodeConfiguration
		f.Message = "server configuration missing"
	case errors.As(err, &upstreamErr):
		f.Error = upstreamErr.Code
		f.Message = "could not register the contact, please try again later"
	default:
		f.Error = CodeInternal
		f.Message = "internal server error"
	}
	return f
}
