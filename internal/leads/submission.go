package leads

import "strings"

const unknown = "Unknown"

// Submission is one lead-capture form post plus the request metadata
// stamped on the profile.
type Submission struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`

	PageURL   string `json:"-"`
	UserAgent string `json:"-"`
	IPAddress string `json:"-"`
}

// normalized trims the form fields and fills absent metadata.
func (s Submission) normalized() Submission {
	s.Email = strings.TrimSpace(s.Email)
	s.FirstName = strings.TrimSpace(s.FirstName)
	if s.PageURL == "" {
		s.PageURL = unknown
	}
	if s.UserAgent == "" {
		s.UserAgent = unknown
	}
	if s.IPAddress == "" {
		s.IPAddress = unknown
	}
	return s
}

// Validate checks the form fields. An email only needs an "@" and a ".".
func (s Submission) Validate() error {
	if s.Email == "" || s.FirstName == "" {
		return &ValidationError{
			Code: CodeMissingFields,
			Received: map[string]bool{
				"email":     s.Email != "",
				"firstName": s.FirstName != "",
			},
		}
	}
	if !strings.Contains(s.Email, "@") || !strings.Contains(s.Email, ".") {
		return &ValidationError{Code: CodeInvalidEmail}
	}
	return nil
}
