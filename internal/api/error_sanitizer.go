package api

import (
	"errors"
	"net/http"

	"github.com/ignite/landing-page/internal/leads"
)

const (
	codeInvalidJSON      = "invalid_json"
	codeMethodNotAllowed = "method_not_allowed"
)

// statusFor maps an orchestrator error onto the HTTP status returned to
// the browser. Only input problems are 4xx.
func statusFor(err error) int {
	var validationErr *leads.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondLeadError writes the sanitized failure payload for err. Upstream
// bodies and internal error text stay in the server log.
func (h *Handlers) respondLeadError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		var upstreamErr *leads.UpstreamError
		var configErr *leads.ConfigurationError
		if !errors.As(err, &upstreamErr) && !errors.As(err, &configErr) {
			h.log.Error("unexpected lead capture error", "error", err)
		}
	}
	h.respondFailure(w, status, leads.NewFailure(err, h.now()))
}

func (h *Handlers) respondFailure(w http.ResponseWriter, status int, f leads.Failure) {
	f.Success = false
	h.writeJSON(w, status, f)
}
