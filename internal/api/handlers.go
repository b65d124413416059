package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ignite/landing-page/internal/config"
	"github.com/ignite/landing-page/internal/leads"
	"github.com/ignite/landing-page/internal/pkg/httputil"
	"github.com/ignite/landing-page/internal/pkg/logger"
)

// maxSubscribeBody caps the size of a subscribe request body.
const maxSubscribeBody = 64 << 10

// LeadHandler processes a lead-capture submission.
type LeadHandler interface {
	Handle(ctx context.Context, sub leads.Submission) (*leads.Result, error)
}

// Handlers contains all HTTP handlers
type Handlers struct {
	leads    LeadHandler
	sections []config.Section
	log      logger.Logger
	now      func() time.Time
}

// NewHandlers creates a new Handlers instance
func NewHandlers(leadHandler LeadHandler, sections []config.Section, log logger.Logger) *Handlers {
	if log == nil {
		log = logger.Nop()
	}
	return &Handlers{
		leads:    leadHandler,
		sections: append([]config.Section(nil), sections...),
		log:      log.With("component", "api"),
		now:      time.Now,
	}
}

// Subscribe captures a lead from the landing page form.
//
//	POST /api/subscribe
func (h *Handlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	var sub leads.Submission
	if err := httputil.DecodeJSON(r, &sub, maxSubscribeBody); err != nil {
		h.respondFailure(w, http.StatusBadRequest, leads.Failure{
			Error:     codeInvalidJSON,
			Message:   "request body must be a JSON object",
			Timestamp: h.now().UTC(),
		})
		return
	}

	sub.PageURL = r.Referer()
	sub.UserAgent = r.UserAgent()
	sub.IPAddress = httputil.RealIP(r)

	result, err := h.leads.Handle(r.Context(), sub)
	if err != nil {
		h.respondLeadError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// SubscribeOptions answers the CORS preflight.
//
//	OPTIONS /api/subscribe
func (h *Handlers) SubscribeOptions(w http.ResponseWriter, r *http.Request) {
	httputil.Empty(w, http.StatusOK)
}

// SubscribeMethodNotAllowed rejects every other method on the subscribe endpoint.
func (h *Handlers) SubscribeMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "POST, OPTIONS")
	h.respondFailure(w, http.StatusMethodNotAllowed, leads.Failure{
		Error:     codeMethodNotAllowed,
		Message:   "method not allowed",
		Timestamp: h.now().UTC(),
	})
}

// Sections returns the page section manifest for the client-side loader.
//
//	GET /api/sections
func (h *Handlers) Sections(w http.ResponseWriter, r *http.Request) {
	httputil.NoCache(w)
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"sections": h.sections,
	})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	if err := httputil.JSON(w, status, data); err != nil {
		h.log.Error("failed to write response", "error", err)
	}
}
