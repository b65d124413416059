package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ignite/landing-page/internal/assets"
	"github.com/ignite/landing-page/internal/pkg/httputil"
)

// HealthStatus represents the overall health of the service.
type HealthStatus struct {
	Status  string                    `json:"status"` // "ok" or "degraded"
	Version string                    `json:"version"`
	Uptime  string                    `json:"uptime"`
	Checks  map[string]ComponentCheck `json:"checks"`
}

// ComponentCheck represents the health of a single component.
type ComponentCheck struct {
	Status  string `json:"status"` // "up", "down"
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

// Configurer reports whether the marketing API credentials are present.
type Configurer interface {
	Configured() bool
}

// HealthChecker reports configuration readiness and asset availability.
type HealthChecker struct {
	contacts  Configurer
	listID    string
	source    assets.Source
	index     string
	startTime time.Time
}

// NewHealthChecker creates a new HealthChecker. source may be nil.
func NewHealthChecker(contacts Configurer, listID string, source assets.Source, index string) *HealthChecker {
	if index == "" {
		index = "index.html"
	}
	return &HealthChecker{
		contacts:  contacts,
		listID:    listID,
		source:    source,
		index:     index,
		startTime: time.Now(),
	}
}

const healthVersion = "1.0.0"

// HandleHealth always returns 200; the status field carries readiness.
//
//	GET /health
func (hc *HealthChecker) HandleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]ComponentCheck{
		"klaviyo": hc.checkKlaviyo(),
		"assets":  hc.checkAssets(r.Context()),
	}

	status := "ok"
	for _, c := range checks {
		if c.Status != "up" {
			status = "degraded"
		}
	}

	httputil.NoCache(w)
	_ = httputil.JSON(w, http.StatusOK, HealthStatus{
		Status:  status,
		Version: healthVersion,
		Uptime:  formatUptime(time.Since(hc.startTime)),
		Checks:  checks,
	})
}

func (hc *HealthChecker) checkKlaviyo() ComponentCheck {
	switch {
	case hc.contacts == nil || !hc.contacts.Configured():
		return ComponentCheck{Status: "down", Message: "api key not configured"}
	case hc.listID == "":
		return ComponentCheck{Status: "down", Message: "list id not configured"}
	}
	return ComponentCheck{Status: "up", Message: "configured"}
}

// checkAssets reads the index document with a 3-second timeout.
func (hc *HealthChecker) checkAssets(ctx context.Context) ComponentCheck {
	if hc.source == nil {
		return ComponentCheck{Status: "down", Message: "not configured"}
	}

	readCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	start := time.Now()
	_, err := hc.source.ReadFile(readCtx, hc.index)
	latency := time.Since(start)

	if err != nil {
		return ComponentCheck{
			Status:  "down",
			Latency: latency.String(),
			Message: fmt.Sprintf("reading %s failed", hc.index),
		}
	}
	return ComponentCheck{Status: "up", Latency: latency.String(), Message: hc.index + " readable"}
}

func formatUptime(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
