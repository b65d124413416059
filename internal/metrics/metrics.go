package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Lead capture outcomes, labelled success/validation_error/configuration_error/upstream_error
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "landing_submissions_total",
			Help: "Total number of lead-capture submissions by outcome",
		},
		[]string{"outcome"},
	)

	ProfileUpsertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "landing_profile_upserts_total",
			Help: "Profile upsert results (created, already_exists, failed)",
		},
		[]string{"result"},
	)

	ListAttachmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "landing_list_attachments_total",
			Help: "List attachment outcomes by winning method",
		},
		[]string{"method"},
	)

	CaptureEventFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "landing_capture_event_failures_total",
			Help: "Total number of capture events that could not be delivered",
		},
	)

	// Upstream API latency
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "landing_upstream_request_duration_seconds",
			Help:    "Duration of outbound marketing API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)

	SectionSkipsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "landing_section_skips_total",
			Help: "Page sections skipped during server-side composition",
		},
	)
)
