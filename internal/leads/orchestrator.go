// Package leads turns a lead-capture form submission into a contact profile
// on the marketing platform: upsert the profile, attach it to the campaign
// list, and record a capture event.
//
// Only the profile upsert can fail a submission. A profile that could not be
// put on the list is a degraded outcome, and a lost capture event is
// ignored apart from logs and metrics.
package leads

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/landing-page/internal/config"
	"github.com/ignite/landing-page/internal/klaviyo"
	"github.com/ignite/landing-page/internal/metrics"
	"github.com/ignite/landing-page/internal/pkg/logger"
)

const defaultEventTimeout = 5 * time.Second

// ContactService is the subset of the marketing API the orchestrator drives.
type ContactService interface {
	Configured() bool
	CreateProfile(ctx context.Context, attrs klaviyo.ProfileAttributes) (*klaviyo.Profile, error)
	AddProfilesToList(ctx context.Context, listID string, profileIDs ...string) error
	BulkSubscribe(ctx context.Context, listID string, profiles ...klaviyo.SubscriptionProfile) error
	CreateEvent(ctx context.Context, evt klaviyo.Event) error
}

// Options configures an Orchestrator.
type Options struct {
	ListID       string
	Lead         config.LeadConfig
	EventTimeout time.Duration
	Logger       logger.Logger
}

// Orchestrator handles submissions. It holds no per-submission state, so a
// single instance serves concurrent requests.
type Orchestrator struct {
	contacts     ContactService
	listID       string
	lead         config.LeadConfig
	eventTimeout time.Duration
	log          logger.Logger
	attempts     []listAttempt

	now   func() time.Time
	newID func() string

	inflight sync.WaitGroup
}

// New creates an Orchestrator.
func New(contacts ContactService, opts Options) *Orchestrator {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.EventTimeout <= 0 {
		opts.EventTimeout = defaultEventTimeout
	}
	return &Orchestrator{
		contacts:     contacts,
		listID:       opts.ListID,
		lead:         opts.Lead,
		eventTimeout: opts.EventTimeout,
		log:          opts.Logger.With("component", "leads"),
		attempts:     defaultAttempts(),
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// ListID returns the list submissions are attached to.
func (o *Orchestrator) ListID() string { return o.listID }

// Handle runs one submission through validation, profile upsert, list
// attachment and event emission. The returned error is a
// *ValidationError, *ConfigurationError or *UpstreamError.
func (o *Orchestrator) Handle(ctx context.Context, sub Submission) (*Result, error) {
	sub = sub.normalized()

	if err := sub.Validate(); err != nil {
		o.log.Warn("lead submission rejected", "error", err, "email", sub.Email)
		metrics.SubmissionsTotal.WithLabelValues("validation_error").Inc()
		return nil, err
	}
	if err := o.checkConfig(); err != nil {
		o.log.Error("lead capture not configured", "error", err)
		metrics.SubmissionsTotal.WithLabelValues("configuration_error").Inc()
		return nil, err
	}

	submissionID := o.newID()
	log := o.log.With("submission_id", submissionID)
	log.Info("lead submission received", "email", sub.Email, "page_url", sub.PageURL)

	upsert := upsertProfile(ctx, o.contacts, o.profileAttributes(sub))
	metrics.ProfileUpsertsTotal.WithLabelValues(upsert.Outcome.String()).Inc()
	if !upsert.Resolved() {
		upErr := &UpstreamError{
			Code:   CodeProfileUpsertFailed,
			Status: klaviyo.StatusCode(upsert.Err),
			Body:   klaviyo.ResponseBody(upsert.Err),
			Err:    upsert.Err,
		}
		log.Error("profile upsert failed",
			"status", upErr.Status,
			"response", upErr.Body,
			"error", upsert.Err,
			"timestamp", o.now().UTC().Format(time.RFC3339),
		)
		metrics.SubmissionsTotal.WithLabelValues("upstream_error").Inc()
		return nil, upErr
	}
	log.Info("profile resolved", "profile_id", upsert.ProfileID, "outcome", upsert.Outcome)

	outcome := o.attachToList(ctx, log, sub, upsert.ProfileID)
	metrics.ListAttachmentsTotal.WithLabelValues(string(outcome.Method)).Inc()

	o.emitCaptureEvent(log, submissionID, sub, upsert, outcome)

	metrics.SubmissionsTotal.WithLabelValues("success").Inc()
	log.Info("lead captured", "profile_id", upsert.ProfileID, "subscription_method", outcome.Method)

	return &Result{
		Success:            true,
		Message:            "subscribed",
		ProfileID:          upsert.ProfileID,
		ProfileCreated:     upsert.Created(),
		ListID:             o.listID,
		SubscriptionMethod: outcome.Method,
		Timestamp:          o.now().UTC(),
	}, nil
}

// Wait blocks until every detached capture event has finished or ctx ends.
func (o *Orchestrator) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		o.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Orchestrator) checkConfig() error {
	if o.contacts == nil || !o.contacts.Configured() {
		return &ConfigurationError{Field: "api_key"}
	}
	if o.listID == "" {
		return &ConfigurationError{Field: "list_id"}
	}
	return nil
}

func (o *Orchestrator) profileAttributes(sub Submission) klaviyo.ProfileAttributes {
	return klaviyo.ProfileAttributes{
		Email:     sub.Email,
		FirstName: sub.FirstName,
		Properties: map[string]string{
			"Lead Source": o.lead.LeadSource,
			"Campaign":    o.lead.Campaign,
			"Signup Date": o.now().UTC().Format("2006-01-02"),
			"Form Type":   o.lead.FormType,
			"Page URL":    sub.PageURL,
			"User Agent":  sub.UserAgent,
			"IP Address":  sub.IPAddress,
		},
	}
}

func (o *Orchestrator) attachToList(ctx context.Context, log logger.Logger, sub Submission, profileID string) SubscriptionOutcome {
	var errs []error
	for _, attempt := range o.attempts {
		err := attempt.attach(ctx, o.contacts, o.listID, profileID, sub)
		if err == nil {
			return SubscriptionOutcome{Attached: true, Method: attempt.method}
		}
		log.Warn("list attachment attempt failed",
			"method", attempt.method,
			"status", klaviyo.StatusCode(err),
			"response", klaviyo.ResponseBody(err),
			"error", err,
		)
		errs = append(errs, err)
	}

	degraded := &DegradedOutcome{ProfileID: profileID, ListID: o.listID, Attempts: errs}
	log.Error("profile exists but is not on the list, needs manual follow-up", "error", degraded, "email", sub.Email)
	return SubscriptionOutcome{Attached: false, Method: MethodNone}
}

// emitCaptureEvent records the capture in the background. It outlives the
// request, so it runs on its own bounded context.
func (o *Orchestrator) emitCaptureEvent(log logger.Logger, submissionID string, sub Submission, upsert UpsertResult, outcome SubscriptionOutcome) {
	evt := klaviyo.Event{
		Email:      sub.Email,
		MetricName: o.lead.MetricName,
		Properties: map[string]interface{}{
			"first_name":          sub.FirstName,
			"source":              o.lead.EventSource,
			"campaign":            o.lead.EventCampaign,
			"page_url":            sub.PageURL,
			"profile_id":          upsert.ProfileID,
			"profile_created":     upsert.Created(),
			"list_attached":       outcome.Attached,
			"subscription_method": string(outcome.Method),
		},
		Time:     o.now().UTC(),
		UniqueID: submissionID,
	}

	o.inflight.Add(1)
	go func() {
		defer o.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), o.eventTimeout)
		defer cancel()

		if err := o.contacts.CreateEvent(ctx, evt); err != nil {
			metrics.CaptureEventFailures.Inc()
			log.Warn("capture event not recorded",
				"error", &NonCriticalFailure{Step: "capture_event", Err: err},
				"status", klaviyo.StatusCode(err),
			)
			return
		}
		log.Debug("capture event recorded")
	}()
}
