package leads

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/landing-page/internal/config"
	"github.com/ignite/landing-page/internal/klaviyo"
)

// fakeContacts records every call and answers from canned results.
type fakeContacts struct {
	mu sync.Mutex

	configured bool

	profileID  string
	profileErr error
	listErr    error
	bulkErr    error
	eventErr   error

	profileCalls []klaviyo.ProfileAttributes
	listCalls    []string
	bulkCalls    []klaviyo.SubscriptionProfile
	events       []klaviyo.Event
}

func newFakeContacts() *fakeContacts {
	return &fakeContacts{configured: true, profileID: "p_1"}
}

func (f *fakeContacts) Configured() bool { return f.configured }

func (f *fakeContacts) CreateProfile(ctx context.Context, attrs klaviyo.ProfileAttributes) (*klaviyo.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileCalls = append(f.profileCalls, attrs)
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return &klaviyo.Profile{ID: f.profileID, Email: attrs.Email, FirstName: attrs.FirstName}, nil
}

func (f *fakeContacts) AddProfilesToList(ctx context.Context, listID string, profileIDs ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, profileIDs...)
	return f.listErr
}

func (f *fakeContacts) BulkSubscribe(ctx context.Context, listID string, profiles ...klaviyo.SubscriptionProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulkCalls = append(f.bulkCalls, profiles...)
	return f.bulkErr
}

func (f *fakeContacts) CreateEvent(ctx context.Context, evt klaviyo.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	return f.eventErr
}

func (f *fakeContacts) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.profileCalls) + len(f.listCalls) + len(f.bulkCalls) + len(f.events)
}

func conflictError(duplicateID string) error {
	obj := klaviyo.ErrorObject{Code: "duplicate_profile"}
	obj.Meta.DuplicateProfileID = duplicateID
	return &klaviyo.APIError{
		Operation:  klaviyo.OpCreateProfile,
		StatusCode: http.StatusConflict,
		Body:       `{"errors":[...]}`,
		Errors:     []klaviyo.ErrorObject{obj},
	}
}

var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestOrchestrator(contacts ContactService) *Orchestrator {
	o := New(contacts, Options{
		ListID: "L1",
		Lead: config.LeadConfig{
			LeadSource:    "Landing Page Formation",
			Campaign:      "Spring",
			FormType:      "Exit Intent Modal",
			EventSource:   "exit_intent_modal",
			EventCampaign: "spring",
			MetricName:    "Lead Captured",
		},
		EventTimeout: time.Second,
	})
	o.now = func() time.Time { return fixedNow }
	o.newID = func() string { return "sub-1" }
	return o
}

func handleAndWait(t *testing.T, o *Orchestrator, sub Submission) (*Result, error) {
	t.Helper()
	res, err := o.Handle(context.Background(), sub)
	require.NoError(t, o.Wait(context.Background()))
	return res, err
}

func TestHandle_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		sub  Submission
		want map[string]bool
	}{
		{"no email", Submission{FirstName: "Ana"}, map[string]bool{"email": false, "firstName": true}},
		{"no first name", Submission{Email: "a@b.com"}, map[string]bool{"email": true, "firstName": false}},
		{"blank both", Submission{Email: "  ", FirstName: "\t"}, map[string]bool{"email": false, "firstName": false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contacts := newFakeContacts()
			o := newTestOrchestrator(contacts)

			res, err := handleAndWait(t, o, tt.sub)
			assert.Nil(t, res)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, CodeMissingFields, vErr.Code)
			assert.Equal(t, tt.want, vErr.Received)
			assert.Zero(t, contacts.totalCalls())
		})
	}
}

func TestHandle_InvalidEmail(t *testing.T) {
	for _, email := range []string{"bad", "a@b", "a.b", "ab.com"} {
		t.Run(email, func(t *testing.T) {
			contacts := newFakeContacts()
			o := newTestOrchestrator(contacts)

			_, err := handleAndWait(t, o, Submission{Email: email, FirstName: "X"})

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, CodeInvalidEmail, vErr.Code)
			assert.Zero(t, contacts.totalCalls())
		})
	}
}

func TestHandle_NotConfigured(t *testing.T) {
	contacts := newFakeContacts()
	contacts.configured = false
	o := newTestOrchestrator(contacts)

	_, err := handleAndWait(t, o, Submission{Email: "a@b.com", FirstName: "Ana"})

	var cErr *ConfigurationError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, "api_key", cErr.Field)
	assert.Zero(t, contacts.totalCalls())
}

func TestHandle_MissingListID(t *testing.T) {
	contacts := newFakeContacts()
	o := newTestOrchestrator(contacts)
	o.listID = ""

	_, err := handleAndWait(t, o, Submission{Email: "a@b.com", FirstName: "Ana"})

	var cErr *ConfigurationError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, "list_id", cErr.Field)
	assert.Zero(t, contacts.totalCalls())
}

func TestHandle_CreatedAndAttached(t *testing.T) {
	contacts := newFakeContacts()
	o := newTestOrchestrator(contacts)

	res, err := handleAndWait(t, o, Submission{
		Email:     "a@b.com",
		FirstName: "Ana",
		PageURL:   "https://example.com/offre",
		UserAgent: "test-agent",
		IPAddress: "203.0.113.5",
	})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "p_1", res.ProfileID)
	assert.True(t, res.ProfileCreated)
	assert.Equal(t, "L1", res.ListID)
	assert.Equal(t, MethodRelationship, res.SubscriptionMethod)
	assert.Equal(t, fixedNow, res.Timestamp)

	require.Len(t, contacts.profileCalls, 1)
	props := contacts.profileCalls[0].Properties
	assert.Equal(t, "Landing Page Formation", props["Lead Source"])
	assert.Equal(t, "Spring", props["Campaign"])
	assert.Equal(t, "2025-03-01", props["Signup Date"])
	assert.Equal(t, "Exit Intent Modal", props["Form Type"])
	assert.Equal(t, "https://example.com/offre", props["Page URL"])
	assert.Equal(t, "test-agent", props["User Agent"])
	assert.Equal(t, "203.0.113.5", props["IP Address"])

	assert.Equal(t, []string{"p_1"}, contacts.listCalls)
	assert.Empty(t, contacts.bulkCalls)

	require.Len(t, contacts.events, 1)
	evt := contacts.events[0]
	assert.Equal(t, "a@b.com", evt.Email)
	assert.Equal(t, "Lead Captured", evt.MetricName)
	assert.Equal(t, "sub-1", evt.UniqueID)
	assert.Equal(t, "spring", evt.Properties["campaign"])
	assert.Equal(t, true, evt.Properties["profile_created"])
	assert.Equal(t, "relationship", evt.Properties["subscription_method"])
}

func TestHandle_MetadataDefaults(t *testing.T) {
	contacts := newFakeContacts()
	o := newTestOrchestrator(contacts)

	_, err := handleAndWait(t, o, Submission{Email: " a@b.com ", FirstName: " Ana "})
	require.NoError(t, err)

	require.Len(t, contacts.profileCalls, 1)
	attrs := contacts.profileCalls[0]
	assert.Equal(t, "a@b.com", attrs.Email)
	assert.Equal(t, "Ana", attrs.FirstName)
	assert.Equal(t, "Unknown", attrs.Properties["Page URL"])
	assert.Equal(t, "Unknown", attrs.Properties["User Agent"])
	assert.Equal(t, "Unknown", attrs.Properties["IP Address"])
}

func TestHandle_ConflictRecoversExistingProfile(t *testing.T) {
	contacts := newFakeContacts()
	contacts.profileErr = conflictError("p_9")
	o := newTestOrchestrator(contacts)

	res, err := handleAndWait(t, o, Submission{Email: "a@b.com", FirstName: "Ana"})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "p_9", res.ProfileID)
	assert.False(t, res.ProfileCreated)
	assert.Equal(t, []string{"p_9"}, contacts.listCalls)
}

func TestHandle_ConflictWithoutIDFailsSafe(t *testing.T) {
	contacts := newFakeContacts()
	contacts.profileErr = conflictError("")
	o := newTestOrchestrator(contacts)

	res, err := handleAndWait(t, o, Submission{Email: "a@b.com", FirstName: "Ana"})
	assert.Nil(t, res)

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, CodeProfileUpsertFailed, upErr.Code)
	assert.Equal(t, http.StatusConflict, upErr.Status)
	assert.Empty(t, contacts.listCalls)
	assert.Empty(t, contacts.events)
}

func TestHandle_UpsertFailureAbortsRequest(t *testing.T) {
	contacts := newFakeContacts()
	contacts.profileErr = &klaviyo.APIError{Operation: klaviyo.OpCreateProfile, StatusCode: 500, Body: "boom"}
	o := newTestOrchestrator(contacts)

	res, err := handleAndWait(t, o, Submission{Email: "a@b.com", FirstName: "Ana"})
	assert.Nil(t, res)

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, 500, upErr.Status)
	assert.Equal(t, "boom", upErr.Body)

	assert.Empty(t, contacts.listCalls)
	assert.Empty(t, contacts.bulkCalls)
	assert.Empty(t, contacts.events)
}

func TestHandle_TransportErrorAbortsRequest(t *testing.T) {
	contacts := newFakeContacts()
	contacts.profileErr = errors.New("dial tcp: connection refused")
	o := newTestOrchestrator(contacts)

	_, err := handleAndWait(t, o, Submission{Email: "a@b.com", FirstName: "Ana"})

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Zero(t, upErr.Status)
	assert.Empty(t, contacts.listCalls)
}

func TestHandle_EmptyProfileIDIsFailure(t *testing.T) {
	contacts := newFakeContacts()
	contacts.profileID = ""
	o := newTestOrchestrator(contacts)

	_, err := handleAndWait(t, o, Submission{Email: "a@b.com", FirstName: "Ana"})

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.ErrorIs(t, err, klaviyo.ErrMissingProfileID)
}

func TestHandle_FallbackToBulkSubscription(t *testing.T) {
	contacts := newFakeContacts()
	contacts.listErr = &klaviyo.APIError{Operation: klaviyo.OpAddToList, StatusCode: 400}
	o := newTestOrchestrator(contacts)

	res, err := handleAndWait(t, o, Submission{Email: "a@b.com", FirstName: "Ana"})
	require.NoError(t, err)

	assert.Equal(t, MethodBulkSubscription, res.SubscriptionMethod)
	assert.Equal(t, []klaviyo.SubscriptionProfile{{Email: "a@b.com", FirstName: "Ana"}}, contacts.bulkCalls)
	assert.Equal(t, "bulk-subscription", contacts.events[0].Properties["subscription_method"])
}

func TestHandle_BothListStrategiesFailIsDegradedSuccess(t *testing.T) {
	contacts := newFakeContacts()
	contacts.listErr = errors.New("relationship failed")
	contacts.bulkErr = errors.New("bulk failed")
	o := newTestOrchestrator(contacts)

	res, err := handleAndWait(t, o, Submission{Email: "a@b.com", FirstName: "Ana"})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "p_1", res.ProfileID)
	assert.Equal(t, MethodNone, res.SubscriptionMethod)
	assert.Len(t, contacts.listCalls, 1)
	assert.Len(t, contacts.bulkCalls, 1)
	assert.Equal(t, false, contacts.events[0].Properties["list_attached"])
}

func TestHandle_EventFailureDoesNotChangeResult(t *testing.T) {
	ok := newFakeContacts()
	failing := newFakeContacts()
	failing.eventErr = errors.New("events endpoint down")

	want, err := handleAndWait(t, newTestOrchestrator(ok), Submission{Email: "a@b.com", FirstName: "Ana"})
	require.NoError(t, err)
	got, err := handleAndWait(t, newTestOrchestrator(failing), Submission{Email: "a@b.com", FirstName: "Ana"})
	require.NoError(t, err)

	assert.Equal(t, want, got)
	assert.Len(t, failing.events, 1)
}

func TestHandle_RepeatSubmissionIsIdempotent(t *testing.T) {
	contacts := newFakeContacts()
	o := newTestOrchestrator(contacts)

	first, err := handleAndWait(t, o, Submission{Email: "a@b.com", FirstName: "Ana"})
	require.NoError(t, err)

	contacts.profileErr = conflictError(first.ProfileID)
	second, err := handleAndWait(t, o, Submission{Email: "a@b.com", FirstName: "Ana"})
	require.NoError(t, err)

	assert.Equal(t, first.ProfileID, second.ProfileID)
	assert.True(t, first.ProfileCreated)
	assert.False(t, second.ProfileCreated)
}

func TestWait_RespectsContext(t *testing.T) {
	o := newTestOrchestrator(newFakeContacts())
	o.inflight.Add(1)
	defer o.inflight.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, o.Wait(ctx), context.DeadlineExceeded)
}

func TestListIDMatchesResult(t *testing.T) {
	o := newTestOrchestrator(newFakeContacts())
	assert.Equal(t, "L1", o.ListID())

	res, err := handleAndWait(t, o, Submission{Email: "jane@example.com", FirstName: "Jane"})
	require.NoError(t, err)
	assert.Equal(t, o.ListID(), res.ListID)
}
