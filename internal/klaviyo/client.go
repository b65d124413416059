package klaviyo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ignite/landing-page/internal/config"
	"github.com/ignite/landing-page/internal/pkg/httpclient"
)

// Operation names, used for metrics labels and error messages
const (
	OpCreateProfile = "create_profile"
	OpAddToList     = "add_profiles_to_list"
	OpBulkSubscribe = "bulk_subscribe"
	OpCreateEvent   = "create_event"
)

// Client is a Klaviyo API client
type Client struct {
	baseURL    string
	apiKey     string
	revision   string
	httpClient httpclient.HTTPDoer
}

// NewClient creates a new Klaviyo API client
func NewClient(cfg config.KlaviyoConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		revision:   cfg.Revision,
		httpClient: httpclient.New(&http.Client{}, cfg.Timeout()),
	}
}

// Configured reports whether a private API key is set
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// doRequest POSTs a JSON document and returns the response body of a 2xx
// reply. Non-2xx replies come back as *APIError.
func (c *Client) doRequest(ctx context.Context, op, method, path string, body interface{}) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(httpclient.WithOperation(ctx, op), method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Klaviyo-API-Key "+c.apiKey)
	req.Header.Set("revision", c.revision)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing %s request: %w", op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(op, resp.StatusCode, respBody)
	}

	return respBody, nil
}

// CreateProfile creates a profile. An existing profile with the same email
// yields a 409 *APIError; use DuplicateProfileID to recover its id.
func (c *Client) CreateProfile(ctx context.Context, attrs ProfileAttributes) (*Profile, error) {
	doc := profileDocument{Data: profileResource{Type: typeProfile, Attributes: attrs}}

	body, err := c.doRequest(ctx, OpCreateProfile, http.MethodPost, "/profiles/", doc)
	if err != nil {
		return nil, err
	}

	var resp profileResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing profile response: %w", err)
	}
	if resp.Data.ID == "" {
		return nil, ErrMissingProfileID
	}

	return &Profile{
		ID:        resp.Data.ID,
		Email:     resp.Data.Attributes.Email,
		FirstName: resp.Data.Attributes.FirstName,
	}, nil
}

// AddProfilesToList attaches existing profiles to a list
func (c *Client) AddProfilesToList(ctx context.Context, listID string, profileIDs ...string) error {
	doc := relationshipDocument{Data: make([]resourceIdentifier, 0, len(profileIDs))}
	for _, id := range profileIDs {
		doc.Data = append(doc.Data, resourceIdentifier{Type: typeProfile, ID: id})
	}

	path := fmt.Sprintf("/lists/%s/relationships/profiles/", listID)
	_, err := c.doRequest(ctx, OpAddToList, http.MethodPost, path, doc)
	return err
}

// BulkSubscribe submits a subscription job that upserts the profiles with
// explicit marketing consent and subscribes them to the list
func (c *Client) BulkSubscribe(ctx context.Context, listID string, profiles ...SubscriptionProfile) error {
	var doc bulkSubscribeDocument
	doc.Data.Type = typeBulkSubscribeJob
	for _, p := range profiles {
		res := subscriptionProfileResource{Type: typeProfile}
		res.Attributes.Email = p.Email
		res.Attributes.FirstName = p.FirstName
		res.Attributes.Subscriptions.Email.Marketing.Consent = ConsentSubscribed
		doc.Data.Attributes.Profiles.Data = append(doc.Data.Attributes.Profiles.Data, res)
	}
	doc.Data.Relationships.List.Data = resourceIdentifier{Type: typeList, ID: listID}

	_, err := c.doRequest(ctx, OpBulkSubscribe, http.MethodPost, "/profile-subscription-bulk-create-jobs/", doc)
	return err
}

// CreateEvent records a metric event for the profile with the given email
func (c *Client) CreateEvent(ctx context.Context, evt Event) error {
	var doc eventDocument
	doc.Data.Type = typeEvent
	doc.Data.Attributes.Properties = evt.Properties
	if doc.Data.Attributes.Properties == nil {
		doc.Data.Attributes.Properties = map[string]interface{}{}
	}
	if !evt.Time.IsZero() {
		doc.Data.Attributes.Time = evt.Time.UTC().Format(time.RFC3339)
	}
	doc.Data.Attributes.UniqueID = evt.UniqueID
	doc.Data.Attributes.Metric.Data.Type = typeMetric
	doc.Data.Attributes.Metric.Data.Attributes.Name = evt.MetricName
	doc.Data.Attributes.Profile.Data.Type = typeProfile
	doc.Data.Attributes.Profile.Data.Attributes.Email = evt.Email

	_, err := c.doRequest(ctx, OpCreateEvent, http.MethodPost, "/events/", doc)
	return err
}
