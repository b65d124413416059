package klaviyo

import "time"

// Resource type names used in JSON:API documents
const (
	typeProfile          = "profile"
	typeList             = "list"
	typeEvent            = "event"
	typeMetric           = "metric"
	typeBulkSubscribeJob = "profile-subscription-bulk-create-job"
)

// ConsentSubscribed is the explicit marketing consent flag for bulk subscription
const ConsentSubscribed = "SUBSCRIBED"

// ProfileAttributes are the writable attributes of a profile
type ProfileAttributes struct {
	Email      string            `json:"email"`
	FirstName  string            `json:"first_name,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

// Profile is a created profile as returned by the API
type Profile struct {
	ID        string
	Email     string
	FirstName string
}

// SubscriptionProfile is one profile submitted to a bulk subscription job
type SubscriptionProfile struct {
	Email     string
	FirstName string
}

// Event is a metric event recorded against a profile
type Event struct {
	Email      string
	MetricName string
	Properties map[string]interface{}
	Time       time.Time
	UniqueID   string
}

type resourceIdentifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type profileResource struct {
	Type       string            `json:"type"`
	Attributes ProfileAttributes `json:"attributes"`
}

type profileDocument struct {
	Data profileResource `json:"data"`
}

type profileResponse struct {
	Data struct {
		Type       string `json:"type"`
		ID         string `json:"id"`
		Attributes struct {
			Email     string `json:"email"`
			FirstName string `json:"first_name"`
		} `json:"attributes"`
	} `json:"data"`
}

type relationshipDocument struct {
	Data []resourceIdentifier `json:"data"`
}

type marketingConsent struct {
	Consent string `json:"consent"`
}

type emailSubscriptions struct {
	Marketing marketingConsent `json:"marketing"`
}

type subscriptions struct {
	Email emailSubscriptions `json:"email"`
}

type subscriptionProfileAttributes struct {
	Email         string        `json:"email"`
	FirstName     string        `json:"first_name,omitempty"`
	Subscriptions subscriptions `json:"subscriptions"`
}

type subscriptionProfileResource struct {
	Type       string                        `json:"type"`
	Attributes subscriptionProfileAttributes `json:"attributes"`
}

type bulkSubscribeDocument struct {
	Data struct {
		Type       string `json:"type"`
		Attributes struct {
			Profiles struct {
				Data []subscriptionProfileResource `json:"data"`
			} `json:"profiles"`
		} `json:"attributes"`
		Relationships struct {
			List struct {
				Data resourceIdentifier `json:"data"`
			} `json:"list"`
		} `json:"relationships"`
	} `json:"data"`
}

type eventProfileRef struct {
	Data struct {
		Type       string `json:"type"`
		Attributes struct {
			Email string `json:"email"`
		} `json:"attributes"`
	} `json:"data"`
}

type eventMetricRef struct {
	Data struct {
		Type       string `json:"type"`
		Attributes struct {
			Name string `json:"name"`
		} `json:"attributes"`
	} `json:"data"`
}

type eventDocument struct {
	Data struct {
		Type       string `json:"type"`
		Attributes struct {
			Properties map[string]interface{} `json:"properties"`
			Time       string                 `json:"time,omitempty"`
			UniqueID   string                 `json:"unique_id,omitempty"`
			Metric     eventMetricRef         `json:"metric"`
			Profile    eventProfileRef        `json:"profile"`
		} `json:"attributes"`
	} `json:"data"`
}

// errorDocument is the JSON:API error envelope
type errorDocument struct {
	Errors []ErrorObject `json:"errors"`
}

// ErrorObject is a single entry of a JSON:API error response
type ErrorObject struct {
	ID     string `json:"id"`
	Code   string `json:"code"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Meta   struct {
		DuplicateProfileID string `json:"duplicate_profile_id"`
	} `json:"meta"`
}
