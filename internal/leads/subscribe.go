package leads

import (
	"context"

	"github.com/ignite/landing-page/internal/klaviyo"
)

// SubscriptionMethod names the strategy that attached the profile to the list.
type SubscriptionMethod string

const (
	MethodRelationship     SubscriptionMethod = "relationship"
	MethodBulkSubscription SubscriptionMethod = "bulk-subscription"
	MethodNone             SubscriptionMethod = "none"
)

// SubscriptionOutcome is the result of the list attachment step.
type SubscriptionOutcome struct {
	Attached bool
	Method   SubscriptionMethod
}

// listAttempt is one way of getting a profile onto a list. Attempts are
// tried in order, once each; the first success wins.
type listAttempt struct {
	method SubscriptionMethod
	attach func(ctx context.Context, contacts ContactService, listID, profileID string, sub Submission) error
}

func defaultAttempts() []listAttempt {
	return []listAttempt{
		{method: MethodRelationship, attach: attachRelationship},
		{method: MethodBulkSubscription, attach: attachBulkSubscription},
	}
}

func attachRelationship(ctx context.Context, contacts ContactService, listID, profileID string, _ Submission) error {
	return contacts.AddProfilesToList(ctx, listID, profileID)
}

func attachBulkSubscription(ctx context.Context, contacts ContactService, listID, _ string, sub Submission) error {
	return contacts.BulkSubscribe(ctx, listID, klaviyo.SubscriptionProfile{
		Email:     sub.Email,
		FirstName: sub.FirstName,
	})
}
