package leads

import (
	"context"

	"github.com/ignite/landing-page/internal/klaviyo"
)

// UpsertOutcome tags the result of the profile upsert step.
type UpsertOutcome int

const (
	UpsertFailed UpsertOutcome = iota
	UpsertCreated
	UpsertAlreadyExists
)

func (o UpsertOutcome) String() string {
	switch o {
	case UpsertCreated:
		return "created"
	case UpsertAlreadyExists:
		return "already_exists"
	default:
		return "failed"
	}
}

// UpsertResult is Created(id), AlreadyExists(id) or Failed(err).
type UpsertResult struct {
	Outcome   UpsertOutcome
	ProfileID string
	Err       error
}

// Created reports whether the profile was new.
func (r UpsertResult) Created() bool { return r.Outcome == UpsertCreated }

// Resolved reports whether a profile id is available.
func (r UpsertResult) Resolved() bool { return r.Outcome != UpsertFailed && r.ProfileID != "" }

func upsertProfile(ctx context.Context, contacts ContactService, attrs klaviyo.ProfileAttributes) UpsertResult {
	profile, err := contacts.CreateProfile(ctx, attrs)
	if err == nil {
		if profile == nil || profile.ID == "" {
			return UpsertResult{Outcome: UpsertFailed, Err: klaviyo.ErrMissingProfileID}
		}
		return UpsertResult{Outcome: UpsertCreated, ProfileID: profile.ID}
	}
	if id, ok := klaviyo.DuplicateProfileID(err); ok {
		return UpsertResult{Outcome: UpsertAlreadyExists, ProfileID: id}
	}
	return UpsertResult{Outcome: UpsertFailed, Err: err}
}
