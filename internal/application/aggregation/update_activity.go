package aggregation

import (
	"context"

	"github.com/stridehub/stride-challenge-hub/internal/domain/activity"
	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
)

// UpdateActivityCommand edits an activity's mutable fields. Distance,
// duration and occurred-at are frozen after create; a command that tries
// to change them is rejected so the running aggregates stay reversible.
type UpdateActivityCommand struct {
	// UserID is the caller; must own the activity.
	UserID string

	// ActivityID identifies the activity to edit.
	ActivityID string

	// Note replaces the note when non-nil.
	Note *string

	// IsPrivate replaces the privacy flag when non-nil.
	IsPrivate *bool

	// Distance and Duration are accepted in the payload only to produce a
	// precise rejection. Non-nil means the caller tried to edit a frozen
	// field.
	Distance *float64
	Duration *int64

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate checks the command.
func (c UpdateActivityCommand) Validate() error {
	if !shared.UserID(c.UserID).IsValid() {
		return shared.NewDomainError("aggregation", "UpdateActivity", shared.ErrInvalidID, "user_id is required")
	}
	if !shared.ActivityID(c.ActivityID).IsValid() {
		return shared.NewDomainError("aggregation", "UpdateActivity", shared.ErrInvalidID, "activity_id is required")
	}
	if c.Distance != nil || c.Duration != nil {
		return shared.ErrImmutableAggregates
	}
	return nil
}

// UpdateActivity applies a note/privacy patch to an owned activity.
// Privacy changes make team views stale, so the touched teams' caches are
// invalidated; user totals are untouched and need no recompute.
func (s *Service) UpdateActivity(ctx context.Context, cmd UpdateActivityCommand) (*activity.Activity, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	userID := shared.UserID(cmd.UserID)
	act, err := s.activities.GetByID(ctx, shared.ActivityID(cmd.ActivityID))
	if err != nil {
		return nil, err
	}
	if !act.IsOwnedBy(userID) {
		return nil, shared.ErrActivityNotOwned
	}

	patch := activity.Patch{Note: cmd.Note, IsPrivate: cmd.IsPrivate}
	if patch.IsEmpty() {
		return act, nil
	}

	privacyChanged := cmd.IsPrivate != nil && *cmd.IsPrivate != act.IsPrivate

	act.Apply(patch, s.clock.Now())
	if err := s.activities.Update(ctx, act); err != nil {
		return nil, shared.WrapError("aggregation", "UpdateActivity", shared.ErrPersistence, "update failed", err)
	}

	if privacyChanged {
		s.invalidateAfterMutation(ctx, userID, act.TeamIDs)
	}

	s.publish(s.withCorrelation(shared.NewActivityUpdatedEvent(
		act.ID.String(), userID.String(), privacyChanged), cmd.CorrelationID))

	return act, nil
}
