package aggregation

import (
	"context"

	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
	"github.com/stridehub/stride-challenge-hub/internal/domain/stats"
	"github.com/stridehub/stride-challenge-hub/internal/domain/teamgoal"
)

// DeleteActivityCommand removes an owned activity and reverses its
// aggregate contributions.
type DeleteActivityCommand struct {
	UserID     string
	ActivityID string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate checks the command.
func (c DeleteActivityCommand) Validate() error {
	if !shared.UserID(c.UserID).IsValid() {
		return shared.NewDomainError("aggregation", "DeleteActivity", shared.ErrInvalidID, "user_id is required")
	}
	if !shared.ActivityID(c.ActivityID).IsValid() {
		return shared.NewDomainError("aggregation", "DeleteActivity", shared.ErrInvalidID, "activity_id is required")
	}
	return nil
}

// DeleteActivityResult reports the reversal outcome.
type DeleteActivityResult struct {
	ActivityID  shared.ActivityID
	TeamUpdates []teamgoal.Update
}

// DeleteActivity removes an activity and subtracts the exact deltas it
// added at create time, in one transaction. The reversal is computed from
// the stored record, never by recounting, so concurrent mutations cannot
// skew the totals.
//
// Streaks are left as they are: a deletion does not rewrite streak
// history. The next create re-derives them from the surviving day set.
func (s *Service) DeleteActivity(ctx context.Context, cmd DeleteActivityCommand) (*DeleteActivityResult, error) {
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

	result := &DeleteActivityResult{ActivityID: act.ID}

	err = s.uow.Mutate(ctx, func(ctx context.Context, repos MutationRepos) error {
		if err := repos.Activities.Delete(ctx, act.ID); err != nil {
			return err
		}

		distance, duration, count := act.Deltas(-1)
		delta := stats.Delta{Distance: distance, Duration: duration, Activities: count}
		if err := repos.Stats.ApplyDelta(ctx, userID, delta, act.OccurredAt); err != nil {
			return err
		}

		updates, err := s.applyGoalDeltas(ctx, repos.Goals, act.TeamIDs, distance, duration, count, act.OccurredAt)
		if err != nil {
			return err
		}
		result.TeamUpdates = updates
		return nil
	})
	if err != nil {
		return nil, shared.WrapError("aggregation", "DeleteActivity", shared.ErrPersistence, "mutation failed", err)
	}

	s.invalidateAfterMutation(ctx, userID, act.TeamIDs)

	s.publish(s.withCorrelation(shared.NewActivityDeletedEvent(
		act.ID.String(), userID.String(), teamIDStrings(act.TeamIDs),
		act.Distance.Float64()), cmd.CorrelationID))

	return result, nil
}
