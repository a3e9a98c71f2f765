package aggregation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/stridehub/stride-challenge-hub/internal/domain/achievement"
	"github.com/stridehub/stride-challenge-hub/internal/domain/activity"
	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
	"github.com/stridehub/stride-challenge-hub/internal/domain/stats"
	"github.com/stridehub/stride-challenge-hub/internal/domain/teamgoal"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE ACTIVITY
// The central write path: one transaction persists the activity and applies
// the same delta to the user aggregate and every attributed team goal.
// ══════════════════════════════════════════════════════════════════════════════

// CreateActivityCommand carries the data for logging a new activity.
type CreateActivityCommand struct {
	// UserID is the owner. Must be an active member of every listed team.
	UserID string

	// TeamIDs attributes the activity; the first entry is the primary team.
	TeamIDs []string

	// Distance in meters, must be positive.
	Distance float64

	// Duration in seconds, must be positive.
	Duration int64

	// OccurredAt is when the activity happened (defaults to now if zero).
	OccurredAt time.Time

	// Note is free-form text, optional.
	Note string

	// IsPrivate hides the activity from team views and leaderboards.
	IsPrivate bool

	// Source is where the record came from (defaults to manual).
	Source string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate checks the command before any store access.
func (c CreateActivityCommand) Validate() error {
	if !shared.UserID(c.UserID).IsValid() {
		return shared.NewDomainError("aggregation", "CreateActivity", shared.ErrInvalidID, "user_id is required")
	}
	if len(c.TeamIDs) == 0 {
		return shared.ErrNoTeams
	}
	if c.Distance <= 0 {
		return shared.ErrInvalidDistance
	}
	if c.Duration <= 0 {
		return shared.ErrInvalidDuration
	}
	if c.Source != "" && !activity.Source(c.Source).IsValid() {
		return shared.NewDomainError("aggregation", "CreateActivity", shared.ErrInvalidInput, "unknown activity source")
	}
	return nil
}

// CreateActivityResult reports everything the mutation changed.
type CreateActivityResult struct {
	Activity *activity.Activity

	// Streak is the freshly recomputed pair.
	Streak stats.StreakResult

	// StreakExtended is true when the current streak grew.
	StreakExtended bool

	// TeamUpdates holds per-team goal progress after the delta, one entry
	// per attributed team that has an active goal.
	TeamUpdates []teamgoal.Update

	// NewAchievements lists achievements first earned by this mutation.
	NewAchievements []achievement.UserAchievement
}

// CreateActivity logs an activity and maintains every derived aggregate.
//
// Transactional: activity row, user totals, the recomputed streak and
// team goal totals commit together. Post-commit: cache invalidation,
// achievement detection and event publication, all best effort.
func (s *Service) CreateActivity(ctx context.Context, cmd CreateActivityCommand) (*CreateActivityResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	userID := shared.UserID(cmd.UserID)
	teamIDs := make([]shared.TeamID, len(cmd.TeamIDs))
	for i, id := range cmd.TeamIDs {
		teamIDs[i] = shared.TeamID(id)
	}

	if err := s.requireMembership(ctx, userID, teamIDs); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	occurredAt := cmd.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = now
	}

	act, err := activity.NewActivity(
		shared.ActivityID(uuid.NewString()),
		userID,
		teamIDs,
		shared.Meters(cmd.Distance),
		shared.Seconds(cmd.Duration),
		occurredAt,
		now,
	)
	if err != nil {
		return nil, err
	}
	act.Note = cmd.Note
	act.IsPrivate = cmd.IsPrivate
	if cmd.Source != "" {
		act.Source = activity.Source(cmd.Source)
	}

	before, err := s.stats.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &CreateActivityResult{Activity: act}

	err = s.uow.Mutate(ctx, func(ctx context.Context, repos MutationRepos) error {
		if err := repos.Activities.Create(ctx, act); err != nil {
			return err
		}

		distance, duration, count := act.Deltas(+1)
		delta := stats.Delta{Distance: distance, Duration: duration, Activities: count}
		if err := repos.Stats.ApplyDelta(ctx, userID, delta, act.OccurredAt); err != nil {
			return err
		}

		// The streak rides in the same transaction as the totals, so a
		// reader never sees the new activity with yesterday's streak.
		days, err := repos.Activities.ActivityDays(ctx, userID, s.streaks.Location())
		if err != nil {
			return err
		}
		streak := s.streaks.Compute(days, now)
		if err := repos.Stats.SetStreaks(ctx, userID, streak); err != nil {
			return err
		}
		result.Streak = streak
		result.StreakExtended = streak.CurrentStreak > before.CurrentStreak

		updates, err := s.applyGoalDeltas(ctx, repos.Goals, act.TeamIDs, distance, duration, count, act.OccurredAt)
		if err != nil {
			return err
		}
		result.TeamUpdates = updates
		return nil
	})
	if err != nil {
		return nil, shared.WrapError("aggregation", "CreateActivity", shared.ErrPersistence, "mutation failed", err)
	}

	// Committed. Everything below is best effort.
	if result.StreakExtended {
		s.publish(s.withCorrelation(shared.NewStreakExtendedEvent(
			userID.String(), result.Streak.CurrentStreak, result.Streak.LongestStreak), cmd.CorrelationID))
	}

	s.invalidateAfterMutation(ctx, userID, act.TeamIDs)

	result.NewAchievements = s.detectAchievements(ctx, userID, act.PrimaryTeam(), act.ID, act.OccurredAt)

	s.publish(s.withCorrelation(shared.NewActivityCreatedEvent(
		act.ID.String(), userID.String(), teamIDStrings(act.TeamIDs),
		act.Distance.Float64(), act.Duration.Int64()), cmd.CorrelationID))

	for _, u := range result.TeamUpdates {
		if u.GoalCompleted {
			s.publish(s.withCorrelation(shared.NewGoalCompletedEvent(
				u.GoalID.String(), u.TeamID.String(), u.TotalDistance), cmd.CorrelationID))
		}
	}

	return result, nil
}

// applyGoalDeltas applies a signed delta to the active goal of each team.
// Teams without an active goal are skipped; any other error aborts the
// enclosing transaction.
func (s *Service) applyGoalDeltas(
	ctx context.Context,
	goals teamgoal.Repository,
	teamIDs []shared.TeamID,
	distance float64,
	duration, count int64,
	occurredAt time.Time,
) ([]teamgoal.Update, error) {
	updates := make([]teamgoal.Update, 0, len(teamIDs))
	for _, teamID := range teamIDs {
		goal, err := goals.ActiveGoal(ctx, teamID)
		if err != nil {
			if shared.IsNotFound(err) {
				continue
			}
			return nil, err
		}

		progress, err := goals.ApplyDelta(ctx, goal.ID, distance, duration, count, occurredAt)
		if err != nil {
			return nil, err
		}

		// Completed exactly now: the pre-delta total was below the target.
		crossed := distance > 0 &&
			progress.TotalDistance >= goal.TargetDistance &&
			progress.TotalDistance-distance < goal.TargetDistance

		updates = append(updates, teamgoal.Update{
			TeamID:          teamID,
			GoalID:          goal.ID,
			TotalDistance:   progress.TotalDistance,
			TargetDistance:  goal.TargetDistance,
			PercentComplete: progress.PercentComplete(goal),
			GoalCompleted:   crossed,
		})
	}
	return updates, nil
}

// withCorrelation stamps a correlation ID onto an event when one is set.
func (s *Service) withCorrelation(event shared.Event, correlationID string) shared.Event {
	if correlationID == "" {
		return event
	}
	switch e := event.(type) {
	case shared.ActivityCreatedEvent:
		e.BaseEvent = e.BaseEvent.WithCorrelationID(correlationID)
		return e
	case shared.ActivityUpdatedEvent:
		e.BaseEvent = e.BaseEvent.WithCorrelationID(correlationID)
		return e
	case shared.ActivityDeletedEvent:
		e.BaseEvent = e.BaseEvent.WithCorrelationID(correlationID)
		return e
	case shared.StreakExtendedEvent:
		e.BaseEvent = e.BaseEvent.WithCorrelationID(correlationID)
		return e
	case shared.GoalCompletedEvent:
		e.BaseEvent = e.BaseEvent.WithCorrelationID(correlationID)
		return e
	case shared.AchievementEarnedEvent:
		e.BaseEvent = e.BaseEvent.WithCorrelationID(correlationID)
		return e
	default:
		return event
	}
}

func teamIDStrings(ids []shared.TeamID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
