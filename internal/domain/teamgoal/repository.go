package teamgoal

import (
	"context"
	"time"

	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
)

// Repository defines the persistence contract for goals and their running
// progress. ApplyDelta must be an atomic increment at the store, for the
// same reason as the user stats repository: concurrent mutations for the
// same team must commute.
type Repository interface {
	// CreateGoal persists a new goal, deactivating any previous active goal
	// for the team.
	CreateGoal(ctx context.Context, g *Goal) error

	// ActiveGoal returns the team's active goal, or shared.ErrGoalNotFound.
	ActiveGoal(ctx context.Context, teamID shared.TeamID) (*Goal, error)

	// ApplyDelta atomically adjusts the progress totals for the team's
	// active goal, creating the progress row on first write. lastActivityAt
	// only moves forward. Returns the post-apply totals so the caller can
	// detect target crossings without a second read.
	ApplyDelta(ctx context.Context, goalID GoalID, distance float64, duration int64, activities int64, lastActivityAt time.Time) (*Progress, error)

	// GetProgress returns the progress row for a goal, or a zero progress
	// when no activity has been attributed yet.
	GetProgress(ctx context.Context, goalID GoalID) (*Progress, error)

	// Contributors returns per-member contribution sums for a goal's team
	// since the goal start, including each member's earliest activity time
	// for tie-breaking.
	Contributors(ctx context.Context, goalID GoalID) ([]Contributor, error)
}
