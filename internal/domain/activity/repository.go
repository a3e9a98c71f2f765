// Package activity contains the domain entity and persistence contract for
// logged distance activities.
package activity

import (
	"context"
	"time"

	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
)

// Repository defines the persistence contract for activities.
// Implemented by the infrastructure layer; the domain has no knowledge of
// the actual storage mechanism.
type Repository interface {
	// Create persists a new activity together with its team attributions.
	Create(ctx context.Context, a *Activity) error

	// GetByID returns an activity by ID, including its team attributions.
	GetByID(ctx context.Context, id shared.ActivityID) (*Activity, error)

	// Update persists the mutable fields (note, privacy flag).
	Update(ctx context.Context, a *Activity) error

	// Delete removes an activity and its team attributions.
	Delete(ctx context.Context, id shared.ActivityID) error

	// List returns a page of activities matching the filter, newest first.
	List(ctx context.Context, filter ListFilter, page shared.Pagination) ([]*Activity, error)

	// ActivityDays returns the distinct calendar days (in the given
	// location) on which the user logged at least one activity. Input for
	// streak recomputation.
	ActivityDays(ctx context.Context, userID shared.UserID, loc *time.Location) ([]time.Time, error)

	// SumForUser returns total distance, duration and count of the user's
	// activities since the given time (zero time = all). Includes private
	// activities: a user's own stats always count everything they logged.
	SumForUser(ctx context.Context, userID shared.UserID, since time.Time) (distance float64, duration int64, count int64, err error)
}

// MembershipReader reports team membership. Backed by the team_memberships
// table; the aggregation service uses it for NotMember checks and for
// resolving leaderboard populations.
type MembershipReader interface {
	// IsActiveMember checks whether the user is an active member of the team.
	IsActiveMember(ctx context.Context, userID shared.UserID, teamID shared.TeamID) (bool, error)

	// ActiveTeamCount returns how many teams the user is an active member of.
	ActiveTeamCount(ctx context.Context, userID shared.UserID) (int, error)

	// TeamMembers returns the user IDs and display names of a team's
	// active members.
	TeamMembers(ctx context.Context, teamID shared.TeamID) ([]Member, error)
}

// Member is a team roster row.
type Member struct {
	UserID      shared.UserID
	DisplayName string
	JoinedAt    time.Time
}
