package aggregation

import (
	"time"

	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
	"github.com/stridehub/stride-challenge-hub/internal/domain/teamgoal"
)

// UserStatsView is the assembled stats block a user sees: lifetime totals,
// streaks and the rolling week/month sums. Cached as one unit so a hit
// serves the whole view.
type UserStatsView struct {
	UserID          shared.UserID `json:"user_id"`
	TotalDistance   float64       `json:"total_distance_m"`
	TotalDuration   int64         `json:"total_duration_s"`
	TotalActivities int64         `json:"total_activities"`
	CurrentStreak   int           `json:"current_streak"`
	LongestStreak   int           `json:"longest_streak"`
	LastActivityAt  time.Time     `json:"last_activity_at"`

	WeekDistance    float64 `json:"week_distance_m"`
	WeekDuration    int64   `json:"week_duration_s"`
	WeekActivities  int64   `json:"week_activities"`
	MonthDistance   float64 `json:"month_distance_m"`
	MonthDuration   int64   `json:"month_duration_s"`
	MonthActivities int64   `json:"month_activities"`

	GeneratedAt time.Time `json:"generated_at"`
}

// ContributorView is one line of the team progress contributor list.
type ContributorView struct {
	UserID      shared.UserID `json:"user_id"`
	DisplayName string        `json:"display_name"`
	Distance    float64       `json:"distance_m"`
	Activities  int64         `json:"activities"`
}

// TeamProgressView is the assembled progress block for a team's active
// goal. Derived figures are computed at build time and cached with the
// view; the short TTL bounds their staleness.
type TeamProgressView struct {
	TeamID              shared.TeamID   `json:"team_id"`
	GoalID              teamgoal.GoalID `json:"goal_id"`
	GoalName            string          `json:"goal_name"`
	TargetDistance      float64         `json:"target_distance_m"`
	TotalDistance       float64         `json:"total_distance_m"`
	TotalDuration       int64           `json:"total_duration_s"`
	TotalActivities     int64           `json:"total_activities"`
	PercentComplete     float64         `json:"percent_complete"`
	IsComplete          bool            `json:"is_complete"`
	AverageDailyMeters  float64         `json:"average_daily_m"`
	ProjectedCompletion *time.Time      `json:"projected_completion,omitempty"`

	TopContributors []ContributorView `json:"top_contributors"`

	GeneratedAt time.Time `json:"generated_at"`
}
