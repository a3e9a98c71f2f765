// Package teamgoal contains a team's active distance goal and the pure
// progress aggregation over it: percent complete, completion projection,
// and top contributors.
package teamgoal

import (
	"math"
	"sort"
	"time"

	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
)

// GoalID identifies a team goal.
type GoalID string

// IsValid checks if the goal ID is non-empty.
func (g GoalID) IsValid() bool {
	return g != ""
}

// String returns the string representation.
func (g GoalID) String() string {
	return string(g)
}

// Goal is a team's distance target with a start date. A team has at most
// one active goal at a time.
type Goal struct {
	ID             GoalID
	TeamID         shared.TeamID
	Name           string
	TargetDistance float64 // meters
	StartDate      time.Time
	EndDate        time.Time // zero = open-ended
	Active         bool
	CreatedAt      time.Time
}

// NewGoal creates a goal with validation.
func NewGoal(id GoalID, teamID shared.TeamID, name string, targetDistance float64, startDate time.Time) (*Goal, error) {
	if !id.IsValid() {
		return nil, shared.NewDomainError("teamgoal", "Create", shared.ErrInvalidID, "invalid goal ID")
	}
	if !teamID.IsValid() {
		return nil, shared.NewDomainError("teamgoal", "Create", shared.ErrInvalidID, "invalid team ID")
	}
	if targetDistance <= 0 {
		return nil, shared.ErrInvalidTargetDist
	}
	return &Goal{
		ID:             id,
		TeamID:         teamID,
		Name:           name,
		TargetDistance: targetDistance,
		StartDate:      startDate.UTC(),
		Active:         true,
	}, nil
}

// Progress is the running aggregate for one goal. The totals are the
// source of truth; every percent/projection figure below is a derived
// view and is never stored.
type Progress struct {
	GoalID          GoalID
	TeamID          shared.TeamID
	TotalDistance   float64
	TotalDuration   int64
	TotalActivities int64
	LastActivityAt  time.Time
}

// PercentComplete converts totals into a 0..100 figure, clamped at 100.
// A non-positive target yields 0 rather than a division error.
func PercentComplete(totalDistance, targetDistance float64) float64 {
	if targetDistance <= 0 {
		return 0
	}
	pct := totalDistance / targetDistance * 100
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// PercentComplete returns the derived completion percentage against the
// given goal.
func (p *Progress) PercentComplete(goal *Goal) float64 {
	return PercentComplete(p.TotalDistance, goal.TargetDistance)
}

// IsComplete reports whether the goal target has been reached.
func (p *Progress) IsComplete(goal *Goal) bool {
	return p.TotalDistance >= goal.TargetDistance
}

// AverageDailyDistance returns distance per day since the goal started,
// with the elapsed days floored at one so a goal started today still
// projects.
func (p *Progress) AverageDailyDistance(goal *Goal, now time.Time) float64 {
	days := int(now.Sub(goal.StartDate).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return p.TotalDistance / float64(days)
}

// ProjectedCompletion estimates when the goal will be reached at the
// current average pace. The second return is false when no projection is
// possible (no pace yet) and true with the current time when the goal is
// already complete.
func (p *Progress) ProjectedCompletion(goal *Goal, now time.Time) (time.Time, bool) {
	if p.IsComplete(goal) {
		return now, true
	}
	avg := p.AverageDailyDistance(goal, now)
	if avg <= 0 {
		return time.Time{}, false
	}
	remaining := goal.TargetDistance - p.TotalDistance
	daysLeft := math.Ceil(remaining / avg)
	return now.AddDate(0, 0, int(daysLeft)), true
}

// Contributor is one member's summed contribution to a goal.
type Contributor struct {
	UserID          shared.UserID
	DisplayName     string
	Distance        float64
	Activities      int64
	FirstActivityAt time.Time
}

// TopContributorCount is how many contributors the progress view surfaces.
const TopContributorCount = 5

// TopContributors returns the top contributors by distance, ties broken by
// earliest activity. The input slice is not modified.
func TopContributors(contributors []Contributor, n int) []Contributor {
	if n <= 0 {
		n = TopContributorCount
	}
	sorted := make([]Contributor, len(contributors))
	copy(sorted, contributors)

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Distance != sorted[j].Distance {
			return sorted[i].Distance > sorted[j].Distance
		}
		return sorted[i].FirstActivityAt.Before(sorted[j].FirstActivityAt)
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// Update is the per-team outcome of an activity mutation, returned to the
// caller so the transport layer can surface fresh progress without another
// read.
type Update struct {
	TeamID          shared.TeamID
	GoalID          GoalID
	TotalDistance   float64
	TargetDistance  float64
	PercentComplete float64
	GoalCompleted   bool // true only on the mutation that crossed the target
}
