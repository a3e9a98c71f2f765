// Package stats contains the running per-user aggregate and the streak
// calculator. Totals are maintained by atomic increments in the store; this
// package defines the shapes and the pure derivations over them.
package stats

import (
	"time"

	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
)

// UserStats is the running aggregate for a user. TotalDistance and
// TotalDuration track the sum of the user's non-deleted activities; the
// stored row never drifts from that sum because every mutation applies the
// same delta to both in one transaction.
type UserStats struct {
	UserID          shared.UserID
	TotalDistance   float64
	TotalDuration   int64
	TotalActivities int64
	CurrentStreak   int
	LongestStreak   int
	LastActivityAt  time.Time
	UpdatedAt       time.Time
}

// NewUserStats returns the zero aggregate for a user.
func NewUserStats(userID shared.UserID) *UserStats {
	return &UserStats{UserID: userID}
}

// IsConsistent checks the package invariants. Used by tests and by the
// store round-trip paths as a sanity guard.
func (s *UserStats) IsConsistent() bool {
	return s.TotalActivities >= 0 &&
		s.TotalDistance >= 0 &&
		s.TotalDuration >= 0 &&
		s.CurrentStreak <= s.LongestStreak
}

// Delta is one atomic adjustment to a user's totals. Deltas are commutative:
// two concurrent creates for the same user may commit in either order and
// converge on the same totals.
type Delta struct {
	Distance   float64
	Duration   int64
	Activities int64
}

// Negate returns the exact inverse delta, applied on delete.
func (d Delta) Negate() Delta {
	return Delta{
		Distance:   -d.Distance,
		Duration:   -d.Duration,
		Activities: -d.Activities,
	}
}

// IsZero reports whether the delta changes nothing.
func (d Delta) IsZero() bool {
	return d.Distance == 0 && d.Duration == 0 && d.Activities == 0
}

// PeriodStats is a windowed sum for display (weekly/monthly blocks of the
// user stats view). Derived, never stored.
type PeriodStats struct {
	Distance   float64
	Duration   int64
	Activities int64
}
