package stats

import (
	"context"
	"time"

	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
)

// Repository defines the persistence contract for user aggregates.
//
// ApplyDelta is the load-bearing method: it must be an atomic, commutative
// increment at the store ("add D to field X for key K"), never a
// read-modify-write, because two activities for the same user can be
// created by concurrent request handlers.
type Repository interface {
	// ApplyDelta atomically adjusts the user's running totals, creating the
	// row if it does not exist yet. lastActivityAt only moves forward.
	ApplyDelta(ctx context.Context, userID shared.UserID, delta Delta, lastActivityAt time.Time) error

	// GetByUser returns the user's aggregate, or a zero aggregate when the
	// user has no row yet.
	GetByUser(ctx context.Context, userID shared.UserID) (*UserStats, error)

	// SetStreaks overwrites the stored streak pair. Streaks are re-derived
	// from the full day set on every create, so an overwrite (not an
	// increment) is the correct write shape here.
	SetStreaks(ctx context.Context, userID shared.UserID, result StreakResult) error
}
