package leaderboard

import (
	"context"
	"time"

	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
)

// Source supplies the unranked rows a board is built from. Implemented by
// the infrastructure layer as windowed sums over the activities table.
//
// Private activities are excluded here: they count toward the owner's own
// stats but never toward a board another user can see.
type Source interface {
	// TeamRows returns one row per active member of the team, summing their
	// public activity since the window start (zero time = all time).
	// Members with no qualifying activity are returned with zero sums so
	// the caller applies the activity threshold in one place.
	TeamRows(ctx context.Context, teamID shared.TeamID, since time.Time) ([]Row, error)

	// GlobalRows returns one row per user with public activity since the
	// window start.
	GlobalRows(ctx context.Context, since time.Time) ([]Row, error)
}
