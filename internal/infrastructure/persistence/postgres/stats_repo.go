package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
	"github.com/stridehub/stride-challenge-hub/internal/domain/stats"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER STATS REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StatsRepository implements stats.Repository for PostgreSQL.
type StatsRepository struct {
	q Querier
}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(conn *Connection) *StatsRepository {
	return &StatsRepository{q: conn}
}

// WithQuerier returns a copy bound to the given querier.
func (r *StatsRepository) WithQuerier(q Querier) *StatsRepository {
	return &StatsRepository{q: q}
}

// ApplyDelta atomically adjusts the user's running totals. The upsert adds
// the delta to whatever is already stored, so concurrent deltas for the
// same user serialize on the row and commute. last_activity_at only moves
// forward; a delete carrying an old timestamp cannot rewind it.
func (r *StatsRepository) ApplyDelta(ctx context.Context, userID shared.UserID, delta stats.Delta, lastActivityAt time.Time) error {
	query := `
		INSERT INTO user_stats (
			user_id, total_distance_m, total_duration_s, total_activities,
			last_activity_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			total_distance_m = user_stats.total_distance_m + EXCLUDED.total_distance_m,
			total_duration_s = user_stats.total_duration_s + EXCLUDED.total_duration_s,
			total_activities = user_stats.total_activities + EXCLUDED.total_activities,
			last_activity_at = GREATEST(user_stats.last_activity_at, EXCLUDED.last_activity_at),
			updated_at = NOW()
	`

	_, err := r.q.Exec(ctx, query,
		userID.String(),
		delta.Distance,
		delta.Duration,
		delta.Activities,
		lastActivityAt,
	)
	if err != nil {
		return fmt.Errorf("failed to apply stats delta: %w", err)
	}
	return nil
}

// GetByUser returns the user's aggregate, or a zero aggregate when the
// user has no row yet.
func (r *StatsRepository) GetByUser(ctx context.Context, userID shared.UserID) (*stats.UserStats, error) {
	query := `
		SELECT total_distance_m, total_duration_s, total_activities,
		       current_streak, longest_streak, last_activity_at, updated_at
		FROM user_stats
		WHERE user_id = $1
	`

	us := stats.NewUserStats(userID)
	var lastActivityAt *time.Time
	err := r.q.QueryRow(ctx, query, userID.String()).Scan(
		&us.TotalDistance,
		&us.TotalDuration,
		&us.TotalActivities,
		&us.CurrentStreak,
		&us.LongestStreak,
		&lastActivityAt,
		&us.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return us, nil
		}
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	if lastActivityAt != nil {
		us.LastActivityAt = *lastActivityAt
	}
	return us, nil
}

// SetStreaks overwrites the stored streak pair.
func (r *StatsRepository) SetStreaks(ctx context.Context, userID shared.UserID, result stats.StreakResult) error {
	query := `
		INSERT INTO user_stats (user_id, current_streak, longest_streak, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			current_streak = EXCLUDED.current_streak,
			longest_streak = EXCLUDED.longest_streak,
			updated_at = NOW()
	`

	_, err := r.q.Exec(ctx, query, userID.String(), result.CurrentStreak, result.LongestStreak)
	if err != nil {
		return fmt.Errorf("failed to set streaks: %w", err)
	}
	return nil
}
