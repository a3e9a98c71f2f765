package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/stridehub/stride-challenge-hub/internal/domain/leaderboard"
	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD SOURCE IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardSource implements leaderboard.Source for PostgreSQL. Rows are
// computed on demand from the activities table; ranking and caching happen
// a layer up.
type LeaderboardSource struct {
	q Querier
}

// NewLeaderboardSource creates a new LeaderboardSource.
func NewLeaderboardSource(conn *Connection) *LeaderboardSource {
	return &LeaderboardSource{q: conn}
}

// TeamRows returns one row per active member of the team, summing their
// public activity attributed to this team since the window start. Members
// with nothing logged come back with zero sums.
func (s *LeaderboardSource) TeamRows(ctx context.Context, teamID shared.TeamID, since time.Time) ([]leaderboard.Row, error) {
	query := `
		SELECT m.user_id,
		       m.display_name,
		       COALESCE(SUM(a.distance_m), 0),
		       COALESCE(SUM(a.duration_s), 0),
		       COUNT(a.id)
		FROM team_memberships m
		LEFT JOIN activity_teams at ON at.team_id = m.team_id
		LEFT JOIN activities a ON a.id = at.activity_id
			AND a.user_id = m.user_id
			AND a.is_private = FALSE
			AND a.occurred_at >= $2
		WHERE m.team_id = $1 AND m.status = 'active'
		GROUP BY m.user_id, m.display_name
	`

	return s.queryRows(ctx, query, teamID.String(), since)
}

// GlobalRows returns one row per user with public activity since the
// window start. The display name comes from any active membership; users
// outside every team cannot appear here because activities always carry a
// team attribution.
func (s *LeaderboardSource) GlobalRows(ctx context.Context, since time.Time) ([]leaderboard.Row, error) {
	query := `
		SELECT a.user_id,
		       COALESCE(MIN(m.display_name), ''),
		       SUM(a.distance_m),
		       SUM(a.duration_s),
		       COUNT(DISTINCT a.id)
		FROM activities a
		LEFT JOIN team_memberships m ON m.user_id = a.user_id AND m.status = 'active'
		WHERE a.is_private = FALSE AND a.occurred_at >= $1
		GROUP BY a.user_id
	`

	return s.queryRows(ctx, query, since)
}

func (s *LeaderboardSource) queryRows(ctx context.Context, query string, args ...interface{}) ([]leaderboard.Row, error) {
	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard rows: %w", err)
	}
	defer rows.Close()

	var result []leaderboard.Row
	for rows.Next() {
		var (
			r       leaderboard.Row
			rawUser string
		)
		if err := rows.Scan(&rawUser, &r.DisplayName, &r.Distance, &r.Duration, &r.Activities); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		r.UserID = shared.UserID(rawUser)
		result = append(result, r)
	}
	return result, rows.Err()
}
