package postgres

import (
	"context"
	"fmt"

	"github.com/stridehub/stride-challenge-hub/internal/domain/achievement"
	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// AchievementRepository implements achievement.Repository for PostgreSQL.
type AchievementRepository struct {
	q Querier
}

// NewAchievementRepository creates a new AchievementRepository.
func NewAchievementRepository(conn *Connection) *AchievementRepository {
	return &AchievementRepository{q: conn}
}

// Award records an earned achievement. The (user_id, achievement_id)
// primary key turns a concurrent double-award into a unique violation,
// which is surfaced as shared.ErrAlreadyEarned and treated as benign.
func (r *AchievementRepository) Award(ctx context.Context, ua *achievement.UserAchievement) error {
	query := `
		INSERT INTO user_achievements (user_id, achievement_id, earned_at, team_id, activity_id)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''))
	`

	_, err := r.q.Exec(ctx, query,
		ua.UserID.String(),
		ua.AchievementID.String(),
		ua.EarnedAt,
		ua.TeamID.String(),
		ua.ActivityID.String(),
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyEarned
		}
		return fmt.Errorf("failed to award achievement: %w", err)
	}
	return nil
}

// ListByUser returns everything the user has earned, newest first.
func (r *AchievementRepository) ListByUser(ctx context.Context, userID shared.UserID) ([]*achievement.UserAchievement, error) {
	query := `
		SELECT user_id, achievement_id, earned_at,
		       COALESCE(team_id::text, ''), COALESCE(activity_id::text, '')
		FROM user_achievements
		WHERE user_id = $1
		ORDER BY earned_at DESC
	`

	rows, err := r.q.Query(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	defer rows.Close()

	var earned []*achievement.UserAchievement
	for rows.Next() {
		var (
			ua      achievement.UserAchievement
			rawUser string
			rawID   string
			rawTeam string
			rawAct  string
		)
		if err := rows.Scan(&rawUser, &rawID, &ua.EarnedAt, &rawTeam, &rawAct); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		ua.UserID = shared.UserID(rawUser)
		ua.AchievementID = achievement.AchievementID(rawID)
		ua.TeamID = shared.TeamID(rawTeam)
		ua.ActivityID = shared.ActivityID(rawAct)
		earned = append(earned, &ua)
	}
	return earned, rows.Err()
}

// Has reports whether the user already earned the achievement.
func (r *AchievementRepository) Has(ctx context.Context, userID shared.UserID, id achievement.AchievementID) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_achievements WHERE user_id = $1 AND achievement_id = $2)`,
		userID.String(), id.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check achievement: %w", err)
	}
	return exists, nil
}
