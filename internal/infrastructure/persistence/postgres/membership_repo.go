package postgres

import (
	"context"
	"fmt"

	"github.com/stridehub/stride-challenge-hub/internal/domain/activity"
	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MEMBERSHIP READER IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// MembershipRepository implements activity.MembershipReader for PostgreSQL.
// Rosters are written by the identity system; this service only reads them.
type MembershipRepository struct {
	q Querier
}

// NewMembershipRepository creates a new MembershipRepository.
func NewMembershipRepository(conn *Connection) *MembershipRepository {
	return &MembershipRepository{q: conn}
}

// IsActiveMember checks whether the user is an active member of the team.
func (r *MembershipRepository) IsActiveMember(ctx context.Context, userID shared.UserID, teamID shared.TeamID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM team_memberships
			WHERE user_id = $1 AND team_id = $2 AND status = 'active'
		)
	`

	var exists bool
	if err := r.q.QueryRow(ctx, query, userID.String(), teamID.String()).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}

// ActiveTeamCount returns how many teams the user is an active member of.
func (r *MembershipRepository) ActiveTeamCount(ctx context.Context, userID shared.UserID) (int, error) {
	var count int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM team_memberships WHERE user_id = $1 AND status = 'active'`,
		userID.String(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count memberships: %w", err)
	}
	return count, nil
}

// TeamMembers returns the team's active roster.
func (r *MembershipRepository) TeamMembers(ctx context.Context, teamID shared.TeamID) ([]activity.Member, error) {
	query := `
		SELECT user_id, display_name, joined_at
		FROM team_memberships
		WHERE team_id = $1 AND status = 'active'
		ORDER BY joined_at
	`

	rows, err := r.q.Query(ctx, query, teamID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query team members: %w", err)
	}
	defer rows.Close()

	var members []activity.Member
	for rows.Next() {
		var (
			m       activity.Member
			rawUser string
		)
		if err := rows.Scan(&rawUser, &m.DisplayName, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		m.UserID = shared.UserID(rawUser)
		members = append(members, m)
	}
	return members, rows.Err()
}
