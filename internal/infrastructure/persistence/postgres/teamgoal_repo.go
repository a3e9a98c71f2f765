package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
	"github.com/stridehub/stride-challenge-hub/internal/domain/teamgoal"
)

// ══════════════════════════════════════════════════════════════════════════════
// TEAM GOAL REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// TeamGoalRepository implements teamgoal.Repository for PostgreSQL.
type TeamGoalRepository struct {
	q Querier
}

// NewTeamGoalRepository creates a new TeamGoalRepository.
func NewTeamGoalRepository(conn *Connection) *TeamGoalRepository {
	return &TeamGoalRepository{q: conn}
}

// WithQuerier returns a copy bound to the given querier.
func (r *TeamGoalRepository) WithQuerier(q Querier) *TeamGoalRepository {
	return &TeamGoalRepository{q: q}
}

// CreateGoal persists a new goal, deactivating any previous active goal
// for the team.
func (r *TeamGoalRepository) CreateGoal(ctx context.Context, g *teamgoal.Goal) error {
	_, err := r.q.Exec(ctx,
		`UPDATE team_goals SET active = FALSE WHERE team_id = $1 AND active`,
		g.TeamID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate previous goal: %w", err)
	}

	query := `
		INSERT INTO team_goals (id, team_id, name, target_distance_m, start_date, end_date, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	var endDate *time.Time
	if !g.EndDate.IsZero() {
		endDate = &g.EndDate
	}
	_, err = r.q.Exec(ctx, query,
		g.ID.String(),
		g.TeamID.String(),
		g.Name,
		g.TargetDistance,
		g.StartDate,
		endDate,
		g.Active,
	)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

// ActiveGoal returns the team's active goal.
func (r *TeamGoalRepository) ActiveGoal(ctx context.Context, teamID shared.TeamID) (*teamgoal.Goal, error) {
	query := `
		SELECT id, team_id, name, target_distance_m, start_date, end_date, active, created_at
		FROM team_goals
		WHERE team_id = $1 AND active
	`

	var (
		g       teamgoal.Goal
		rawID   string
		rawTeam string
		endDate *time.Time
	)
	err := r.q.QueryRow(ctx, query, teamID.String()).Scan(
		&rawID, &rawTeam, &g.Name, &g.TargetDistance,
		&g.StartDate, &endDate, &g.Active, &g.CreatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to get active goal: %w", err)
	}

	g.ID = teamgoal.GoalID(rawID)
	g.TeamID = shared.TeamID(rawTeam)
	if endDate != nil {
		g.EndDate = *endDate
	}
	return &g, nil
}

// ApplyDelta atomically adjusts the progress totals for a goal and returns
// the post-apply row. Same increment upsert shape as user_stats.
func (r *TeamGoalRepository) ApplyDelta(ctx context.Context, goalID teamgoal.GoalID, distance float64, duration, activities int64, lastActivityAt time.Time) (*teamgoal.Progress, error) {
	query := `
		INSERT INTO team_goal_progress (
			goal_id, team_id, total_distance_m, total_duration_s, total_activities,
			last_activity_at, updated_at
		)
		SELECT g.id, g.team_id, $2, $3, $4, $5, NOW()
		FROM team_goals g WHERE g.id = $1
		ON CONFLICT (goal_id) DO UPDATE SET
			total_distance_m = team_goal_progress.total_distance_m + EXCLUDED.total_distance_m,
			total_duration_s = team_goal_progress.total_duration_s + EXCLUDED.total_duration_s,
			total_activities = team_goal_progress.total_activities + EXCLUDED.total_activities,
			last_activity_at = GREATEST(team_goal_progress.last_activity_at, EXCLUDED.last_activity_at),
			updated_at = NOW()
		RETURNING goal_id, team_id, total_distance_m, total_duration_s, total_activities, last_activity_at
	`

	var (
		p       teamgoal.Progress
		rawGoal string
		rawTeam string
		lastAct *time.Time
	)
	err := r.q.QueryRow(ctx, query, goalID.String(), distance, duration, activities, lastActivityAt).Scan(
		&rawGoal, &rawTeam, &p.TotalDistance, &p.TotalDuration, &p.TotalActivities, &lastAct,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to apply goal delta: %w", err)
	}

	p.GoalID = teamgoal.GoalID(rawGoal)
	p.TeamID = shared.TeamID(rawTeam)
	if lastAct != nil {
		p.LastActivityAt = *lastAct
	}
	return &p, nil
}

// GetProgress returns the progress row for a goal, or a zero progress when
// no activity has been attributed yet.
func (r *TeamGoalRepository) GetProgress(ctx context.Context, goalID teamgoal.GoalID) (*teamgoal.Progress, error) {
	query := `
		SELECT team_id, total_distance_m, total_duration_s, total_activities, last_activity_at
		FROM team_goal_progress
		WHERE goal_id = $1
	`

	p := teamgoal.Progress{GoalID: goalID}
	var (
		rawTeam        string
		lastActivityAt *time.Time
	)
	err := r.q.QueryRow(ctx, query, goalID.String()).Scan(
		&rawTeam, &p.TotalDistance, &p.TotalDuration, &p.TotalActivities, &lastActivityAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return &p, nil
		}
		return nil, fmt.Errorf("failed to get goal progress: %w", err)
	}

	p.TeamID = shared.TeamID(rawTeam)
	if lastActivityAt != nil {
		p.LastActivityAt = *lastActivityAt
	}
	return &p, nil
}

// Contributors returns per-member contribution sums for a goal's team
// since the goal start. Private activities still count here: the goal is a
// shared pot and hiding a record from team views does not take its meters
// back out.
func (r *TeamGoalRepository) Contributors(ctx context.Context, goalID teamgoal.GoalID) ([]teamgoal.Contributor, error) {
	query := `
		SELECT a.user_id,
		       COALESCE(m.display_name, ''),
		       SUM(a.distance_m),
		       COUNT(*),
		       MIN(a.occurred_at)
		FROM activities a
		JOIN activity_teams at ON at.activity_id = a.id
		JOIN team_goals g ON g.id = $1 AND g.team_id = at.team_id
		LEFT JOIN team_memberships m ON m.user_id = a.user_id AND m.team_id = at.team_id
		WHERE a.occurred_at >= g.start_date
		GROUP BY a.user_id, m.display_name
	`

	rows, err := r.q.Query(ctx, query, goalID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query contributors: %w", err)
	}
	defer rows.Close()

	var contributors []teamgoal.Contributor
	for rows.Next() {
		var (
			c       teamgoal.Contributor
			rawUser string
		)
		if err := rows.Scan(&rawUser, &c.DisplayName, &c.Distance, &c.Activities, &c.FirstActivityAt); err != nil {
			return nil, fmt.Errorf("failed to scan contributor: %w", err)
		}
		c.UserID = shared.UserID(rawUser)
		contributors = append(contributors, c)
	}
	return contributors, rows.Err()
}
