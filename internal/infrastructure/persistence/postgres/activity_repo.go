package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/stridehub/stride-challenge-hub/internal/domain/activity"
	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACTIVITY REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ActivityRepository implements activity.Repository for PostgreSQL.
type ActivityRepository struct {
	q Querier
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(conn *Connection) *ActivityRepository {
	return &ActivityRepository{q: conn}
}

// WithQuerier returns a copy bound to the given querier, typically a
// transaction. Used by the unit of work.
func (r *ActivityRepository) WithQuerier(q Querier) *ActivityRepository {
	return &ActivityRepository{q: q}
}

// Create persists a new activity together with its team attributions.
func (r *ActivityRepository) Create(ctx context.Context, a *activity.Activity) error {
	query := `
		INSERT INTO activities (
			id, user_id, distance_m, duration_s, occurred_at,
			note, is_private, source, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.q.Exec(ctx, query,
		a.ID.String(),
		a.UserID.String(),
		a.Distance.Float64(),
		a.Duration.Int64(),
		a.OccurredAt,
		a.Note,
		a.IsPrivate,
		string(a.Source),
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.WrapError("activity", "Create", shared.ErrAlreadyExists, "activity already exists", err)
		}
		return fmt.Errorf("failed to create activity: %w", err)
	}

	for i, teamID := range a.TeamIDs {
		_, err := r.q.Exec(ctx,
			`INSERT INTO activity_teams (activity_id, team_id, position) VALUES ($1, $2, $3)`,
			a.ID.String(), teamID.String(), i,
		)
		if err != nil {
			return fmt.Errorf("failed to attribute activity to team: %w", err)
		}
	}

	return nil
}

// GetByID returns an activity by ID, including its team attributions.
func (r *ActivityRepository) GetByID(ctx context.Context, id shared.ActivityID) (*activity.Activity, error) {
	query := `
		SELECT id, user_id, distance_m, duration_s, occurred_at,
		       note, is_private, source, created_at, updated_at
		FROM activities
		WHERE id = $1
	`

	var (
		a        activity.Activity
		rawID    string
		rawUser  string
		distance float64
		duration int64
		source   string
	)
	err := r.q.QueryRow(ctx, query, id.String()).Scan(
		&rawID, &rawUser, &distance, &duration, &a.OccurredAt,
		&a.Note, &a.IsPrivate, &source, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}

	a.ID = shared.ActivityID(rawID)
	a.UserID = shared.UserID(rawUser)
	a.Distance = shared.Meters(distance)
	a.Duration = shared.Seconds(duration)
	a.Source = activity.Source(source)

	teams, err := r.loadTeams(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	a.TeamIDs = teams

	return &a, nil
}

// Update persists the mutable fields.
func (r *ActivityRepository) Update(ctx context.Context, a *activity.Activity) error {
	query := `
		UPDATE activities SET note = $1, is_private = $2, updated_at = $3
		WHERE id = $4
	`

	tag, err := r.q.Exec(ctx, query, a.Note, a.IsPrivate, a.UpdatedAt, a.ID.String())
	if err != nil {
		return fmt.Errorf("failed to update activity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrActivityNotFound
	}
	return nil
}

// Delete removes an activity; team attributions go with it via cascade.
func (r *ActivityRepository) Delete(ctx context.Context, id shared.ActivityID) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM activities WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrActivityNotFound
	}
	return nil
}

// List returns a page of activities matching the filter, newest first.
func (r *ActivityRepository) List(ctx context.Context, filter activity.ListFilter, page shared.Pagination) ([]*activity.Activity, error) {
	query := `
		SELECT DISTINCT a.id, a.user_id, a.distance_m, a.duration_s, a.occurred_at,
		       a.note, a.is_private, a.source, a.created_at, a.updated_at
		FROM activities a
	`
	args := make([]interface{}, 0, 6)
	where := ""
	next := func() string { return fmt.Sprintf("$%d", len(args)) }
	and := func(clause string) {
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
	}

	if filter.TeamID.IsValid() {
		query += " JOIN activity_teams at ON at.activity_id = a.id"
		args = append(args, filter.TeamID.String())
		and("at.team_id = " + next())
	}
	if filter.UserID.IsValid() {
		args = append(args, filter.UserID.String())
		and("a.user_id = " + next())
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		and("a.occurred_at >= " + next())
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		and("a.occurred_at < " + next())
	}
	if !filter.IncludePrivate {
		and("a.is_private = FALSE")
	}

	args = append(args, page.Limit())
	limitClause := " ORDER BY a.occurred_at DESC LIMIT " + next()
	args = append(args, page.Offset())
	limitClause += " OFFSET " + next()

	rows, err := r.q.Query(ctx, query+where+limitClause, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var result []*activity.Activity
	for rows.Next() {
		var (
			a        activity.Activity
			rawID    string
			rawUser  string
			distance float64
			duration int64
			source   string
		)
		if err := rows.Scan(
			&rawID, &rawUser, &distance, &duration, &a.OccurredAt,
			&a.Note, &a.IsPrivate, &source, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}
		a.ID = shared.ActivityID(rawID)
		a.UserID = shared.UserID(rawUser)
		a.Distance = shared.Meters(distance)
		a.Duration = shared.Seconds(duration)
		a.Source = activity.Source(source)
		result = append(result, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, a := range result {
		teams, err := r.loadTeams(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		a.TeamIDs = teams
	}

	return result, nil
}

// ActivityDays returns the distinct calendar days on which the user logged
// activity, as midnights in the given location. Day bucketing happens in
// the database so one activity per day is enough to carry a streak.
func (r *ActivityRepository) ActivityDays(ctx context.Context, userID shared.UserID, loc *time.Location) ([]time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	query := `
		SELECT DISTINCT date_trunc('day', occurred_at AT TIME ZONE $2)
		FROM activities
		WHERE user_id = $1
		ORDER BY 1
	`

	rows, err := r.q.Query(ctx, query, userID.String(), loc.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query activity days: %w", err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("failed to scan activity day: %w", err)
		}
		days = append(days, time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc))
	}
	return days, rows.Err()
}

// SumForUser returns total distance, duration and count of the user's
// activities since the given time.
func (r *ActivityRepository) SumForUser(ctx context.Context, userID shared.UserID, since time.Time) (float64, int64, int64, error) {
	query := `
		SELECT COALESCE(SUM(distance_m), 0), COALESCE(SUM(duration_s), 0), COUNT(*)
		FROM activities
		WHERE user_id = $1 AND occurred_at >= $2
	`

	var (
		distance float64
		duration int64
		count    int64
	)
	if err := r.q.QueryRow(ctx, query, userID.String(), since).Scan(&distance, &duration, &count); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to sum activities: %w", err)
	}
	return distance, duration, count, nil
}

func (r *ActivityRepository) loadTeams(ctx context.Context, id shared.ActivityID) ([]shared.TeamID, error) {
	rows, err := r.q.Query(ctx,
		`SELECT team_id FROM activity_teams WHERE activity_id = $1 ORDER BY position`,
		id.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load activity teams: %w", err)
	}
	defer rows.Close()

	var teams []shared.TeamID
	for rows.Next() {
		var teamID string
		if err := rows.Scan(&teamID); err != nil {
			return nil, fmt.Errorf("failed to scan team attribution: %w", err)
		}
		teams = append(teams, shared.TeamID(teamID))
	}
	return teams, rows.Err()
}
