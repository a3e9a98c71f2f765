package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/stridehub/stride-challenge-hub/internal/application/aggregation"
)

// UnitOfWork implements aggregation.UnitOfWork on one connection pool.
// Every mutation runs in a single read-committed transaction with all
// three repositories bound to it.
type UnitOfWork struct {
	conn       *Connection
	activities *ActivityRepository
	stats      *StatsRepository
	goals      *TeamGoalRepository
}

// NewUnitOfWork creates a UnitOfWork over the given connection.
func NewUnitOfWork(conn *Connection) *UnitOfWork {
	return &UnitOfWork{
		conn:       conn,
		activities: NewActivityRepository(conn),
		stats:      NewStatsRepository(conn),
		goals:      NewTeamGoalRepository(conn),
	}
}

// Mutate runs fn atomically: the activity write and every aggregate delta
// commit together or roll back together.
func (u *UnitOfWork) Mutate(ctx context.Context, fn func(ctx context.Context, repos aggregation.MutationRepos) error) error {
	return u.conn.WithTx(ctx, func(tx pgx.Tx) error {
		repos := aggregation.MutationRepos{
			Activities: u.activities.WithQuerier(tx),
			Stats:      u.stats.WithQuerier(tx),
			Goals:      u.goals.WithQuerier(tx),
		}
		return fn(ctx, repos)
	})
}
