package redis

import (
	"context"
	"errors"

	"github.com/stridehub/stride-challenge-hub/internal/application/aggregation"
	"github.com/stridehub/stride-challenge-hub/internal/domain/leaderboard"
	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
	"github.com/stridehub/stride-challenge-hub/pkg/circuitbreaker"
)

// ══════════════════════════════════════════════════════════════════════════════
// VIEW CACHE
// ══════════════════════════════════════════════════════════════════════════════

// ViewCache implements aggregation.Cache on Redis, guarded by a circuit
// breaker. Once the breaker opens, every call short-circuits to a miss (or
// a no-op for writes) until Redis recovers, so a down cache degrades to
// store-only reads instead of per-request timeouts.
type ViewCache struct {
	cache   *Cache
	breaker *circuitbreaker.CircuitBreaker
}

// NewViewCache creates a ViewCache over the given client.
func NewViewCache(cache *Cache, breaker *circuitbreaker.CircuitBreaker) *ViewCache {
	if breaker == nil {
		breaker = circuitbreaker.CacheBreaker(nil)
	}
	return &ViewCache{cache: cache, breaker: breaker}
}

// guard runs fn through the breaker. Cache misses count as successes, open
// circuits come back as nil so the caller just falls through to the store.
func (v *ViewCache) guard(ctx context.Context, fn func(context.Context) error) error {
	err := v.breaker.Execute(ctx, func(ctx context.Context) error {
		err := fn(ctx)
		if errors.Is(err, ErrCacheMiss) {
			return nil
		}
		return err
	})
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
		return nil
	}
	return err
}

// GetUserStats returns the cached stats view, or (nil, nil) on miss.
func (v *ViewCache) GetUserStats(ctx context.Context, userID shared.UserID) (*aggregation.UserStatsView, error) {
	var view *aggregation.UserStatsView
	err := v.guard(ctx, func(ctx context.Context) error {
		var out aggregation.UserStatsView
		if err := v.cache.Get(ctx, UserStatsKey(userID.String()), &out); err != nil {
			return err
		}
		view = &out
		return nil
	})
	return view, err
}

// SetUserStats caches the stats view.
func (v *ViewCache) SetUserStats(ctx context.Context, view *aggregation.UserStatsView) error {
	return v.guard(ctx, func(ctx context.Context) error {
		return v.cache.Set(ctx, UserStatsKey(view.UserID.String()), view, TTLUserStats)
	})
}

// GetTeamProgress returns the cached progress view, or (nil, nil) on miss.
func (v *ViewCache) GetTeamProgress(ctx context.Context, teamID shared.TeamID) (*aggregation.TeamProgressView, error) {
	var view *aggregation.TeamProgressView
	err := v.guard(ctx, func(ctx context.Context) error {
		var out aggregation.TeamProgressView
		if err := v.cache.Get(ctx, TeamProgressKey(teamID.String()), &out); err != nil {
			return err
		}
		view = &out
		return nil
	})
	return view, err
}

// SetTeamProgress caches the progress view.
func (v *ViewCache) SetTeamProgress(ctx context.Context, view *aggregation.TeamProgressView) error {
	return v.guard(ctx, func(ctx context.Context) error {
		return v.cache.Set(ctx, TeamProgressKey(view.TeamID.String()), view, TTLTeamProgress)
	})
}

// GetBoard returns a cached ranked board, or (nil, nil) on miss.
func (v *ViewCache) GetBoard(ctx context.Context, scope leaderboard.Scope, teamID shared.TeamID, window shared.Window) (*leaderboard.Board, error) {
	var board *leaderboard.Board
	err := v.guard(ctx, func(ctx context.Context) error {
		var out leaderboard.Board
		if err := v.cache.Get(ctx, boardKey(scope, teamID, window), &out); err != nil {
			return err
		}
		board = &out
		return nil
	})
	return board, err
}

// SetBoard caches a ranked board with the window's TTL.
func (v *ViewCache) SetBoard(ctx context.Context, teamID shared.TeamID, board *leaderboard.Board) error {
	return v.guard(ctx, func(ctx context.Context) error {
		return v.cache.Set(ctx, boardKey(board.Scope, teamID, board.Window), board, board.Window.CacheTTL())
	})
}

// InvalidateUser drops the user's cached stats view.
func (v *ViewCache) InvalidateUser(ctx context.Context, userID shared.UserID) error {
	return v.guard(ctx, func(ctx context.Context) error {
		return v.cache.Delete(ctx, UserStatsKey(userID.String()))
	})
}

// InvalidateTeam drops the team's progress view and every window of its
// board.
func (v *ViewCache) InvalidateTeam(ctx context.Context, teamID shared.TeamID) error {
	return v.guard(ctx, func(ctx context.Context) error {
		if err := v.cache.Delete(ctx, TeamProgressKey(teamID.String())); err != nil {
			return err
		}
		return v.cache.DeleteByPattern(ctx, PrefixBoard+"team:"+teamID.String()+":*")
	})
}

// InvalidateGlobal drops every window of the global board.
func (v *ViewCache) InvalidateGlobal(ctx context.Context) error {
	return v.guard(ctx, func(ctx context.Context) error {
		return v.cache.DeleteByPattern(ctx, PrefixBoard+"global:*")
	})
}

func boardKey(scope leaderboard.Scope, teamID shared.TeamID, window shared.Window) string {
	if scope == leaderboard.ScopeTeam {
		return TeamBoardKey(teamID.String(), window.String())
	}
	return GlobalBoardKey(window.String())
}
