package aggregation

import (
	"context"

	"github.com/stridehub/stride-challenge-hub/internal/domain/leaderboard"
	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
	"github.com/stridehub/stride-challenge-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD QUERIES
// Boards are ranked over the full population and cached whole; pagination
// and the current-user marker are applied per request on top of the cached
// board, so one cached ranking serves every page and every viewer.
// ══════════════════════════════════════════════════════════════════════════════

// GetLeaderboardQuery selects a board slice.
type GetLeaderboardQuery struct {
	// Scope is "team" or "global".
	Scope string

	// TeamID is required for team scope, ignored for global.
	TeamID string

	// Window is "week", "month" or "all".
	Window string

	// ViewerID marks the matching entry; optional.
	ViewerID string

	// Page and PageSize paginate the view (defaults applied).
	Page     int
	PageSize int

	// MinActivities drops users with fewer activities from the ranking.
	// Zero or below falls back to leaderboard.DefaultMinActivities.
	MinActivities int
}

// GetLeaderboardResult is one page of a ranked board.
type GetLeaderboardResult struct {
	Scope       leaderboard.Scope   `json:"scope"`
	Window      shared.Window       `json:"window"`
	Entries     []leaderboard.Entry `json:"entries"`
	TotalRanked int                 `json:"total_ranked"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"page_size"`
	HasMore     bool                `json:"has_more"`
}

// GetLeaderboard returns one page of the requested board.
func (s *Service) GetLeaderboard(ctx context.Context, q GetLeaderboardQuery) (*GetLeaderboardResult, error) {
	scope, err := leaderboard.ParseScope(q.Scope)
	if err != nil {
		return nil, err
	}
	window, err := shared.ParseWindow(q.Window)
	if err != nil {
		return nil, err
	}

	teamID := shared.TeamID(q.TeamID)
	if scope == leaderboard.ScopeTeam && !teamID.IsValid() {
		return nil, shared.NewDomainError("aggregation", "GetLeaderboard", shared.ErrInvalidID, "team_id is required for team scope")
	}

	board, err := s.loadBoard(ctx, scope, teamID, window, q.MinActivities)
	if err != nil {
		return nil, err
	}

	viewer := shared.UserID(q.ViewerID)
	markCurrent(board, viewer)

	page := shared.NewPagination(q.Page, q.PageSize)
	entries := board.Page(page)

	return &GetLeaderboardResult{
		Scope:       scope,
		Window:      window,
		Entries:     entries,
		TotalRanked: len(board.Entries),
		Page:        page.Page,
		PageSize:    page.Limit(),
		HasMore:     page.Offset()+len(entries) < len(board.Entries),
	}, nil
}

// GetUserRank returns one user's position on a board with the distance
// gaps to their neighbours.
func (s *Service) GetUserRank(ctx context.Context, q GetLeaderboardQuery) (*leaderboard.UserRank, error) {
	scope, err := leaderboard.ParseScope(q.Scope)
	if err != nil {
		return nil, err
	}
	window, err := shared.ParseWindow(q.Window)
	if err != nil {
		return nil, err
	}
	viewer := shared.UserID(q.ViewerID)
	if !viewer.IsValid() {
		return nil, shared.NewDomainError("aggregation", "GetUserRank", shared.ErrInvalidID, "viewer_id is required")
	}

	teamID := shared.TeamID(q.TeamID)
	if scope == leaderboard.ScopeTeam && !teamID.IsValid() {
		return nil, shared.NewDomainError("aggregation", "GetUserRank", shared.ErrInvalidID, "team_id is required for team scope")
	}

	board, err := s.loadBoard(ctx, scope, teamID, window, q.MinActivities)
	if err != nil {
		return nil, err
	}
	markCurrent(board, viewer)
	return board.RankFor(viewer)
}

// loadBoard serves a ranked board cache-aside. The cached copy carries no
// current-user marks and is ranked at the default activity threshold, so
// a stricter filter skips the cache and ranks fresh rows.
func (s *Service) loadBoard(ctx context.Context, scope leaderboard.Scope, teamID shared.TeamID, window shared.Window, minActivities int) (*leaderboard.Board, error) {
	filtered := minActivities > leaderboard.DefaultMinActivities

	if s.cache != nil && !filtered {
		board, err := s.cache.GetBoard(ctx, scope, teamID, window)
		if err != nil {
			s.log.Warn("board cache read failed", logger.Window(window.String()), logger.Err(err))
		} else if board != nil {
			return board, nil
		}
	}

	since := window.Start(s.clock.Now())
	var (
		rows []leaderboard.Row
		err  error
	)
	if scope == leaderboard.ScopeTeam {
		rows, err = s.boards.TeamRows(ctx, teamID, since)
	} else {
		rows, err = s.boards.GlobalRows(ctx, since)
	}
	if err != nil {
		return nil, shared.WrapError("aggregation", "GetLeaderboard", shared.ErrPersistence, "board rows query failed", err)
	}

	board := leaderboard.Rank(rows, scope, window, "", minActivities)

	if s.cache != nil && !filtered {
		if err := s.cache.SetBoard(ctx, teamID, board); err != nil {
			s.log.Warn("board cache write failed", logger.Window(window.String()), logger.Err(err))
		}
	}
	return board, nil
}

// markCurrent flags the viewer's entry. Boards come out of loadBoard as
// per-request copies (the cache round-trips through JSON), so this never
// leaks one viewer's mark to another.
func markCurrent(board *leaderboard.Board, viewer shared.UserID) {
	if !viewer.IsValid() {
		return
	}
	for i := range board.Entries {
		board.Entries[i].IsCurrent = board.Entries[i].UserID == viewer
	}
}
