package aggregation

import (
	"context"
	"time"

	"github.com/stridehub/stride-challenge-hub/internal/domain/activity"
	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
)

// ListActivitiesQuery selects a page of activities.
type ListActivitiesQuery struct {
	// ViewerID is the caller. Viewing your own history includes private
	// activities; anyone else sees public only.
	ViewerID string

	// UserID is whose activities to list. Defaults to the viewer.
	UserID string

	// TeamID optionally narrows to one team's attributed activities.
	TeamID string

	// From/To bound occurred-at, inclusive/exclusive. Optional.
	From time.Time
	To   time.Time

	Page     int
	PageSize int
}

// ListActivitiesResult is one page, newest first.
type ListActivitiesResult struct {
	Activities []*activity.Activity `json:"activities"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
}

// ListActivities returns a page of activities visible to the viewer.
func (s *Service) ListActivities(ctx context.Context, q ListActivitiesQuery) (*ListActivitiesResult, error) {
	viewerID := shared.UserID(q.ViewerID)
	if !viewerID.IsValid() {
		return nil, shared.NewDomainError("aggregation", "ListActivities", shared.ErrInvalidID, "viewer_id is required")
	}

	userID := shared.UserID(q.UserID)
	if !userID.IsValid() {
		userID = viewerID
	}

	teamID := shared.TeamID(q.TeamID)
	if teamID.IsValid() {
		// Team-scoped listings are member-only.
		if err := s.requireMembership(ctx, viewerID, []shared.TeamID{teamID}); err != nil {
			return nil, err
		}
	}

	filter := activity.ListFilter{
		UserID:         userID,
		TeamID:         teamID,
		From:           q.From,
		To:             q.To,
		IncludePrivate: viewerID == userID,
	}

	page := shared.NewPagination(q.Page, q.PageSize)
	items, err := s.activities.List(ctx, filter, page)
	if err != nil {
		return nil, shared.WrapError("aggregation", "ListActivities", shared.ErrPersistence, "list failed", err)
	}

	return &ListActivitiesResult{
		Activities: items,
		Page:       page.Page,
		PageSize:   page.Limit(),
	}, nil
}

// GetActivity returns a single activity if the viewer may see it.
func (s *Service) GetActivity(ctx context.Context, rawViewerID, rawActivityID string) (*activity.Activity, error) {
	viewerID := shared.UserID(rawViewerID)
	act, err := s.activities.GetByID(ctx, shared.ActivityID(rawActivityID))
	if err != nil {
		return nil, err
	}
	if act.IsPrivate && !act.IsOwnedBy(viewerID) {
		// Hidden records are indistinguishable from missing ones.
		return nil, shared.ErrActivityNotFound
	}
	return act, nil
}
