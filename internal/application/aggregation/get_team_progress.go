package aggregation

import (
	"context"

	"github.com/google/uuid"

	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
	"github.com/stridehub/stride-challenge-hub/internal/domain/teamgoal"
	"github.com/stridehub/stride-challenge-hub/pkg/logger"
)

// GetTeamProgress assembles the progress view for a team's active goal.
// Only active members may look at it. Cache-aside like the stats view.
func (s *Service) GetTeamProgress(ctx context.Context, rawViewerID, rawTeamID string) (*TeamProgressView, error) {
	viewerID := shared.UserID(rawViewerID)
	teamID := shared.TeamID(rawTeamID)
	if !viewerID.IsValid() || !teamID.IsValid() {
		return nil, shared.NewDomainError("aggregation", "GetTeamProgress", shared.ErrInvalidID, "viewer_id and team_id are required")
	}

	if err := s.requireMembership(ctx, viewerID, []shared.TeamID{teamID}); err != nil {
		return nil, err
	}

	if s.cache != nil {
		view, err := s.cache.GetTeamProgress(ctx, teamID)
		if err != nil {
			s.log.Warn("progress cache read failed", logger.TeamID(teamID.String()), logger.Err(err))
		} else if view != nil {
			return view, nil
		}
	}

	view, err := s.buildTeamProgressView(ctx, teamID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetTeamProgress(ctx, view); err != nil {
			s.log.Warn("progress cache write failed", logger.TeamID(teamID.String()), logger.Err(err))
		}
	}
	return view, nil
}

func (s *Service) buildTeamProgressView(ctx context.Context, teamID shared.TeamID) (*TeamProgressView, error) {
	goal, err := s.goals.ActiveGoal(ctx, teamID)
	if err != nil {
		return nil, err
	}

	progress, err := s.goals.GetProgress(ctx, goal.ID)
	if err != nil {
		return nil, err
	}

	contributors, err := s.goals.Contributors(ctx, goal.ID)
	if err != nil {
		return nil, err
	}
	top := teamgoal.TopContributors(contributors, teamgoal.TopContributorCount)

	now := s.clock.Now()
	view := &TeamProgressView{
		TeamID:             teamID,
		GoalID:             goal.ID,
		GoalName:           goal.Name,
		TargetDistance:     goal.TargetDistance,
		TotalDistance:      progress.TotalDistance,
		TotalDuration:      progress.TotalDuration,
		TotalActivities:    progress.TotalActivities,
		PercentComplete:    progress.PercentComplete(goal),
		IsComplete:         progress.IsComplete(goal),
		AverageDailyMeters: progress.AverageDailyDistance(goal, now),
		TopContributors:    make([]ContributorView, 0, len(top)),
		GeneratedAt:        now,
	}

	if projected, ok := progress.ProjectedCompletion(goal, now); ok {
		view.ProjectedCompletion = &projected
	}

	for _, c := range top {
		view.TopContributors = append(view.TopContributors, ContributorView{
			UserID:      c.UserID,
			DisplayName: c.DisplayName,
			Distance:    c.Distance,
			Activities:  c.Activities,
		})
	}
	return view, nil
}

// CreateTeamGoal starts a new active goal for a team, replacing any
// previous one. Restricted to team members.
func (s *Service) CreateTeamGoal(ctx context.Context, rawUserID, rawTeamID, name string, targetDistance float64) (*teamgoal.Goal, error) {
	userID := shared.UserID(rawUserID)
	teamID := shared.TeamID(rawTeamID)
	if err := s.requireMembership(ctx, userID, []shared.TeamID{teamID}); err != nil {
		return nil, err
	}

	goal, err := teamgoal.NewGoal(teamgoal.GoalID(uuid.NewString()), teamID, name, targetDistance, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.goals.CreateGoal(ctx, goal); err != nil {
		return nil, shared.WrapError("aggregation", "CreateTeamGoal", shared.ErrPersistence, "goal create failed", err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateTeam(ctx, teamID); err != nil {
			s.log.Warn("cache invalidation failed", logger.TeamID(teamID.String()), logger.Err(err))
		}
	}
	return goal, nil
}
