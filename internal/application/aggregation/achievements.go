package aggregation

import (
	"context"
	"time"

	"github.com/stridehub/stride-challenge-hub/internal/domain/achievement"
	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
)

// AchievementStatus is one catalog entry with the user's standing on it.
type AchievementStatus struct {
	Definition      achievement.Definition       `json:"definition"`
	Earned          bool                         `json:"earned"`
	EarnedAt        *achievement.UserAchievement `json:"earned_at,omitempty"`
	ProgressPercent float64                      `json:"progress_percent"`
}

// GetUserAchievements returns the full catalog annotated with what the
// user has earned and how far they are on the rest.
func (s *Service) GetUserAchievements(ctx context.Context, rawUserID string) ([]AchievementStatus, error) {
	userID := shared.UserID(rawUserID)
	if !userID.IsValid() {
		return nil, shared.NewDomainError("aggregation", "GetUserAchievements", shared.ErrInvalidID, "user_id is required")
	}

	earned, err := s.earned.ListByUser(ctx, userID)
	if err != nil {
		return nil, shared.WrapError("aggregation", "GetUserAchievements", shared.ErrPersistence, "earned lookup failed", err)
	}
	earnedByID := make(map[achievement.AchievementID]*achievement.UserAchievement, len(earned))
	for _, ua := range earned {
		earnedByID[ua.AchievementID] = ua
	}

	facts, err := s.collectFacts(ctx, userID)
	if err != nil {
		return nil, err
	}

	catalog := achievement.Catalog()
	statuses := make([]AchievementStatus, 0, len(catalog))
	for _, def := range catalog {
		status := AchievementStatus{
			Definition:      def,
			ProgressPercent: def.ProgressPercent(facts),
		}
		if ua, ok := earnedByID[def.ID]; ok {
			status.Earned = true
			status.EarnedAt = ua
			status.ProgressPercent = 100
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// CheckUserAchievements runs detection outside the mutation path, for
// backfills and repair jobs. Awards anything met but missing and returns
// the newly earned set.
func (s *Service) CheckUserAchievements(ctx context.Context, rawUserID string) ([]achievement.UserAchievement, error) {
	userID := shared.UserID(rawUserID)
	if !userID.IsValid() {
		return nil, shared.NewDomainError("aggregation", "CheckUserAchievements", shared.ErrInvalidID, "user_id is required")
	}
	return s.detectAchievements(ctx, userID, "", "", time.Time{}), nil
}
