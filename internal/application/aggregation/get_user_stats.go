package aggregation

import (
	"context"

	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
	"github.com/stridehub/stride-challenge-hub/pkg/logger"
)

// GetUserStats assembles the user's stats view: lifetime totals, streaks
// and rolling week/month sums. Cache-aside: a hit serves the whole view, a
// miss builds it from the store and repopulates the cache best effort.
func (s *Service) GetUserStats(ctx context.Context, rawUserID string) (*UserStatsView, error) {
	userID := shared.UserID(rawUserID)
	if !userID.IsValid() {
		return nil, shared.NewDomainError("aggregation", "GetUserStats", shared.ErrInvalidID, "user_id is required")
	}

	if s.cache != nil {
		view, err := s.cache.GetUserStats(ctx, userID)
		if err != nil {
			s.log.Warn("stats cache read failed", logger.UserID(userID.String()), logger.Err(err))
		} else if view != nil {
			return view, nil
		}
	}

	view, err := s.buildUserStatsView(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetUserStats(ctx, view); err != nil {
			s.log.Warn("stats cache write failed", logger.UserID(userID.String()), logger.Err(err))
		}
	}
	return view, nil
}

func (s *Service) buildUserStatsView(ctx context.Context, userID shared.UserID) (*UserStatsView, error) {
	us, err := s.stats.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	weekDist, weekDur, weekCount, err := s.activities.SumForUser(ctx, userID, shared.WindowWeek.Start(now))
	if err != nil {
		return nil, err
	}
	monthDist, monthDur, monthCount, err := s.activities.SumForUser(ctx, userID, shared.WindowMonth.Start(now))
	if err != nil {
		return nil, err
	}

	return &UserStatsView{
		UserID:          userID,
		TotalDistance:   us.TotalDistance,
		TotalDuration:   us.TotalDuration,
		TotalActivities: us.TotalActivities,
		CurrentStreak:   us.CurrentStreak,
		LongestStreak:   us.LongestStreak,
		LastActivityAt:  us.LastActivityAt,
		WeekDistance:    weekDist,
		WeekDuration:    weekDur,
		WeekActivities:  weekCount,
		MonthDistance:   monthDist,
		MonthDuration:   monthDur,
		MonthActivities: monthCount,
		GeneratedAt:     now,
	}, nil
}
