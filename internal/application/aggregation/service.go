// Package aggregation contains the write and read use cases of the
// challenge hub: activity mutations that atomically maintain the derived
// aggregates, and the query side built on top of them.
package aggregation

import (
	"context"
	"time"

	"github.com/stridehub/stride-challenge-hub/internal/domain/achievement"
	"github.com/stridehub/stride-challenge-hub/internal/domain/activity"
	"github.com/stridehub/stride-challenge-hub/internal/domain/leaderboard"
	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
	"github.com/stridehub/stride-challenge-hub/internal/domain/stats"
	"github.com/stridehub/stride-challenge-hub/internal/domain/teamgoal"
	"github.com/stridehub/stride-challenge-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// PORTS
// ══════════════════════════════════════════════════════════════════════════════

// MutationRepos bundles the repositories that participate in one mutation
// transaction. Inside UnitOfWork.Mutate all three write to the same tx.
type MutationRepos struct {
	Activities activity.Repository
	Stats      stats.Repository
	Goals      teamgoal.Repository
}

// UnitOfWork runs a mutation atomically: either every write in fn commits
// or none do. The postgres implementation binds the repos to one
// transaction; test fakes just call fn.
type UnitOfWork interface {
	Mutate(ctx context.Context, fn func(ctx context.Context, repos MutationRepos) error) error
}

// Cache is the read-side view cache. A (nil, nil) return is a miss. All
// methods are best effort: callers log failures and fall through to the
// store, they never fail a request on a cache error.
type Cache interface {
	GetUserStats(ctx context.Context, userID shared.UserID) (*UserStatsView, error)
	SetUserStats(ctx context.Context, view *UserStatsView) error

	GetTeamProgress(ctx context.Context, teamID shared.TeamID) (*TeamProgressView, error)
	SetTeamProgress(ctx context.Context, view *TeamProgressView) error

	GetBoard(ctx context.Context, scope leaderboard.Scope, teamID shared.TeamID, window shared.Window) (*leaderboard.Board, error)
	SetBoard(ctx context.Context, teamID shared.TeamID, board *leaderboard.Board) error

	InvalidateUser(ctx context.Context, userID shared.UserID) error
	InvalidateTeam(ctx context.Context, teamID shared.TeamID) error
	InvalidateGlobal(ctx context.Context) error
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVICE
// ══════════════════════════════════════════════════════════════════════════════

// Service is the aggregation façade. All transport layers (HTTP, jobs)
// call through here; nothing else touches the mutation path.
type Service struct {
	uow         UnitOfWork
	activities  activity.Repository
	memberships activity.MembershipReader
	stats       stats.Repository
	goals       teamgoal.Repository
	boards      leaderboard.Source
	earned      achievement.Repository
	cache       Cache
	publisher   shared.EventPublisher
	streaks     *stats.StreakCalculator
	clock       shared.Clock
	log         *logger.Logger
}

// Deps bundles the service dependencies. Cache and Publisher may be nil;
// the service degrades to store-only reads and silent events.
type Deps struct {
	UnitOfWork   UnitOfWork
	Activities   activity.Repository
	Memberships  activity.MembershipReader
	Stats        stats.Repository
	Goals        teamgoal.Repository
	Boards       leaderboard.Source
	Achievements achievement.Repository
	Cache        Cache
	Publisher    shared.EventPublisher
	Streaks      *stats.StreakCalculator
	Clock        shared.Clock
	Logger       *logger.Logger
}

// NewService wires the aggregation service.
func NewService(d Deps) *Service {
	if d.Streaks == nil {
		d.Streaks = stats.NewStreakCalculator(nil)
	}
	if d.Clock == nil {
		d.Clock = shared.SystemClock{}
	}
	if d.Logger == nil {
		d.Logger = logger.NewNop()
	}
	return &Service{
		uow:         d.UnitOfWork,
		activities:  d.Activities,
		memberships: d.Memberships,
		stats:       d.Stats,
		goals:       d.Goals,
		boards:      d.Boards,
		earned:      d.Achievements,
		cache:       d.Cache,
		publisher:   d.Publisher,
		streaks:     d.Streaks,
		clock:       d.Clock,
		log:         d.Logger,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// POST-COMMIT HELPERS
// Everything below runs after the mutation transaction committed. Failures
// here are logged and swallowed: the committed totals are the source of
// truth and stale caches or missed detections heal on the next request.
// ══════════════════════════════════════════════════════════════════════════════

// invalidateAfterMutation drops every cached view the mutation may have
// made stale: the user's stats, each touched team's progress and board,
// and the global boards.
func (s *Service) invalidateAfterMutation(ctx context.Context, userID shared.UserID, teamIDs []shared.TeamID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		s.log.Warn("cache invalidation failed", logger.UserID(userID.String()), logger.Err(err))
	}
	for _, teamID := range teamIDs {
		if err := s.cache.InvalidateTeam(ctx, teamID); err != nil {
			s.log.Warn("cache invalidation failed", logger.TeamID(teamID.String()), logger.Err(err))
		}
	}
	if err := s.cache.InvalidateGlobal(ctx); err != nil {
		s.log.Warn("cache invalidation failed", logger.Err(err))
	}
}

// detectAchievements evaluates the full catalog against the user's fresh
// aggregate and awards anything newly met. Duplicate awards are benign.
// A non-zero occurredAt marks the check as activity-triggered and feeds
// the hour-of-day criteria; backfill checks pass the zero time.
func (s *Service) detectAchievements(ctx context.Context, userID shared.UserID, teamID shared.TeamID, activityID shared.ActivityID, occurredAt time.Time) []achievement.UserAchievement {
	facts, err := s.collectFacts(ctx, userID)
	if err != nil {
		s.log.Warn("achievement detection skipped", logger.UserID(userID.String()), logger.Err(err))
		return nil
	}
	if !occurredAt.IsZero() {
		facts.ActivityHour = occurredAt.In(s.streaks.Location()).Hour()
		facts.HasActivityHour = true
	}

	var awarded []achievement.UserAchievement
	for _, def := range achievement.Catalog() {
		if !def.Met(facts) {
			continue
		}
		ua := &achievement.UserAchievement{
			UserID:        userID,
			AchievementID: def.ID,
			EarnedAt:      s.clock.Now(),
			TeamID:        teamID,
			ActivityID:    activityID,
		}
		err := s.earned.Award(ctx, ua)
		switch {
		case err == nil:
			awarded = append(awarded, *ua)
			s.publish(shared.NewAchievementEarnedEvent(userID.String(), def.ID.String()).
				WithContext(teamID.String(), activityID.String()))
		case shared.IsAlreadyEarned(err):
			// Already on the shelf.
		default:
			s.log.Warn("achievement award failed", logger.UserID(userID.String()), logger.Err(err))
		}
	}
	return awarded
}

// collectFacts snapshots the aggregate inputs of criterion evaluation.
func (s *Service) collectFacts(ctx context.Context, userID shared.UserID) (achievement.Facts, error) {
	us, err := s.stats.GetByUser(ctx, userID)
	if err != nil {
		return achievement.Facts{}, err
	}
	teamCount, err := s.memberships.ActiveTeamCount(ctx, userID)
	if err != nil {
		return achievement.Facts{}, err
	}
	return achievement.Facts{
		TotalActivities: us.TotalActivities,
		TotalDistance:   us.TotalDistance,
		TotalDuration:   us.TotalDuration,
		LongestStreak:   us.LongestStreak,
		TeamCount:       teamCount,
	}, nil
}

// publish emits a domain event, dropping it when no publisher is wired.
func (s *Service) publish(event shared.Event) {
	if s.publisher == nil || event == nil {
		return
	}
	_ = s.publisher.Publish(event)
}

// requireMembership verifies the user belongs to every listed team.
func (s *Service) requireMembership(ctx context.Context, userID shared.UserID, teamIDs []shared.TeamID) error {
	for _, teamID := range teamIDs {
		ok, err := s.memberships.IsActiveMember(ctx, userID, teamID)
		if err != nil {
			return shared.WrapError("aggregation", "Membership", shared.ErrPersistence, "membership lookup failed", err)
		}
		if !ok {
			return shared.ErrNotTeamMember
		}
	}
	return nil
}
