package aggregation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridehub/stride-challenge-hub/internal/domain/achievement"
	"github.com/stridehub/stride-challenge-hub/internal/domain/activity"
	"github.com/stridehub/stride-challenge-hub/internal/domain/leaderboard"
	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
	"github.com/stridehub/stride-challenge-hub/internal/domain/stats"
	"github.com/stridehub/stride-challenge-hub/internal/domain/teamgoal"
)

// ══════════════════════════════════════════════════════════════════════════════
// FAKES
// ══════════════════════════════════════════════════════════════════════════════

type fakeUnitOfWork struct {
	repos MutationRepos
	err   error
}

func (f *fakeUnitOfWork) Mutate(ctx context.Context, fn func(ctx context.Context, repos MutationRepos) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(ctx, f.repos)
}

type fakeActivityRepo struct {
	byID map[shared.ActivityID]*activity.Activity
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{byID: make(map[shared.ActivityID]*activity.Activity)}
}

func (f *fakeActivityRepo) Create(ctx context.Context, a *activity.Activity) error {
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeActivityRepo) GetByID(ctx context.Context, id shared.ActivityID) (*activity.Activity, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, shared.ErrActivityNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeActivityRepo) Update(ctx context.Context, a *activity.Activity) error {
	if _, ok := f.byID[a.ID]; !ok {
		return shared.ErrActivityNotFound
	}
	cp := *a
	f.byID[a.ID] = &cp
	return nil
}

func (f *fakeActivityRepo) Delete(ctx context.Context, id shared.ActivityID) error {
	if _, ok := f.byID[id]; !ok {
		return shared.ErrActivityNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeActivityRepo) List(ctx context.Context, filter activity.ListFilter, page shared.Pagination) ([]*activity.Activity, error) {
	var out []*activity.Activity
	for _, a := range f.byID {
		if a.UserID != filter.UserID {
			continue
		}
		if a.IsPrivate && !filter.IncludePrivate {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeActivityRepo) ActivityDays(ctx context.Context, userID shared.UserID, loc *time.Location) ([]time.Time, error) {
	seen := make(map[string]time.Time)
	for _, a := range f.byID {
		if a.UserID != userID {
			continue
		}
		local := a.OccurredAt.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		seen[day.Format("2006-01-02")] = day
	}
	out := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeActivityRepo) SumForUser(ctx context.Context, userID shared.UserID, since time.Time) (float64, int64, int64, error) {
	var distance float64
	var duration, count int64
	for _, a := range f.byID {
		if a.UserID != userID || a.OccurredAt.Before(since) {
			continue
		}
		distance += a.Distance.Float64()
		duration += a.Duration.Int64()
		count++
	}
	return distance, duration, count, nil
}

type fakeStatsRepo struct {
	byUser          map[shared.UserID]*stats.UserStats
	setStreaksCalls int
	setStreaksErr   error
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{byUser: make(map[shared.UserID]*stats.UserStats)}
}

func (f *fakeStatsRepo) ApplyDelta(ctx context.Context, userID shared.UserID, delta stats.Delta, lastActivityAt time.Time) error {
	us, ok := f.byUser[userID]
	if !ok {
		us = stats.NewUserStats(userID)
		f.byUser[userID] = us
	}
	us.TotalDistance += delta.Distance
	us.TotalDuration += delta.Duration
	us.TotalActivities += delta.Activities
	if lastActivityAt.After(us.LastActivityAt) {
		us.LastActivityAt = lastActivityAt
	}
	return nil
}

func (f *fakeStatsRepo) GetByUser(ctx context.Context, userID shared.UserID) (*stats.UserStats, error) {
	if us, ok := f.byUser[userID]; ok {
		cp := *us
		return &cp, nil
	}
	return stats.NewUserStats(userID), nil
}

func (f *fakeStatsRepo) SetStreaks(ctx context.Context, userID shared.UserID, result stats.StreakResult) error {
	f.setStreaksCalls++
	if f.setStreaksErr != nil {
		return f.setStreaksErr
	}
	us, ok := f.byUser[userID]
	if !ok {
		us = stats.NewUserStats(userID)
		f.byUser[userID] = us
	}
	us.CurrentStreak = result.CurrentStreak
	us.LongestStreak = result.LongestStreak
	return nil
}

type fakeMemberships struct {
	members map[string]bool // "user|team"
}

func newFakeMemberships() *fakeMemberships {
	return &fakeMemberships{members: make(map[string]bool)}
}

func (f *fakeMemberships) add(userID shared.UserID, teamID shared.TeamID) {
	f.members[userID.String()+"|"+teamID.String()] = true
}

func (f *fakeMemberships) IsActiveMember(ctx context.Context, userID shared.UserID, teamID shared.TeamID) (bool, error) {
	return f.members[userID.String()+"|"+teamID.String()], nil
}

func (f *fakeMemberships) ActiveTeamCount(ctx context.Context, userID shared.UserID) (int, error) {
	count := 0
	for key, ok := range f.members {
		if ok && strings.HasPrefix(key, userID.String()+"|") {
			count++
		}
	}
	return count, nil
}

func (f *fakeMemberships) TeamMembers(ctx context.Context, teamID shared.TeamID) ([]activity.Member, error) {
	return nil, nil
}

type fakeGoalRepo struct {
	goals    map[shared.TeamID]*teamgoal.Goal
	progress map[teamgoal.GoalID]*teamgoal.Progress
}

func newFakeGoalRepo() *fakeGoalRepo {
	return &fakeGoalRepo{
		goals:    make(map[shared.TeamID]*teamgoal.Goal),
		progress: make(map[teamgoal.GoalID]*teamgoal.Progress),
	}
}

func (f *fakeGoalRepo) CreateGoal(ctx context.Context, g *teamgoal.Goal) error {
	cp := *g
	f.goals[g.TeamID] = &cp
	return nil
}

func (f *fakeGoalRepo) ActiveGoal(ctx context.Context, teamID shared.TeamID) (*teamgoal.Goal, error) {
	g, ok := f.goals[teamID]
	if !ok {
		return nil, shared.ErrGoalNotFound
	}
	cp := *g
	return &cp, nil
}

func (f *fakeGoalRepo) ApplyDelta(ctx context.Context, goalID teamgoal.GoalID, distance float64, duration, activities int64, lastActivityAt time.Time) (*teamgoal.Progress, error) {
	p, ok := f.progress[goalID]
	if !ok {
		p = &teamgoal.Progress{GoalID: goalID}
		f.progress[goalID] = p
	}
	p.TotalDistance += distance
	p.TotalDuration += duration
	p.TotalActivities += activities
	if lastActivityAt.After(p.LastActivityAt) {
		p.LastActivityAt = lastActivityAt
	}
	cp := *p
	return &cp, nil
}

func (f *fakeGoalRepo) GetProgress(ctx context.Context, goalID teamgoal.GoalID) (*teamgoal.Progress, error) {
	if p, ok := f.progress[goalID]; ok {
		cp := *p
		return &cp, nil
	}
	return &teamgoal.Progress{GoalID: goalID}, nil
}

func (f *fakeGoalRepo) Contributors(ctx context.Context, goalID teamgoal.GoalID) ([]teamgoal.Contributor, error) {
	return nil, nil
}

type fakeAchievementRepo struct {
	awarded map[string]bool // "user|achievement"
}

func newFakeAchievementRepo() *fakeAchievementRepo {
	return &fakeAchievementRepo{awarded: make(map[string]bool)}
}

func (f *fakeAchievementRepo) key(userID shared.UserID, id achievement.AchievementID) string {
	return userID.String() + "|" + id.String()
}

func (f *fakeAchievementRepo) Award(ctx context.Context, ua *achievement.UserAchievement) error {
	k := f.key(ua.UserID, ua.AchievementID)
	if f.awarded[k] {
		return shared.ErrAlreadyEarned
	}
	f.awarded[k] = true
	return nil
}

func (f *fakeAchievementRepo) ListByUser(ctx context.Context, userID shared.UserID) ([]*achievement.UserAchievement, error) {
	var out []*achievement.UserAchievement
	prefix := userID.String() + "|"
	for k := range f.awarded {
		if strings.HasPrefix(k, prefix) {
			out = append(out, &achievement.UserAchievement{
				UserID:        userID,
				AchievementID: achievement.AchievementID(strings.TrimPrefix(k, prefix)),
			})
		}
	}
	return out, nil
}

func (f *fakeAchievementRepo) Has(ctx context.Context, userID shared.UserID, id achievement.AchievementID) (bool, error) {
	return f.awarded[f.key(userID, id)], nil
}

type fakeCache struct {
	invalidatedUsers  int
	invalidatedTeams  int
	invalidatedGlobal int
	failInvalidation  bool
}

var errCacheDown = errors.New("cache down")

func (f *fakeCache) GetUserStats(ctx context.Context, userID shared.UserID) (*UserStatsView, error) {
	return nil, nil
}
func (f *fakeCache) SetUserStats(ctx context.Context, view *UserStatsView) error { return nil }
func (f *fakeCache) GetTeamProgress(ctx context.Context, teamID shared.TeamID) (*TeamProgressView, error) {
	return nil, nil
}
func (f *fakeCache) SetTeamProgress(ctx context.Context, view *TeamProgressView) error { return nil }
func (f *fakeCache) GetBoard(ctx context.Context, scope leaderboard.Scope, teamID shared.TeamID, window shared.Window) (*leaderboard.Board, error) {
	return nil, nil
}
func (f *fakeCache) SetBoard(ctx context.Context, teamID shared.TeamID, board *leaderboard.Board) error {
	return nil
}

func (f *fakeCache) InvalidateUser(ctx context.Context, userID shared.UserID) error {
	if f.failInvalidation {
		return errCacheDown
	}
	f.invalidatedUsers++
	return nil
}

func (f *fakeCache) InvalidateTeam(ctx context.Context, teamID shared.TeamID) error {
	if f.failInvalidation {
		return errCacheDown
	}
	f.invalidatedTeams++
	return nil
}

func (f *fakeCache) InvalidateGlobal(ctx context.Context) error {
	if f.failInvalidation {
		return errCacheDown
	}
	f.invalidatedGlobal++
	return nil
}

type fakePublisher struct {
	events []shared.Event
}

func (f *fakePublisher) Publish(event shared.Event) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) typesSeen() map[shared.EventType]int {
	out := make(map[shared.EventType]int)
	for _, e := range f.events {
		out[e.EventType()]++
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// HARNESS
// ══════════════════════════════════════════════════════════════════════════════

type harness struct {
	service      *Service
	activities   *fakeActivityRepo
	stats        *fakeStatsRepo
	memberships  *fakeMemberships
	goals        *fakeGoalRepo
	achievements *fakeAchievementRepo
	cache        *fakeCache
	publisher    *fakePublisher
	now          time.Time
}

func newHarness() *harness {
	h := &harness{
		activities:   newFakeActivityRepo(),
		stats:        newFakeStatsRepo(),
		memberships:  newFakeMemberships(),
		goals:        newFakeGoalRepo(),
		achievements: newFakeAchievementRepo(),
		cache:        &fakeCache{},
		publisher:    &fakePublisher{},
		now:          time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}

	uow := &fakeUnitOfWork{repos: MutationRepos{
		Activities: h.activities,
		Stats:      h.stats,
		Goals:      h.goals,
	}}

	h.service = NewService(Deps{
		UnitOfWork:   uow,
		Activities:   h.activities,
		Memberships:  h.memberships,
		Stats:        h.stats,
		Goals:        h.goals,
		Achievements: h.achievements,
		Cache:        h.cache,
		Publisher:    h.publisher,
		Clock:        shared.FixedClock{Instant: h.now},
	})
	return h
}

func (h *harness) createCmd() CreateActivityCommand {
	return CreateActivityCommand{
		UserID:   "user-1",
		TeamIDs:  []string{"team-1"},
		Distance: 5000,
		Duration: 3600,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CREATE
// ══════════════════════════════════════════════════════════════════════════════

func TestCreateActivity_HappyPath(t *testing.T) {
	h := newHarness()
	h.memberships.add("user-1", "team-1")

	result, err := h.service.CreateActivity(context.Background(), h.createCmd())
	require.NoError(t, err)
	require.NotNil(t, result.Activity)

	us, err := h.stats.GetByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 5000.0, us.TotalDistance)
	assert.Equal(t, int64(3600), us.TotalDuration)
	assert.Equal(t, int64(1), us.TotalActivities)

	// First activity of the day starts a 1-day streak.
	assert.Equal(t, 1, result.Streak.CurrentStreak)
	assert.True(t, result.StreakExtended)

	// First activity earns "first-steps".
	ids := make([]achievement.AchievementID, 0, len(result.NewAchievements))
	for _, ua := range result.NewAchievements {
		ids = append(ids, ua.AchievementID)
	}
	assert.Contains(t, ids, achievement.AchievementID("first-steps"))

	// Caches dropped for user, team and global boards.
	assert.Equal(t, 1, h.cache.invalidatedUsers)
	assert.Equal(t, 1, h.cache.invalidatedTeams)
	assert.Equal(t, 1, h.cache.invalidatedGlobal)

	seen := h.publisher.typesSeen()
	assert.Equal(t, 1, seen[shared.EventActivityCreated])
	assert.Equal(t, 1, seen[shared.EventStreakExtended])
}

func TestCreateActivity_RejectsNonMember(t *testing.T) {
	h := newHarness()

	_, err := h.service.CreateActivity(context.Background(), h.createCmd())
	assert.ErrorIs(t, err, shared.ErrNotTeamMember)
}

func TestCreateActivity_Validation(t *testing.T) {
	h := newHarness()

	cmd := h.createCmd()
	cmd.TeamIDs = nil
	_, err := h.service.CreateActivity(context.Background(), cmd)
	assert.ErrorIs(t, err, shared.ErrNoTeams)

	cmd = h.createCmd()
	cmd.Distance = 0
	_, err = h.service.CreateActivity(context.Background(), cmd)
	assert.ErrorIs(t, err, shared.ErrInvalidDistance)

	cmd = h.createCmd()
	cmd.Duration = -5
	_, err = h.service.CreateActivity(context.Background(), cmd)
	assert.ErrorIs(t, err, shared.ErrInvalidDuration)

	cmd = h.createCmd()
	cmd.Source = "carrier-pigeon"
	_, err = h.service.CreateActivity(context.Background(), cmd)
	assert.Error(t, err)
}

func TestCreateActivity_GoalCrossing(t *testing.T) {
	h := newHarness()
	h.memberships.add("user-1", "team-1")

	goal, err := teamgoal.NewGoal("goal-1", "team-1", "March", 8000, h.now.AddDate(0, 0, -5))
	require.NoError(t, err)
	require.NoError(t, h.goals.CreateGoal(context.Background(), goal))

	// First 5000m: goal at 62.5%, not crossed.
	result, err := h.service.CreateActivity(context.Background(), h.createCmd())
	require.NoError(t, err)
	require.Len(t, result.TeamUpdates, 1)
	assert.False(t, result.TeamUpdates[0].GoalCompleted)
	assert.InDelta(t, 62.5, result.TeamUpdates[0].PercentComplete, 0.001)

	// Second 5000m crosses the 8000m target exactly once.
	result, err = h.service.CreateActivity(context.Background(), h.createCmd())
	require.NoError(t, err)
	require.Len(t, result.TeamUpdates, 1)
	assert.True(t, result.TeamUpdates[0].GoalCompleted)
	assert.InDelta(t, 100.0, result.TeamUpdates[0].PercentComplete, 0.001)
	assert.Equal(t, 1, h.publisher.typesSeen()[shared.EventGoalCompleted])

	// Third create: already complete, no second completion event.
	_, err = h.service.CreateActivity(context.Background(), h.createCmd())
	require.NoError(t, err)
	assert.Equal(t, 1, h.publisher.typesSeen()[shared.EventGoalCompleted])
}

func TestCreateActivity_TeamWithoutGoalIsSkipped(t *testing.T) {
	h := newHarness()
	h.memberships.add("user-1", "team-1")

	result, err := h.service.CreateActivity(context.Background(), h.createCmd())
	require.NoError(t, err)
	assert.Empty(t, result.TeamUpdates)
}

func TestCreateActivity_DuplicateAchievementIsBenign(t *testing.T) {
	h := newHarness()
	h.memberships.add("user-1", "team-1")

	// Pre-award what the first activity would earn.
	require.NoError(t, h.achievements.Award(context.Background(), &achievement.UserAchievement{
		UserID:        "user-1",
		AchievementID: "first-steps",
	}))

	result, err := h.service.CreateActivity(context.Background(), h.createCmd())
	require.NoError(t, err)

	for _, ua := range result.NewAchievements {
		assert.NotEqual(t, achievement.AchievementID("first-steps"), ua.AchievementID)
	}
}

func TestCreateActivity_StreakWriteFailureFailsMutation(t *testing.T) {
	h := newHarness()
	h.memberships.add("user-1", "team-1")
	h.stats.setStreaksErr = errors.New("streak write refused")

	_, err := h.service.CreateActivity(context.Background(), h.createCmd())
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrPersistence)

	// The streak commits with the totals or not at all; nothing is
	// announced for a mutation that never landed.
	assert.Equal(t, 0, h.publisher.typesSeen()[shared.EventActivityCreated])
	assert.Equal(t, 0, h.publisher.typesSeen()[shared.EventStreakExtended])
}

func TestCreateActivity_EarlyMorningEarnsEarlyBird(t *testing.T) {
	h := newHarness()
	h.memberships.add("user-1", "team-1")

	cmd := h.createCmd()
	cmd.OccurredAt = time.Date(2026, 3, 10, 7, 30, 0, 0, time.UTC)

	result, err := h.service.CreateActivity(context.Background(), cmd)
	require.NoError(t, err)

	ids := make([]achievement.AchievementID, 0, len(result.NewAchievements))
	for _, ua := range result.NewAchievements {
		ids = append(ids, ua.AchievementID)
	}
	assert.Contains(t, ids, achievement.AchievementID("early-bird"))
}

func TestCreateActivity_MiddayDoesNotEarnEarlyBird(t *testing.T) {
	h := newHarness()
	h.memberships.add("user-1", "team-1")

	// createCmd leaves OccurredAt zero, so the activity lands at the
	// harness clock's noon.
	result, err := h.service.CreateActivity(context.Background(), h.createCmd())
	require.NoError(t, err)

	for _, ua := range result.NewAchievements {
		assert.NotEqual(t, achievement.AchievementID("early-bird"), ua.AchievementID)
	}
}

func TestCreateActivity_CacheFailureDoesNotFailMutation(t *testing.T) {
	h := newHarness()
	h.memberships.add("user-1", "team-1")
	h.cache.failInvalidation = true

	_, err := h.service.CreateActivity(context.Background(), h.createCmd())
	assert.NoError(t, err)
}

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE
// ══════════════════════════════════════════════════════════════════════════════

func TestUpdateActivity_RejectsFrozenFields(t *testing.T) {
	h := newHarness()

	d := 9000.0
	_, err := h.service.UpdateActivity(context.Background(), UpdateActivityCommand{
		UserID:     "user-1",
		ActivityID: "act-1",
		Distance:   &d,
	})
	assert.ErrorIs(t, err, shared.ErrImmutableAggregates)

	dur := int64(100)
	_, err = h.service.UpdateActivity(context.Background(), UpdateActivityCommand{
		UserID:     "user-1",
		ActivityID: "act-1",
		Duration:   &dur,
	})
	assert.ErrorIs(t, err, shared.ErrImmutableAggregates)
}

func TestUpdateActivity_NoteAndPrivacy(t *testing.T) {
	h := newHarness()
	h.memberships.add("user-1", "team-1")

	created, err := h.service.CreateActivity(context.Background(), h.createCmd())
	require.NoError(t, err)

	teamsBefore := h.cache.invalidatedTeams

	note := "  morning loop  "
	private := true
	updated, err := h.service.UpdateActivity(context.Background(), UpdateActivityCommand{
		UserID:     "user-1",
		ActivityID: created.Activity.ID.String(),
		Note:       &note,
		IsPrivate:  &private,
	})
	require.NoError(t, err)

	assert.Equal(t, "morning loop", updated.Note)
	assert.True(t, updated.IsPrivate)

	// Totals untouched by an edit.
	us, _ := h.stats.GetByUser(context.Background(), "user-1")
	assert.Equal(t, int64(1), us.TotalActivities)

	// Privacy flip invalidates team views.
	assert.Equal(t, teamsBefore+1, h.cache.invalidatedTeams)

	assert.Equal(t, 1, h.publisher.typesSeen()[shared.EventActivityUpdated])
}

func TestUpdateActivity_RejectsNonOwner(t *testing.T) {
	h := newHarness()
	h.memberships.add("user-1", "team-1")

	created, err := h.service.CreateActivity(context.Background(), h.createCmd())
	require.NoError(t, err)

	note := "not mine"
	_, err = h.service.UpdateActivity(context.Background(), UpdateActivityCommand{
		UserID:     "intruder",
		ActivityID: created.Activity.ID.String(),
		Note:       &note,
	})
	assert.ErrorIs(t, err, shared.ErrActivityNotOwned)
}

// ══════════════════════════════════════════════════════════════════════════════
// DELETE
// ══════════════════════════════════════════════════════════════════════════════

func TestDeleteActivity_ReversesTotalsExactly(t *testing.T) {
	h := newHarness()
	h.memberships.add("user-1", "team-1")

	goal, err := teamgoal.NewGoal("goal-1", "team-1", "March", 100_000, h.now.AddDate(0, 0, -5))
	require.NoError(t, err)
	require.NoError(t, h.goals.CreateGoal(context.Background(), goal))

	created, err := h.service.CreateActivity(context.Background(), h.createCmd())
	require.NoError(t, err)

	_, err = h.service.DeleteActivity(context.Background(), DeleteActivityCommand{
		UserID:     "user-1",
		ActivityID: created.Activity.ID.String(),
	})
	require.NoError(t, err)

	us, _ := h.stats.GetByUser(context.Background(), "user-1")
	assert.Equal(t, 0.0, us.TotalDistance)
	assert.Equal(t, int64(0), us.TotalDuration)
	assert.Equal(t, int64(0), us.TotalActivities)

	progress, _ := h.goals.GetProgress(context.Background(), "goal-1")
	assert.Equal(t, 0.0, progress.TotalDistance)
	assert.Equal(t, int64(0), progress.TotalActivities)

	assert.Equal(t, 1, h.publisher.typesSeen()[shared.EventActivityDeleted])
}

func TestDeleteActivity_DoesNotRecomputeStreak(t *testing.T) {
	h := newHarness()
	h.memberships.add("user-1", "team-1")

	created, err := h.service.CreateActivity(context.Background(), h.createCmd())
	require.NoError(t, err)

	callsAfterCreate := h.stats.setStreaksCalls
	require.Equal(t, 1, callsAfterCreate)

	_, err = h.service.DeleteActivity(context.Background(), DeleteActivityCommand{
		UserID:     "user-1",
		ActivityID: created.Activity.ID.String(),
	})
	require.NoError(t, err)

	// Deletion leaves streak history alone; the next create re-derives it.
	assert.Equal(t, callsAfterCreate, h.stats.setStreaksCalls)
}

func TestDeleteActivity_RejectsNonOwner(t *testing.T) {
	h := newHarness()
	h.memberships.add("user-1", "team-1")

	created, err := h.service.CreateActivity(context.Background(), h.createCmd())
	require.NoError(t, err)

	_, err = h.service.DeleteActivity(context.Background(), DeleteActivityCommand{
		UserID:     "intruder",
		ActivityID: created.Activity.ID.String(),
	})
	assert.ErrorIs(t, err, shared.ErrActivityNotOwned)
}

func TestDeleteActivity_NotFound(t *testing.T) {
	h := newHarness()

	_, err := h.service.DeleteActivity(context.Background(), DeleteActivityCommand{
		UserID:     "user-1",
		ActivityID: "ghost",
	})
	assert.ErrorIs(t, err, shared.ErrActivityNotFound)
}
