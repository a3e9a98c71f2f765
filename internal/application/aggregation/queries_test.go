package aggregation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridehub/stride-challenge-hub/internal/domain/achievement"
	"github.com/stridehub/stride-challenge-hub/internal/domain/leaderboard"
	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
	"github.com/stridehub/stride-challenge-hub/internal/domain/stats"
	"github.com/stridehub/stride-challenge-hub/internal/domain/teamgoal"
)

// fakeBoardSource serves fixed rows and counts queries, so tests can tell
// a cache hit from a store read.
type fakeBoardSource struct {
	teamRows   []leaderboard.Row
	globalRows []leaderboard.Row
	teamCalls  int
}

func (f *fakeBoardSource) TeamRows(ctx context.Context, teamID shared.TeamID, since time.Time) ([]leaderboard.Row, error) {
	f.teamCalls++
	return f.teamRows, nil
}

func (f *fakeBoardSource) GlobalRows(ctx context.Context, since time.Time) ([]leaderboard.Row, error) {
	return f.globalRows, nil
}

// cachingBoardCache remembers the last stored board and serves it back,
// mimicking the JSON round-trip with a deep copy.
type cachingBoardCache struct {
	fakeCache
	board *leaderboard.Board
}

func (c *cachingBoardCache) GetBoard(ctx context.Context, scope leaderboard.Scope, teamID shared.TeamID, window shared.Window) (*leaderboard.Board, error) {
	if c.board == nil {
		return nil, nil
	}
	cp := *c.board
	cp.Entries = make([]leaderboard.Entry, len(c.board.Entries))
	copy(cp.Entries, c.board.Entries)
	return &cp, nil
}

func (c *cachingBoardCache) SetBoard(ctx context.Context, teamID shared.TeamID, board *leaderboard.Board) error {
	c.board = board
	return nil
}

func newQueryHarness(source *fakeBoardSource, cache Cache) *harness {
	h := newHarness()
	deps := Deps{
		UnitOfWork: &fakeUnitOfWork{repos: MutationRepos{
			Activities: h.activities,
			Stats:      h.stats,
			Goals:      h.goals,
		}},
		Activities:   h.activities,
		Memberships:  h.memberships,
		Stats:        h.stats,
		Goals:        h.goals,
		Boards:       source,
		Achievements: h.achievements,
		Cache:        cache,
		Publisher:    h.publisher,
		Clock:        shared.FixedClock{Instant: h.now},
	}
	h.service = NewService(deps)
	return h
}

func boardRows() []leaderboard.Row {
	return []leaderboard.Row{
		{UserID: "u1", DisplayName: "alice", Distance: 9000, Activities: 4},
		{UserID: "u2", DisplayName: "bob", Distance: 6000, Activities: 2},
		{UserID: "u3", DisplayName: "carol", Distance: 3000, Activities: 1},
	}
}

func TestGetLeaderboard_TeamScope(t *testing.T) {
	source := &fakeBoardSource{teamRows: boardRows()}
	h := newQueryHarness(source, nil)

	result, err := h.service.GetLeaderboard(context.Background(), GetLeaderboardQuery{
		Scope:    "team",
		TeamID:   "team-1",
		Window:   "week",
		ViewerID: "u2",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalRanked)
	assert.False(t, result.HasMore)
	require.Len(t, result.Entries, 3)
	assert.Equal(t, 1, result.Entries[0].Rank)
	assert.True(t, result.Entries[1].IsCurrent)
}

func TestGetLeaderboard_TeamScopeRequiresTeamID(t *testing.T) {
	h := newQueryHarness(&fakeBoardSource{}, nil)

	_, err := h.service.GetLeaderboard(context.Background(), GetLeaderboardQuery{
		Scope:  "team",
		Window: "week",
	})
	assert.Error(t, err)
}

func TestGetLeaderboard_UnknownScopeAndWindow(t *testing.T) {
	h := newQueryHarness(&fakeBoardSource{}, nil)

	_, err := h.service.GetLeaderboard(context.Background(), GetLeaderboardQuery{Scope: "solar-system"})
	assert.ErrorIs(t, err, shared.ErrInvalidScope)

	_, err = h.service.GetLeaderboard(context.Background(), GetLeaderboardQuery{Scope: "global", Window: "decade"})
	assert.ErrorIs(t, err, shared.ErrInvalidWindow)
}

func TestGetLeaderboard_Pagination(t *testing.T) {
	source := &fakeBoardSource{globalRows: boardRows()}
	h := newQueryHarness(source, nil)

	result, err := h.service.GetLeaderboard(context.Background(), GetLeaderboardQuery{
		Scope:    "global",
		Window:   "all",
		Page:     1,
		PageSize: 2,
	})
	require.NoError(t, err)

	assert.Len(t, result.Entries, 2)
	assert.True(t, result.HasMore)

	result, err = h.service.GetLeaderboard(context.Background(), GetLeaderboardQuery{
		Scope:    "global",
		Window:   "all",
		Page:     2,
		PageSize: 2,
	})
	require.NoError(t, err)

	assert.Len(t, result.Entries, 1)
	assert.False(t, result.HasMore)
}

func TestGetLeaderboard_CacheServesSecondRead(t *testing.T) {
	source := &fakeBoardSource{teamRows: boardRows()}
	cache := &cachingBoardCache{}
	h := newQueryHarness(source, cache)

	q := GetLeaderboardQuery{Scope: "team", TeamID: "team-1", Window: "week", ViewerID: "u1"}

	_, err := h.service.GetLeaderboard(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 1, source.teamCalls)

	// Second read comes from the cache, viewer marks applied per request.
	q.ViewerID = "u3"
	result, err := h.service.GetLeaderboard(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 1, source.teamCalls)

	for _, e := range result.Entries {
		assert.Equal(t, e.UserID == "u3", e.IsCurrent)
	}
}

func TestGetLeaderboard_MinActivitiesFilter(t *testing.T) {
	source := &fakeBoardSource{teamRows: boardRows()}
	cache := &cachingBoardCache{}
	h := newQueryHarness(source, cache)

	q := GetLeaderboardQuery{Scope: "team", TeamID: "team-1", Window: "week"}

	// Unfiltered read ranks everyone and warms the cache.
	result, err := h.service.GetLeaderboard(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalRanked)
	assert.Equal(t, 1, source.teamCalls)

	// A stricter threshold drops the single-activity row. The cached
	// board is unfiltered, so the filtered read goes back to the store
	// and leaves the cache alone.
	q.MinActivities = 2
	result, err = h.service.GetLeaderboard(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalRanked)
	assert.Equal(t, 2, source.teamCalls)
	for _, e := range result.Entries {
		assert.NotEqual(t, shared.UserID("u3"), e.UserID)
	}

	q.MinActivities = 0
	result, err = h.service.GetLeaderboard(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalRanked)
	assert.Equal(t, 2, source.teamCalls, "default threshold is served from the cache")
}

func TestGetUserRank(t *testing.T) {
	source := &fakeBoardSource{globalRows: boardRows()}
	h := newQueryHarness(source, nil)

	ur, err := h.service.GetUserRank(context.Background(), GetLeaderboardQuery{
		Scope:    "global",
		Window:   "week",
		ViewerID: "u2",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, ur.Entry.Rank)
	assert.Equal(t, 3, ur.TotalRanked)
	assert.InDelta(t, 3000.0, ur.GapToBetter, 0.001)
	assert.InDelta(t, 3000.0, ur.LeadOverNext, 0.001)

	_, err = h.service.GetUserRank(context.Background(), GetLeaderboardQuery{
		Scope:    "global",
		Window:   "week",
		ViewerID: "stranger",
	})
	assert.ErrorIs(t, err, shared.ErrUserNotRanked)
}

func TestGetUserStats_View(t *testing.T) {
	h := newHarness()
	h.memberships.add("user-1", "team-1")

	_, err := h.service.CreateActivity(context.Background(), h.createCmd())
	require.NoError(t, err)

	view, err := h.service.GetUserStats(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, 5000.0, view.TotalDistance)
	assert.Equal(t, int64(1), view.TotalActivities)
	assert.Equal(t, 1, view.CurrentStreak)
	// The activity occurred "now", so it lands in both rolling windows.
	assert.Equal(t, 5000.0, view.WeekDistance)
	assert.Equal(t, 5000.0, view.MonthDistance)
}

func TestGetTeamProgress_MemberOnly(t *testing.T) {
	h := newHarness()
	h.memberships.add("user-1", "team-1")

	goal, err := teamgoal.NewGoal("goal-1", "team-1", "March", 100_000, h.now.AddDate(0, 0, -10))
	require.NoError(t, err)
	require.NoError(t, h.goals.CreateGoal(context.Background(), goal))

	_, err = h.service.GetTeamProgress(context.Background(), "outsider", "team-1")
	assert.ErrorIs(t, err, shared.ErrNotTeamMember)

	_, err = h.service.CreateActivity(context.Background(), h.createCmd())
	require.NoError(t, err)

	view, err := h.service.GetTeamProgress(context.Background(), "user-1", "team-1")
	require.NoError(t, err)

	assert.Equal(t, teamgoal.GoalID("goal-1"), view.GoalID)
	assert.Equal(t, 5000.0, view.TotalDistance)
	assert.InDelta(t, 5.0, view.PercentComplete, 0.001)
	assert.False(t, view.IsComplete)
	require.NotNil(t, view.ProjectedCompletion)
}

func TestGetActivity_PrivateHiddenFromOthers(t *testing.T) {
	h := newHarness()
	h.memberships.add("user-1", "team-1")

	cmd := h.createCmd()
	cmd.IsPrivate = true
	created, err := h.service.CreateActivity(context.Background(), cmd)
	require.NoError(t, err)

	// Owner sees it.
	act, err := h.service.GetActivity(context.Background(), "user-1", created.Activity.ID.String())
	require.NoError(t, err)
	assert.True(t, act.IsPrivate)

	// Anyone else gets not-found, not forbidden.
	_, err = h.service.GetActivity(context.Background(), "other", created.Activity.ID.String())
	assert.ErrorIs(t, err, shared.ErrActivityNotFound)
}

func TestGetUserAchievements_AnnotatesCatalog(t *testing.T) {
	h := newHarness()
	h.memberships.add("user-1", "team-1")

	_, err := h.service.CreateActivity(context.Background(), h.createCmd())
	require.NoError(t, err)

	statuses, err := h.service.GetUserAchievements(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, statuses, len(achievement.Catalog()))

	byID := make(map[achievement.AchievementID]AchievementStatus)
	for _, st := range statuses {
		byID[st.Definition.ID] = st
	}

	assert.True(t, byID["first-steps"].Earned)
	assert.InDelta(t, 100.0, byID["first-steps"].ProgressPercent, 0.001)

	tenStrong := byID["ten-strong"]
	assert.False(t, tenStrong.Earned)
	assert.InDelta(t, 10.0, tenStrong.ProgressPercent, 0.001)
}

func TestCheckUserAchievements_SecondCallAwardsNothing(t *testing.T) {
	h := newHarness()
	h.memberships.add("user-1", "team-1")

	// Seed an aggregate that satisfies several catalog entries at once.
	require.NoError(t, h.stats.ApplyDelta(context.Background(), "user-1", stats.Delta{
		Distance:   150_000,
		Duration:   40_000,
		Activities: 12,
	}, h.now))

	first, err := h.service.CheckUserAchievements(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, first)

	// Everything met is now on the shelf; a re-run awards nothing new.
	second, err := h.service.CheckUserAchievements(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestListActivities_PrivacyFilter(t *testing.T) {
	h := newHarness()
	h.memberships.add("user-1", "team-1")

	public := h.createCmd()
	_, err := h.service.CreateActivity(context.Background(), public)
	require.NoError(t, err)

	private := h.createCmd()
	private.IsPrivate = true
	_, err = h.service.CreateActivity(context.Background(), private)
	require.NoError(t, err)

	// Owner sees both.
	own, err := h.service.ListActivities(context.Background(), ListActivitiesQuery{ViewerID: "user-1"})
	require.NoError(t, err)
	assert.Len(t, own.Activities, 2)

	// A different viewer sees public only.
	other, err := h.service.ListActivities(context.Background(), ListActivitiesQuery{ViewerID: "viewer-2", UserID: "user-1"})
	require.NoError(t, err)
	assert.Len(t, other.Activities, 1)
}
