package teamgoal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
)

func TestNewGoal_Validation(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	goal, err := NewGoal("g1", "t1", "Spring March", 500_000, start)
	require.NoError(t, err)
	assert.True(t, goal.Active)
	assert.Equal(t, 500_000.0, goal.TargetDistance)

	_, err = NewGoal("g1", "t1", "bad", 0, start)
	assert.ErrorIs(t, err, shared.ErrInvalidTargetDist)

	_, err = NewGoal("g1", "t1", "bad", -10, start)
	assert.ErrorIs(t, err, shared.ErrInvalidTargetDist)

	_, err = NewGoal("", "t1", "no id", 100, start)
	assert.Error(t, err)
}

func TestPercentComplete(t *testing.T) {
	assert.InDelta(t, 50.0, PercentComplete(250, 500), 0.001)
	assert.InDelta(t, 0.0, PercentComplete(0, 500), 0.001)

	// Clamped at 100 even when totals overshoot.
	assert.InDelta(t, 100.0, PercentComplete(900, 500), 0.001)

	// Non-positive target yields 0, not a division error.
	assert.InDelta(t, 0.0, PercentComplete(100, 0), 0.001)
	assert.InDelta(t, 0.0, PercentComplete(100, -5), 0.001)
}

func TestProgress_IsComplete(t *testing.T) {
	goal := &Goal{ID: "g1", TeamID: "t1", TargetDistance: 1000}

	assert.False(t, (&Progress{TotalDistance: 999}).IsComplete(goal))
	assert.True(t, (&Progress{TotalDistance: 1000}).IsComplete(goal))
	assert.True(t, (&Progress{TotalDistance: 1500}).IsComplete(goal))
}

func TestProgress_AverageDailyDistance(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	goal := &Goal{ID: "g1", TeamID: "t1", TargetDistance: 100_000, StartDate: start}
	p := &Progress{TotalDistance: 30_000}

	now := start.AddDate(0, 0, 10)
	assert.InDelta(t, 3000.0, p.AverageDailyDistance(goal, now), 0.001)

	// A goal started today still projects: days floored at one.
	assert.InDelta(t, 30_000.0, p.AverageDailyDistance(goal, start.Add(2*time.Hour)), 0.001)
}

func TestProgress_ProjectedCompletion(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	goal := &Goal{ID: "g1", TeamID: "t1", TargetDistance: 100_000, StartDate: start}
	now := start.AddDate(0, 0, 10)

	// 3000 m/day pace, 70000 m remaining -> ceil(23.33) = 24 days out.
	p := &Progress{TotalDistance: 30_000}
	projected, ok := p.ProjectedCompletion(goal, now)
	require.True(t, ok)
	assert.Equal(t, now.AddDate(0, 0, 24), projected)

	// Already complete: projection is "now".
	done := &Progress{TotalDistance: 100_000}
	projected, ok = done.ProjectedCompletion(goal, now)
	require.True(t, ok)
	assert.Equal(t, now, projected)

	// No pace yet: no projection.
	idle := &Progress{}
	_, ok = idle.ProjectedCompletion(goal, now)
	assert.False(t, ok)
}

func TestTopContributors(t *testing.T) {
	early := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	late := time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC)

	contributors := []Contributor{
		{UserID: "u1", Distance: 1000, FirstActivityAt: late},
		{UserID: "u2", Distance: 3000, FirstActivityAt: late},
		{UserID: "u3", Distance: 1000, FirstActivityAt: early},
		{UserID: "u4", Distance: 2000, FirstActivityAt: early},
	}

	top := TopContributors(contributors, 3)
	require.Len(t, top, 3)

	assert.Equal(t, shared.UserID("u2"), top[0].UserID)
	assert.Equal(t, shared.UserID("u4"), top[1].UserID)
	// 1000m tie: earliest first activity wins.
	assert.Equal(t, shared.UserID("u3"), top[2].UserID)

	// Input order untouched.
	assert.Equal(t, shared.UserID("u1"), contributors[0].UserID)
}

func TestTopContributors_DefaultCount(t *testing.T) {
	contributors := make([]Contributor, 8)
	for i := range contributors {
		contributors[i] = Contributor{UserID: shared.UserID(string(rune('a' + i))), Distance: float64(i)}
	}

	top := TopContributors(contributors, 0)
	assert.Len(t, top, TopContributorCount)
}
