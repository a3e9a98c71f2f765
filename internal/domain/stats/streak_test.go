package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(yr int, mo time.Month, d, hour int) time.Time {
	return time.Date(yr, mo, d, hour, 0, 0, 0, time.UTC)
}

func TestStreakCalculator_Empty(t *testing.T) {
	calc := NewStreakCalculator(nil)
	result := calc.Compute(nil, day(2026, 3, 10, 12))

	assert.Equal(t, 0, result.CurrentStreak)
	assert.Equal(t, 0, result.LongestStreak)
}

func TestStreakCalculator_ConsecutiveDays(t *testing.T) {
	calc := NewStreakCalculator(nil)
	times := []time.Time{
		day(2026, 3, 8, 9),
		day(2026, 3, 9, 18),
		day(2026, 3, 10, 7),
	}

	result := calc.Compute(times, day(2026, 3, 10, 12))

	assert.Equal(t, 3, result.CurrentStreak)
	assert.Equal(t, 3, result.LongestStreak)
}

func TestStreakCalculator_MultipleActivitiesSameDay(t *testing.T) {
	calc := NewStreakCalculator(nil)
	times := []time.Time{
		day(2026, 3, 9, 8),
		day(2026, 3, 9, 20),
		day(2026, 3, 10, 7),
	}

	result := calc.Compute(times, day(2026, 3, 10, 12))

	assert.Equal(t, 2, result.CurrentStreak)
	assert.Equal(t, 2, result.LongestStreak)
}

func TestStreakCalculator_GapBreaksCurrentStreak(t *testing.T) {
	calc := NewStreakCalculator(nil)
	times := []time.Time{
		// Old 4-day run.
		day(2026, 3, 1, 10),
		day(2026, 3, 2, 10),
		day(2026, 3, 3, 10),
		day(2026, 3, 4, 10),
		// Gap, then a fresh 2-day run.
		day(2026, 3, 9, 10),
		day(2026, 3, 10, 10),
	}

	result := calc.Compute(times, day(2026, 3, 10, 12))

	assert.Equal(t, 2, result.CurrentStreak)
	assert.Equal(t, 4, result.LongestStreak)
}

func TestStreakCalculator_NoActivityTodayKeepsStreakAlive(t *testing.T) {
	calc := NewStreakCalculator(nil)
	times := []time.Time{
		day(2026, 3, 8, 10),
		day(2026, 3, 9, 10),
	}

	// Today is the 10th with no activity yet; the run from the 8th-9th
	// still counts.
	result := calc.Compute(times, day(2026, 3, 10, 6))

	assert.Equal(t, 2, result.CurrentStreak)
}

func TestStreakCalculator_DayOldGapZeroesCurrentStreak(t *testing.T) {
	calc := NewStreakCalculator(nil)
	times := []time.Time{
		day(2026, 3, 5, 10),
		day(2026, 3, 6, 10),
	}

	result := calc.Compute(times, day(2026, 3, 10, 12))

	assert.Equal(t, 0, result.CurrentStreak)
	assert.Equal(t, 2, result.LongestStreak)
}

func TestStreakCalculator_TimezoneChangesDayBucket(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	calc := NewStreakCalculator(loc)

	// 22:00 UTC on the 9th is already the 10th in UTC+5.
	times := []time.Time{day(2026, 3, 9, 22)}
	result := calc.Compute(times, day(2026, 3, 10, 6))

	assert.Equal(t, 1, result.CurrentStreak)

	utcCalc := NewStreakCalculator(time.UTC)
	utcResult := utcCalc.Compute(times, day(2026, 3, 10, 6))

	// In UTC the activity landed yesterday, so the streak is still alive
	// but anchored a day earlier.
	assert.Equal(t, 1, utcResult.CurrentStreak)
}

func TestStreakCalculator_UnorderedInput(t *testing.T) {
	calc := NewStreakCalculator(nil)
	times := []time.Time{
		day(2026, 3, 10, 7),
		day(2026, 3, 8, 9),
		day(2026, 3, 9, 18),
	}

	result := calc.Compute(times, day(2026, 3, 10, 12))

	assert.Equal(t, 3, result.CurrentStreak)
}

func TestStreakCalculator_CurrentCoversLongest(t *testing.T) {
	calc := NewStreakCalculator(nil)
	times := []time.Time{
		day(2026, 3, 9, 10),
		day(2026, 3, 10, 10),
	}

	result := calc.Compute(times, day(2026, 3, 10, 12))

	assert.GreaterOrEqual(t, result.LongestStreak, result.CurrentStreak)
}
