package stats

import (
	"sort"
	"time"

	"github.com/stridehub/stride-challenge-hub/pkg/timeutil"
)

// StreakResult holds the outcome of a streak recomputation.
// LongestStreak is always >= CurrentStreak.
type StreakResult struct {
	CurrentStreak int
	LongestStreak int
}

// StreakCalculator derives consecutive-day streaks from the set of days on
// which a user logged activity. It is pure: callers pass every activity day
// plus "today", and the whole streak state is re-derived on each create.
type StreakCalculator struct {
	loc *time.Location
}

// NewStreakCalculator creates a calculator that resolves day boundaries in
// the given location. A nil location falls back to UTC.
func NewStreakCalculator(loc *time.Location) *StreakCalculator {
	if loc == nil {
		loc = time.UTC
	}
	return &StreakCalculator{loc: loc}
}

// Location returns the location used for day boundaries.
func (c *StreakCalculator) Location() *time.Location {
	return c.loc
}

// Compute derives the current and longest streak from the given activity
// timestamps. Duplicate days are merged; ordering of the input does not
// matter.
//
// The current streak walks backward from today, or from yesterday when
// today has no activity yet: an empty today does not break a run that is
// still extendable. The longest streak scans all runs in the day set and
// also covers the freshly computed current streak.
func (c *StreakCalculator) Compute(activityTimes []time.Time, today time.Time) StreakResult {
	days := c.uniqueDays(activityTimes)
	if len(days) == 0 {
		return StreakResult{}
	}

	current := c.currentStreak(days, today)
	longest := c.longestStreak(days)
	if current > longest {
		longest = current
	}

	return StreakResult{CurrentStreak: current, LongestStreak: longest}
}

// uniqueDays collapses timestamps to distinct local calendar days, midnight
// in the calculator's location.
func (c *StreakCalculator) uniqueDays(times []time.Time) map[string]time.Time {
	days := make(map[string]time.Time, len(times))
	for _, t := range times {
		key := timeutil.DayKey(t, c.loc)
		if _, ok := days[key]; !ok {
			days[key] = timeutil.StartOfDay(t, c.loc)
		}
	}
	return days
}

// currentStreak walks backward from today, counting consecutive days
// present in the set, and stops at the first gap.
func (c *StreakCalculator) currentStreak(days map[string]time.Time, today time.Time) int {
	cursor := today.In(c.loc)

	// No activity today: the streak may still be alive from yesterday.
	if _, ok := days[timeutil.DayKey(cursor, c.loc)]; !ok {
		cursor = cursor.AddDate(0, 0, -1)
	}

	streak := 0
	for {
		if _, ok := days[timeutil.DayKey(cursor, c.loc)]; !ok {
			break
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

// longestStreak finds the longest run of consecutive days anywhere in the
// set.
func (c *StreakCalculator) longestStreak(days map[string]time.Time) int {
	sorted := make([]time.Time, 0, len(days))
	for _, d := range days {
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	longest, run := 0, 0
	var prev time.Time
	for i, d := range sorted {
		if i == 0 || timeutil.IsNextDay(prev, d, c.loc) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		prev = d
	}
	return longest
}
