// Package timeutil provides location-aware calendar day utilities.
// Streak math and day bucketing depend on local calendar days, not on
// 24-hour offsets, so everything here works through AddDate and
// time.Location rather than raw duration arithmetic.
// No external dependencies - uses only standard library.
package timeutil

import (
	"time"
)

// FormatDate is the standard date format (YYYY-MM-DD).
const FormatDate = "2006-01-02"

// LoadLocation resolves an IANA timezone name. An empty name falls back
// to UTC.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

// DayKey returns the calendar-day key (YYYY-MM-DD) for t in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(FormatDate)
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// StartOfWeek returns Monday midnight of t's week in loc.
func StartOfWeek(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	weekday := int(local.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return StartOfDay(local.AddDate(0, 0, -(weekday-1)), loc)
}

// StartOfMonth returns the first day of t's month, midnight in loc.
func StartOfMonth(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
}

// IsSameDay checks if two times fall on the same calendar day in loc.
func IsSameDay(a, b time.Time, loc *time.Location) bool {
	la, lb := a.In(loc), b.In(loc)
	return la.Year() == lb.Year() && la.YearDay() == lb.YearDay()
}

// IsNextDay reports whether b is exactly the calendar day after a.
// AddDate handles DST transitions, which a 24h comparison would not.
func IsNextDay(a, b time.Time, loc *time.Location) bool {
	return StartOfDay(a, loc).AddDate(0, 0, 1).Equal(StartOfDay(b, loc))
}

// DaysBetween returns the number of calendar days between two times in
// loc, always non-negative.
func DaysBetween(a, b time.Time, loc *time.Location) int {
	da := StartOfDay(a, loc)
	db := StartOfDay(b, loc)
	if db.Before(da) {
		da, db = db, da
	}
	days := 0
	for cursor := da; cursor.Before(db); cursor = cursor.AddDate(0, 0, 1) {
		days++
	}
	return days
}
