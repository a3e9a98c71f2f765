// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"strings"
	"time"
)

// UserID represents a unique user identifier.
type UserID string

// IsValid checks if the user ID is non-empty.
func (u UserID) IsValid() bool {
	return strings.TrimSpace(string(u)) != ""
}

// String returns the string representation.
func (u UserID) String() string {
	return string(u)
}

// TeamID represents a unique team identifier.
type TeamID string

// IsValid checks if the team ID is non-empty.
func (t TeamID) IsValid() bool {
	return strings.TrimSpace(string(t)) != ""
}

// String returns the string representation.
func (t TeamID) String() string {
	return string(t)
}

// ActivityID represents a unique activity identifier.
type ActivityID string

// IsValid checks if the activity ID is non-empty.
func (a ActivityID) IsValid() bool {
	return strings.TrimSpace(string(a)) != ""
}

// String returns the string representation.
func (a ActivityID) String() string {
	return string(a)
}

// IsEmpty checks if the ID is empty.
func (a ActivityID) IsEmpty() bool {
	return a == ""
}

// Meters represents a distance in meters.
type Meters float64

// IsValid checks that the distance is non-negative.
func (m Meters) IsValid() bool {
	return m >= 0
}

// IsPositive checks that the distance is strictly positive.
func (m Meters) IsPositive() bool {
	return m > 0
}

// Float64 returns the underlying float64 value.
func (m Meters) Float64() float64 {
	return float64(m)
}

// Kilometers converts the distance to kilometers.
func (m Meters) Kilometers() float64 {
	return float64(m) / 1000
}

// Seconds represents a duration in whole seconds.
type Seconds int64

// IsValid checks that the duration is non-negative.
func (s Seconds) IsValid() bool {
	return s >= 0
}

// IsPositive checks that the duration is strictly positive.
func (s Seconds) IsPositive() bool {
	return s > 0
}

// Int64 returns the underlying int64 value.
func (s Seconds) Int64() int64 {
	return int64(s)
}

// Duration converts to a time.Duration.
func (s Seconds) Duration() time.Duration {
	return time.Duration(s) * time.Second
}

// Window represents the time scope over which ranking sums are computed.
type Window string

const (
	// WindowWeek covers the last 7 days.
	WindowWeek Window = "week"

	// WindowMonth covers the last 30 days.
	WindowMonth Window = "month"

	// WindowAll covers everything since the project epoch.
	WindowAll Window = "all"
)

// IsValid checks if the window is one of the known values.
func (w Window) IsValid() bool {
	switch w {
	case WindowWeek, WindowMonth, WindowAll:
		return true
	}
	return false
}

// String returns the string representation.
func (w Window) String() string {
	return string(w)
}

// Start returns the inclusive lower bound of the window relative to now.
// For WindowAll the zero time is returned so every activity qualifies.
func (w Window) Start(now time.Time) time.Time {
	switch w {
	case WindowWeek:
		return now.AddDate(0, 0, -7)
	case WindowMonth:
		return now.AddDate(0, 0, -30)
	default:
		return time.Time{}
	}
}

// CacheTTL returns how long a cached view of this window stays useful.
// Narrow windows change fastest relative to their cache value, so they
// get the shortest TTL.
func (w Window) CacheTTL() time.Duration {
	switch w {
	case WindowWeek:
		return 2 * time.Minute
	case WindowMonth:
		return 5 * time.Minute
	default:
		return 15 * time.Minute
	}
}

// ParseWindow parses a string into a Window, defaulting to WindowWeek.
func ParseWindow(s string) (Window, error) {
	w := Window(strings.ToLower(strings.TrimSpace(s)))
	if s == "" {
		return WindowWeek, nil
	}
	if !w.IsValid() {
		return "", ErrInvalidWindow
	}
	return w, nil
}

// Pagination represents pagination parameters for activity listings.
type Pagination struct {
	Page     int
	PageSize int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Offset returns the offset for database queries.
func (p Pagination) Offset() int {
	if p.Page <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

// Limit returns the limit for database queries.
func (p Pagination) Limit() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		return MaxPageSize
	}
	return p.PageSize
}

// NewPagination creates a new Pagination with defaults applied.
func NewPagination(page, pageSize int) Pagination {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}

// Clock abstracts the current time so streak and window logic is testable.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock is a Clock that always returns the same instant. Test helper.
type FixedClock struct {
	Instant time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return c.Instant
}
