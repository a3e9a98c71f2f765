// Package achievement holds the fixed achievement catalog and the pure
// criterion evaluation over a user's aggregate facts. Earning is
// at-most-once, enforced by the store.
package achievement

import (
	"time"

	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
)

// AchievementID identifies a catalog entry.
type AchievementID string

// IsValid checks if the achievement ID is non-empty.
func (a AchievementID) IsValid() bool {
	return a != ""
}

// String returns the string representation.
func (a AchievementID) String() string {
	return string(a)
}

// CriterionType selects which fact a criterion measures.
type CriterionType string

const (
	CriterionCount    CriterionType = "count"    // total activities
	CriterionDistance CriterionType = "distance" // total distance, meters
	CriterionStreak   CriterionType = "streak"   // longest streak, days
	CriterionTeam     CriterionType = "team"     // active team memberships
	CriterionDuration CriterionType = "duration" // total duration, seconds
	CriterionTime     CriterionType = "time"     // hour of day of the triggering activity
)

// Operator compares the measured fact against the threshold.
type Operator string

const (
	OpGTE Operator = "gte"
	OpGT  Operator = "gt"
	OpLT  Operator = "lt"
	OpEQ  Operator = "eq"
)

// Criterion is one condition of a definition: a fact, a comparison and a
// threshold. Definitions with multiple criteria require all of them.
type Criterion struct {
	Type      CriterionType
	Operator  Operator
	Threshold float64
}

// Facts is the aggregate snapshot criteria are evaluated against. Built by
// the aggregation service from the user's stats and memberships; the
// evaluation itself touches no store.
type Facts struct {
	TotalActivities int64
	TotalDistance   float64
	TotalDuration   int64
	LongestStreak   int
	TeamCount       int

	// ActivityHour is the hour of day (0..23, streak timezone) of the
	// activity that triggered the check. HasActivityHour is false for
	// checks not tied to an activity, which disables time criteria.
	ActivityHour    int
	HasActivityHour bool
}

// value extracts the measured fact for a criterion type. Unknown types
// measure as zero and so never satisfy a gte/gt threshold.
func (f Facts) value(t CriterionType) float64 {
	switch t {
	case CriterionCount:
		return float64(f.TotalActivities)
	case CriterionDistance:
		return f.TotalDistance
	case CriterionStreak:
		return float64(f.LongestStreak)
	case CriterionTeam:
		return float64(f.TeamCount)
	case CriterionDuration:
		return float64(f.TotalDuration)
	case CriterionTime:
		return float64(f.ActivityHour)
	default:
		return 0
	}
}

// Met reports whether the criterion holds for the given facts. Time
// criteria require an activity hour; without one they never hold, so an
// hour-before-N rule cannot fire on the zero hour.
func (c Criterion) Met(f Facts) bool {
	if c.Type == CriterionTime && !f.HasActivityHour {
		return false
	}
	v := f.value(c.Type)
	switch c.Operator {
	case OpGTE:
		return v >= c.Threshold
	case OpGT:
		return v > c.Threshold
	case OpLT:
		return v < c.Threshold
	case OpEQ:
		return v == c.Threshold
	default:
		return false
	}
}

// ProgressPercent is how far the facts are toward the threshold, clamped
// to 0..100. Only meaningful for gte/gt criteria; lt/eq report 100 when
// met and 0 otherwise.
func (c Criterion) ProgressPercent(f Facts) float64 {
	switch c.Operator {
	case OpLT, OpEQ:
		if c.Met(f) {
			return 100
		}
		return 0
	}
	if c.Threshold <= 0 {
		return 100
	}
	pct := f.value(c.Type) / c.Threshold * 100
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// Definition is one catalog entry.
type Definition struct {
	ID          AchievementID
	Name        string
	Description string
	Criteria    []Criterion
}

// Met reports whether every criterion of the definition holds.
func (d Definition) Met(f Facts) bool {
	for _, c := range d.Criteria {
		if !c.Met(f) {
			return false
		}
	}
	return len(d.Criteria) > 0
}

// ProgressPercent is the minimum criterion progress, so a multi-criterion
// definition reads 100 only when fully met.
func (d Definition) ProgressPercent(f Facts) float64 {
	if len(d.Criteria) == 0 {
		return 0
	}
	min := 100.0
	for _, c := range d.Criteria {
		if p := c.ProgressPercent(f); p < min {
			min = p
		}
	}
	return min
}

// UserAchievement records that a user earned a catalog entry. The
// (UserID, AchievementID) pair is unique in the store.
type UserAchievement struct {
	UserID        shared.UserID
	AchievementID AchievementID
	EarnedAt      time.Time
	// TeamID and ActivityID capture what the user was doing when the
	// achievement was detected. Optional context, may be empty.
	TeamID     shared.TeamID
	ActivityID shared.ActivityID
}

// Catalog returns the fixed achievement definitions. The catalog is code,
// not data: entries change only with a deploy, which keeps criterion
// evaluation and catalog versioning trivially in sync.
func Catalog() []Definition {
	return []Definition{
		{
			ID:          "first-steps",
			Name:        "First Steps",
			Description: "Log your first activity",
			Criteria:    []Criterion{{Type: CriterionCount, Operator: OpGTE, Threshold: 1}},
		},
		{
			ID:          "ten-strong",
			Name:        "Ten Strong",
			Description: "Log 10 activities",
			Criteria:    []Criterion{{Type: CriterionCount, Operator: OpGTE, Threshold: 10}},
		},
		{
			ID:          "century-club",
			Name:        "Century Club",
			Description: "Cover 100 km in total",
			Criteria:    []Criterion{{Type: CriterionDistance, Operator: OpGTE, Threshold: 100_000}},
		},
		{
			ID:          "road-warrior",
			Name:        "Road Warrior",
			Description: "Cover 500 km in total",
			Criteria:    []Criterion{{Type: CriterionDistance, Operator: OpGTE, Threshold: 500_000}},
		},
		{
			ID:          "week-streak",
			Name:        "Week Streak",
			Description: "Walk 7 days in a row",
			Criteria:    []Criterion{{Type: CriterionStreak, Operator: OpGTE, Threshold: 7}},
		},
		{
			ID:          "iron-month",
			Name:        "Iron Month",
			Description: "Walk 30 days in a row",
			Criteria:    []Criterion{{Type: CriterionStreak, Operator: OpGTE, Threshold: 30}},
		},
		{
			ID:          "team-player",
			Name:        "Team Player",
			Description: "Be an active member of 2 or more teams",
			Criteria:    []Criterion{{Type: CriterionTeam, Operator: OpGTE, Threshold: 2}},
		},
		{
			ID:          "marathon-hours",
			Name:        "Marathon Hours",
			Description: "Accumulate 24 hours of activity",
			Criteria:    []Criterion{{Type: CriterionDuration, Operator: OpGTE, Threshold: 86_400}},
		},
		{
			ID:          "early-bird",
			Name:        "Early Bird",
			Description: "Log an activity before 9 in the morning",
			Criteria:    []Criterion{{Type: CriterionTime, Operator: OpLT, Threshold: 9}},
		},
		{
			ID:          "committed",
			Name:        "Committed",
			Description: "100 activities and 100 km, combined",
			Criteria: []Criterion{
				{Type: CriterionCount, Operator: OpGTE, Threshold: 100},
				{Type: CriterionDistance, Operator: OpGTE, Threshold: 100_000},
			},
		},
	}
}

// Lookup finds a catalog definition by ID.
func Lookup(id AchievementID) (Definition, error) {
	for _, d := range Catalog() {
		if d.ID == id {
			return d, nil
		}
	}
	return Definition{}, shared.ErrAchievementUnknown
}
