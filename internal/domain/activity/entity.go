// Package activity contains the domain entity and persistence contract for
// logged distance activities. This is a pure domain layer with zero external
// dependencies beyond the shared kernel.
package activity

import (
	"strings"
	"time"

	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
)

// Source identifies where an activity record came from.
type Source string

const (
	SourceManual  Source = "manual"
	SourceImport  Source = "import"
	SourceTracker Source = "tracker"
)

// IsValid checks if the source is one of the known values.
func (s Source) IsValid() bool {
	switch s {
	case SourceManual, SourceImport, SourceTracker:
		return true
	}
	return false
}

// Activity represents one logged distance/time record. It belongs to exactly
// one owning user and one or more teams; the first team in TeamIDs is the
// primary team.
//
// Distance, duration and occurred-at are immutable after create: every
// aggregate that was incremented at create time can then be decremented by
// the exact same delta on delete, which is what keeps running totals from
// drifting.
type Activity struct {
	ID         shared.ActivityID
	UserID     shared.UserID
	TeamIDs    []shared.TeamID
	Distance   shared.Meters
	Duration   shared.Seconds
	OccurredAt time.Time
	Note       string
	IsPrivate  bool
	Source     Source
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewActivity creates a new Activity with validation.
func NewActivity(
	id shared.ActivityID,
	userID shared.UserID,
	teamIDs []shared.TeamID,
	distance shared.Meters,
	duration shared.Seconds,
	occurredAt time.Time,
	now time.Time,
) (*Activity, error) {
	if !id.IsValid() {
		return nil, shared.NewDomainError("activity", "Create", shared.ErrInvalidID, "invalid activity ID")
	}
	if !userID.IsValid() {
		return nil, shared.NewDomainError("activity", "Create", shared.ErrInvalidID, "invalid user ID")
	}
	if len(teamIDs) == 0 {
		return nil, shared.ErrNoTeams
	}
	for _, teamID := range teamIDs {
		if !teamID.IsValid() {
			return nil, shared.NewDomainError("activity", "Create", shared.ErrInvalidID, "invalid team ID")
		}
	}
	if !distance.IsPositive() {
		return nil, shared.ErrInvalidDistance
	}
	if !duration.IsPositive() {
		return nil, shared.ErrInvalidDuration
	}
	if occurredAt.IsZero() {
		return nil, shared.ErrInvalidOccurredAt
	}

	return &Activity{
		ID:         id,
		UserID:     userID,
		TeamIDs:    dedupeTeams(teamIDs),
		Distance:   distance,
		Duration:   duration,
		OccurredAt: occurredAt.UTC(),
		Source:     SourceManual,
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}, nil
}

// PrimaryTeam returns the distinguished primary team.
func (a *Activity) PrimaryTeam() shared.TeamID {
	if len(a.TeamIDs) == 0 {
		return ""
	}
	return a.TeamIDs[0]
}

// IsOwnedBy checks ownership.
func (a *Activity) IsOwnedBy(userID shared.UserID) bool {
	return a.UserID == userID
}

// Day returns the calendar day key of the activity in the given location.
func (a *Activity) Day(loc *time.Location) string {
	return a.OccurredAt.In(loc).Format("2006-01-02")
}

// Patch holds the mutable fields of an activity. Only the note and the
// privacy flag can change post-create; everything that feeds an aggregate
// is frozen.
type Patch struct {
	Note      *string
	IsPrivate *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Note == nil && p.IsPrivate == nil
}

// Apply applies the patch to the activity.
func (a *Activity) Apply(p Patch, now time.Time) {
	if p.Note != nil {
		a.Note = strings.TrimSpace(*p.Note)
	}
	if p.IsPrivate != nil {
		a.IsPrivate = *p.IsPrivate
	}
	a.UpdatedAt = now.UTC()
}

// Deltas returns the aggregate deltas this activity contributes. Negative
// deltas (sign = -1) are applied on delete so the reversal is exact.
func (a *Activity) Deltas(sign int) (distance float64, duration int64, count int64) {
	s := float64(sign)
	return a.Distance.Float64() * s, a.Duration.Int64() * int64(sign), int64(sign)
}

func dedupeTeams(ids []shared.TeamID) []shared.TeamID {
	seen := make(map[shared.TeamID]struct{}, len(ids))
	out := make([]shared.TeamID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ListFilter narrows a paginated activity listing.
type ListFilter struct {
	UserID shared.UserID
	TeamID shared.TeamID // optional
	From   time.Time     // optional, inclusive
	To     time.Time     // optional, exclusive

	// IncludePrivate controls whether private activities appear. Listings
	// for the owner include them; anything feeding a public view must not.
	IncludePrivate bool
}
