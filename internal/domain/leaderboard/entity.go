// Package leaderboard ranks members by distance over a time window.
// Rankings are derived on demand from summed activity; nothing here is
// stored.
package leaderboard

import (
	"sort"

	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
)

// Scope selects the ranked population.
type Scope string

const (
	ScopeTeam   Scope = "team"   // active members of one team
	ScopeGlobal Scope = "global" // every user with qualifying activity
)

// IsValid checks if the scope is a known value.
func (s Scope) IsValid() bool {
	return s == ScopeTeam || s == ScopeGlobal
}

// String returns the string representation.
func (s Scope) String() string {
	return string(s)
}

// ParseScope converts a raw string into a Scope.
func ParseScope(raw string) (Scope, error) {
	s := Scope(raw)
	if !s.IsValid() {
		return "", shared.ErrInvalidScope
	}
	return s, nil
}

// Segment is the percentile band a ranked user falls into.
type Segment string

const (
	SegmentElite        Segment = "elite"        // >= 90th percentile
	SegmentAdvanced     Segment = "advanced"     // >= 70th
	SegmentIntermediate Segment = "intermediate" // >= 40th
	SegmentNovice       Segment = "novice"       // >= 15th
	SegmentBeginner     Segment = "beginner"
)

// segmentFor maps a percentile to its band.
func segmentFor(percentile float64) Segment {
	switch {
	case percentile >= 90:
		return SegmentElite
	case percentile >= 70:
		return SegmentAdvanced
	case percentile >= 40:
		return SegmentIntermediate
	case percentile >= 15:
		return SegmentNovice
	default:
		return SegmentBeginner
	}
}

// Row is one candidate before ranking: a user with their summed activity
// for the window.
type Row struct {
	UserID      shared.UserID
	DisplayName string
	Distance    float64
	Duration    int64
	Activities  int64
}

// Entry is one ranked line of a leaderboard.
type Entry struct {
	Rank        int
	UserID      shared.UserID
	DisplayName string
	Distance    float64
	Duration    int64
	Activities  int64
	Percentile  float64
	Segment     Segment
	IsCurrent   bool
}

// Board is a fully ranked leaderboard for one scope and window.
type Board struct {
	Scope   Scope
	Window  shared.Window
	Entries []Entry
}

// DefaultMinActivities is the qualification threshold when the caller
// does not ask for a stricter one: users below it are excluded from the
// ranking entirely rather than shown with rank zero.
const DefaultMinActivities = 1

// Rank orders rows by distance descending, display name ascending on
// ties, and assigns sequential ranks 1..N over the qualified population.
// Ties in distance get distinct ranks, broken by name, so every ranked
// user holds exactly one position. Rows with fewer than minActivities
// activities are dropped first; values below one fall back to
// DefaultMinActivities.
//
// Percentile is positional over the ranked population: the top entry of
// N gets 100*(N-1)/N... the bottom gets 0. currentUser marks the matching
// entry; pass an empty ID for an anonymous view.
func Rank(rows []Row, scope Scope, window shared.Window, currentUser shared.UserID, minActivities int) *Board {
	if minActivities < DefaultMinActivities {
		minActivities = DefaultMinActivities
	}
	qualified := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.Activities >= int64(minActivities) {
			qualified = append(qualified, r)
		}
	}

	sort.Slice(qualified, func(i, j int) bool {
		if qualified[i].Distance != qualified[j].Distance {
			return qualified[i].Distance > qualified[j].Distance
		}
		return qualified[i].DisplayName < qualified[j].DisplayName
	})

	n := len(qualified)
	entries := make([]Entry, 0, n)
	for i, r := range qualified {
		percentile := 0.0
		if n > 0 {
			percentile = 100 * float64(n-1-i) / float64(n)
		}

		entries = append(entries, Entry{
			Rank:        i + 1,
			UserID:      r.UserID,
			DisplayName: r.DisplayName,
			Distance:    r.Distance,
			Duration:    r.Duration,
			Activities:  r.Activities,
			Percentile:  percentile,
			Segment:     segmentFor(percentile),
			IsCurrent:   currentUser.IsValid() && r.UserID == currentUser,
		})
	}

	return &Board{Scope: scope, Window: window, Entries: entries}
}

// UserRank is one user's position with the gaps to their neighbours.
type UserRank struct {
	Entry        Entry
	TotalRanked  int
	GapToBetter  float64 // distance needed to match the next better entry, 0 at the top
	LeadOverNext float64 // distance lead over the next worse entry, 0 at the bottom
}

// RankFor extracts a single user's position from a ranked board.
// Returns shared.ErrUserNotRanked when the user did not qualify.
func (b *Board) RankFor(userID shared.UserID) (*UserRank, error) {
	for i, e := range b.Entries {
		if e.UserID != userID {
			continue
		}
		ur := &UserRank{Entry: e, TotalRanked: len(b.Entries)}
		if i > 0 {
			ur.GapToBetter = b.Entries[i-1].Distance - e.Distance
		}
		if i < len(b.Entries)-1 {
			ur.LeadOverNext = e.Distance - b.Entries[i+1].Distance
		}
		return ur, nil
	}
	return nil, shared.ErrUserNotRanked
}

// Page returns one page of entries. Ranking always runs over the full
// population; pagination only trims the view.
func (b *Board) Page(p shared.Pagination) []Entry {
	offset, limit := p.Offset(), p.Limit()
	if offset >= len(b.Entries) {
		return []Entry{}
	}
	end := offset + limit
	if end > len(b.Entries) {
		end = len(b.Entries)
	}
	return b.Entries[offset:end]
}
