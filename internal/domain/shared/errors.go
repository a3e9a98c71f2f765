// Package shared holds the domain vocabulary every other domain package
// builds on: identifiers, windows, events and the error taxonomy. It has
// no dependencies outside the standard library.
package shared

import (
	"errors"
	"fmt"
)

// Error kinds. Every DomainError carries one of these, so callers match
// with errors.Is against the kind rather than a concrete error value.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	ErrForbidden = errors.New("forbidden")
	ErrNotMember = errors.New("not a team member")

	ErrPersistence      = errors.New("persistence failure")
	ErrCacheUnavailable = errors.New("cache unavailable")
	ErrDetectionFailed  = errors.New("achievement detection failed")

	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError ties an error kind to the domain and operation it came
// from. The aggregation service returns these from every failing path.
type DomainError struct {
	Domain  string // owning domain, "activity", "leaderboard", ...
	Op      string // failing operation, "Create", "Rank", ...
	Kind    error  // one of the kinds above
	Message string
	Err     error // wrapped cause, nil for pure domain failures
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap exposes the cause when there is one, the kind otherwise.
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is matches against both the kind and the wrapped cause, so
// errors.Is(err, ErrNotFound) works whichever way the error was built.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	return e.Err != nil && errors.Is(e.Err, target)
}

// NewDomainError builds a DomainError without a wrapped cause.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: kind, Message: message}
}

// WrapError builds a DomainError around an underlying cause.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: kind, Message: message, Err: err}
}

// Activity domain errors
var (
	ErrActivityNotFound    = NewDomainError("activity", "Find", ErrNotFound, "activity not found")
	ErrActivityNotOwned    = NewDomainError("activity", "Authorize", ErrForbidden, "activity belongs to another user")
	ErrNoTeams             = NewDomainError("activity", "Validate", ErrEmptyValue, "activity must belong to at least one team")
	ErrInvalidDistance     = NewDomainError("activity", "Validate", ErrValueOutOfRange, "distance must be positive")
	ErrInvalidDuration     = NewDomainError("activity", "Validate", ErrValueOutOfRange, "duration must be positive")
	ErrInvalidOccurredAt   = NewDomainError("activity", "Validate", ErrInvalidFormat, "occurred-at timestamp is not parseable")
	ErrNotTeamMember       = NewDomainError("activity", "Authorize", ErrNotMember, "user is not an active member of the team")
	ErrImmutableAggregates = NewDomainError("activity", "Update", ErrInvalidInput, "distance, duration and date are immutable after create")
)

// Team goal domain errors
var (
	ErrGoalNotFound      = NewDomainError("teamgoal", "Find", ErrNotFound, "team goal not found")
	ErrInvalidTargetDist = NewDomainError("teamgoal", "Validate", ErrValueOutOfRange, "target distance must be positive")
)

// Leaderboard domain errors
var (
	ErrInvalidWindow    = NewDomainError("leaderboard", "Validate", ErrInvalidInput, "invalid time window")
	ErrInvalidScope     = NewDomainError("leaderboard", "Validate", ErrInvalidInput, "invalid leaderboard scope")
	ErrUserNotRanked    = NewDomainError("leaderboard", "Rank", ErrNotFound, "user has no ranked entry in this window")
	ErrEmptyLeaderboard = NewDomainError("leaderboard", "Build", ErrNotFound, "no participants in scope")
)

// Achievement domain errors
var (
	ErrAchievementUnknown = NewDomainError("achievement", "Find", ErrNotFound, "unknown achievement key")
	ErrAlreadyEarned      = NewDomainError("achievement", "Award", ErrAlreadyExists, "achievement already earned")
)

// IsNotFound reports whether err is any not-found kind.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether err is any of the validation kinds.
// Validation failures map to a 4xx at the transport layer.
func IsValidation(err error) bool {
	for _, kind := range []error{
		ErrValidation, ErrInvalidID, ErrInvalidInput, ErrEmptyValue,
		ErrNegativeValue, ErrValueOutOfRange, ErrInvalidFormat,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// IsAuthorization checks if the error is an authorization error.
// Authorization errors are reported to the caller and never retried.
func IsAuthorization(err error) bool {
	return errors.Is(err, ErrForbidden) || errors.Is(err, ErrNotMember)
}

// IsAlreadyEarned checks if an award failed because the user already has
// the achievement. Callers treat this as success.
func IsAlreadyEarned(err error) bool {
	return errors.Is(err, ErrAlreadyEarned)
}

// IsBestEffort checks if the error comes from a best-effort side effect.
// These are logged and swallowed; they never fail a committed mutation.
func IsBestEffort(err error) bool {
	return errors.Is(err, ErrCacheUnavailable) || errors.Is(err, ErrDetectionFailed)
}

// IsRetryable reports whether the failing operation is worth retrying.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) || errors.Is(err, ErrTimeout)
}
