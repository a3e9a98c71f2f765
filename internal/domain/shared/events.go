package shared

import (
	"time"
)

// EventType names a domain event.
type EventType string

// Domain event types. Each event records something significant that
// happened in the aggregation core; notification fan-out consumes them
// fire-and-forget.
const (
	EventActivityCreated EventType = "activity.created"
	EventActivityUpdated EventType = "activity.updated"
	EventActivityDeleted EventType = "activity.deleted"

	EventStreakExtended EventType = "stats.streak_extended"

	EventGoalCompleted EventType = "teamgoal.completed"

	EventAchievementEarned EventType = "achievement.earned"
)

// Event is what travels over the bus. Payload flattens the event into a
// map so the Redis bus can ship it as JSON without knowing the concrete
// type.
type Event interface {
	EventType() EventType
	OccurredAt() time.Time
	AggregateID() string
	Payload() map[string]interface{}
}

// BaseEvent carries the fields every event shares. Concrete events embed
// it and add their own payload.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

func (e BaseEvent) EventType() EventType  { return e.Type }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseEvent) AggregateID() string   { return e.AggregateId }

// NewBaseEvent stamps a fresh event envelope.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID threads the mutation's correlation ID through to
// subscribers.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ActivityCreatedEvent is emitted after an activity and its aggregate
// deltas have been committed.
type ActivityCreatedEvent struct {
	BaseEvent
	UserID   string   `json:"user_id"`
	TeamIDs  []string `json:"team_ids"`
	Distance float64  `json:"distance_meters"`
	Duration int64    `json:"duration_seconds"`
}

func (e ActivityCreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":          e.UserID,
		"team_ids":         e.TeamIDs,
		"distance_meters":  e.Distance,
		"duration_seconds": e.Duration,
	}
}

// NewActivityCreatedEvent creates a new ActivityCreatedEvent.
func NewActivityCreatedEvent(activityID, userID string, teamIDs []string, distance float64, duration int64) ActivityCreatedEvent {
	return ActivityCreatedEvent{
		BaseEvent: NewBaseEvent(EventActivityCreated, activityID),
		UserID:    userID,
		TeamIDs:   teamIDs,
		Distance:  distance,
		Duration:  duration,
	}
}

// ActivityUpdatedEvent is emitted after a note or privacy patch lands.
// Aggregates never move on update, so the event carries no deltas.
type ActivityUpdatedEvent struct {
	BaseEvent
	UserID         string `json:"user_id"`
	PrivacyChanged bool   `json:"privacy_changed"`
}

func (e ActivityUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":         e.UserID,
		"privacy_changed": e.PrivacyChanged,
	}
}

// NewActivityUpdatedEvent creates a new ActivityUpdatedEvent.
func NewActivityUpdatedEvent(activityID, userID string, privacyChanged bool) ActivityUpdatedEvent {
	return ActivityUpdatedEvent{
		BaseEvent:      NewBaseEvent(EventActivityUpdated, activityID),
		UserID:         userID,
		PrivacyChanged: privacyChanged,
	}
}

// ActivityDeletedEvent is emitted after an activity's deltas have been
// reversed and the record removed.
type ActivityDeletedEvent struct {
	BaseEvent
	UserID   string   `json:"user_id"`
	TeamIDs  []string `json:"team_ids"`
	Distance float64  `json:"distance_meters"`
}

func (e ActivityDeletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":         e.UserID,
		"team_ids":        e.TeamIDs,
		"distance_meters": e.Distance,
	}
}

// NewActivityDeletedEvent creates a new ActivityDeletedEvent.
func NewActivityDeletedEvent(activityID, userID string, teamIDs []string, distance float64) ActivityDeletedEvent {
	return ActivityDeletedEvent{
		BaseEvent: NewBaseEvent(EventActivityDeleted, activityID),
		UserID:    userID,
		TeamIDs:   teamIDs,
		Distance:  distance,
	}
}

// StreakExtendedEvent is emitted when a recompute grows the current streak.
type StreakExtendedEvent struct {
	BaseEvent
	UserID        string `json:"user_id"`
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
}

func (e StreakExtendedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":        e.UserID,
		"current_streak": e.CurrentStreak,
		"longest_streak": e.LongestStreak,
	}
}

// NewStreakExtendedEvent creates a new StreakExtendedEvent.
func NewStreakExtendedEvent(userID string, current, longest int) StreakExtendedEvent {
	return StreakExtendedEvent{
		BaseEvent:     NewBaseEvent(EventStreakExtended, userID),
		UserID:        userID,
		CurrentStreak: current,
		LongestStreak: longest,
	}
}

// GoalCompletedEvent is emitted the first time a team goal's progress
// reaches 100 percent.
type GoalCompletedEvent struct {
	BaseEvent
	TeamID        string  `json:"team_id"`
	GoalID        string  `json:"goal_id"`
	TotalDistance float64 `json:"total_distance"`
}

func (e GoalCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"team_id":        e.TeamID,
		"goal_id":        e.GoalID,
		"total_distance": e.TotalDistance,
	}
}

// NewGoalCompletedEvent creates a new GoalCompletedEvent.
func NewGoalCompletedEvent(goalID, teamID string, totalDistance float64) GoalCompletedEvent {
	return GoalCompletedEvent{
		BaseEvent:     NewBaseEvent(EventGoalCompleted, goalID),
		TeamID:        teamID,
		GoalID:        goalID,
		TotalDistance: totalDistance,
	}
}

// AchievementEarnedEvent is emitted when an achievement is awarded.
type AchievementEarnedEvent struct {
	BaseEvent
	UserID         string `json:"user_id"`
	AchievementKey string `json:"achievement_key"`
	TeamID         string `json:"team_id,omitempty"`
	ActivityID     string `json:"activity_id,omitempty"`
}

func (e AchievementEarnedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":         e.UserID,
		"achievement_key": e.AchievementKey,
		"team_id":         e.TeamID,
		"activity_id":     e.ActivityID,
	}
}

// NewAchievementEarnedEvent creates a new AchievementEarnedEvent.
func NewAchievementEarnedEvent(userID, achievementKey string) AchievementEarnedEvent {
	return AchievementEarnedEvent{
		BaseEvent:      NewBaseEvent(EventAchievementEarned, userID),
		UserID:         userID,
		AchievementKey: achievementKey,
	}
}

// WithContext attaches optional team/activity context to the event.
func (e AchievementEarnedEvent) WithContext(teamID, activityID string) AchievementEarnedEvent {
	e.TeamID = teamID
	e.ActivityID = activityID
	return e
}

// EventHandler consumes one event. A non-nil return is logged by the bus,
// never surfaced to the publisher.
type EventHandler func(event Event) error

// EventPublisher is the sending half of the bus. Publishing is
// fire-and-forget: the aggregation core never blocks on a subscriber.
type EventPublisher interface {
	Publish(event Event) error
}

// EventBus adds subscription to EventPublisher.
type EventBus interface {
	EventPublisher

	// Subscribe registers a handler for one event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for every event type.
	SubscribeAll(handler EventHandler) error
}
