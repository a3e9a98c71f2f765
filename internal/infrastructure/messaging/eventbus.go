// Package messaging implements the event bus the aggregation core
// publishes to. It provides both in-memory and Redis-based buses; the
// Redis one fans events out across instances for notification workers.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
)

// ErrEventBusClosed is returned for operations on a closed bus.
var ErrEventBusClosed = errors.New("event bus is closed")

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY BUS
// ══════════════════════════════════════════════════════════════════════════════

// InMemoryEventBusConfig configures the in-memory bus.
type InMemoryEventBusConfig struct {
	// WorkerPoolSize bounds concurrent handler executions.
	WorkerPoolSize int

	// Logger for handler failures. Defaults to slog.Default.
	Logger *slog.Logger
}

// DefaultInMemoryEventBusConfig returns defaults for a single instance.
func DefaultInMemoryEventBusConfig() InMemoryEventBusConfig {
	return InMemoryEventBusConfig{WorkerPoolSize: 10}
}

// InMemoryEventBus delivers events to handlers within one process.
// Delivery is asynchronous through a bounded worker pool; publishing never
// blocks on a slow handler, and a handler error or panic is logged, not
// propagated to the publisher.
type InMemoryEventBus struct {
	mu          sync.RWMutex
	handlers    map[shared.EventType][]shared.EventHandler
	allHandlers []shared.EventHandler
	closed      bool

	slots   chan struct{}
	closeCh chan struct{}
	wg      sync.WaitGroup
	log     *slog.Logger
	metrics EventBusMetrics
}

// NewInMemoryEventBus creates an in-memory bus.
func NewInMemoryEventBus(cfg InMemoryEventBusConfig) *InMemoryEventBus {
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = 10
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &InMemoryEventBus{
		handlers: make(map[shared.EventType][]shared.EventHandler),
		slots:    make(chan struct{}, cfg.WorkerPoolSize),
		closeCh:  make(chan struct{}),
		log:      cfg.Logger,
	}
}

// Subscribe registers a handler for one event type.
func (b *InMemoryEventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrEventBusClosed
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	return nil
}

// SubscribeAll registers a handler for every event type.
func (b *InMemoryEventBus) SubscribeAll(handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrEventBusClosed
	}
	b.allHandlers = append(b.allHandlers, handler)
	return nil
}

// Publish hands the event to every matching handler.
func (b *InMemoryEventBus) Publish(event shared.Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrEventBusClosed
	}
	targets := make([]shared.EventHandler, 0, len(b.handlers[event.EventType()])+len(b.allHandlers))
	targets = append(targets, b.handlers[event.EventType()]...)
	targets = append(targets, b.allHandlers...)
	b.mu.RUnlock()

	b.metrics.published.Add(1)
	for _, h := range targets {
		b.dispatch(event, h)
	}
	return nil
}

// dispatch runs one handler on the worker pool, with panic containment.
func (b *InMemoryEventBus) dispatch(event shared.Event, handler shared.EventHandler) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		select {
		case b.slots <- struct{}{}:
			defer func() { <-b.slots }()
		case <-b.closeCh:
			return
		}

		defer func() {
			if p := recover(); p != nil {
				b.metrics.failed.Add(1)
				b.log.Error("event handler panic",
					"event_type", event.EventType(), "panic", p)
			}
		}()

		if err := handler(event); err != nil {
			b.metrics.failed.Add(1)
			b.log.Error("event handler error",
				"event_type", event.EventType(), "error", err)
			return
		}
		b.metrics.handled.Add(1)
	}()
}

// Close stops accepting events and waits for in-flight handlers.
func (b *InMemoryEventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.closeCh)
	b.mu.Unlock()

	b.wg.Wait()
	return nil
}

// Metrics returns a snapshot of delivery counters.
func (b *InMemoryEventBus) Metrics() EventBusSnapshot {
	return b.metrics.snapshot()
}

// ══════════════════════════════════════════════════════════════════════════════
// REDIS PUB/SUB BUS
// ══════════════════════════════════════════════════════════════════════════════

// RedisClient is the Pub/Sub surface the Redis bus needs. The go-redis
// adapter in this package implements it; tests substitute their own.
type RedisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channels ...string) (<-chan RedisMessage, error)
	Close() error
}

// RedisMessage is one message received from a subscription.
type RedisMessage struct {
	Channel string
	Payload string
	Err     error
}

// RedisEventBusConfig configures the Redis bus.
type RedisEventBusConfig struct {
	// Client is required.
	Client RedisClient

	// ChannelName defaults to "stride-hub:events".
	ChannelName string

	// InstanceID filters out this instance's own messages. Defaults to a
	// random UUID.
	InstanceID string

	// LocalBusConfig configures the embedded in-memory bus that actually
	// runs the handlers.
	LocalBusConfig InMemoryEventBusConfig

	Logger *slog.Logger
}

// RedisEventBus fans events out across instances over Redis Pub/Sub.
// Every publish goes both to Redis and to the local in-memory bus; events
// arriving from Redis are replayed locally unless this instance sent them.
// A Redis outage degrades to local-only delivery rather than failing the
// publishing mutation.
type RedisEventBus struct {
	client   RedisClient
	local    *InMemoryEventBus
	channel  string
	instance string
	log      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewRedisEventBus creates the bus and starts its subscription listener.
func NewRedisEventBus(cfg RedisEventBusConfig) (*RedisEventBus, error) {
	if cfg.Client == nil {
		return nil, errors.New("redis client is required")
	}
	if cfg.ChannelName == "" {
		cfg.ChannelName = "stride-hub:events"
	}
	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	bus := &RedisEventBus{
		client:   cfg.Client,
		local:    NewInMemoryEventBus(cfg.LocalBusConfig),
		channel:  cfg.ChannelName,
		instance: cfg.InstanceID,
		log:      cfg.Logger,
		ctx:      ctx,
		cancel:   cancel,
	}

	messages, err := bus.client.Subscribe(ctx, bus.channel)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe %s: %w", bus.channel, err)
	}
	bus.wg.Add(1)
	go func() {
		defer bus.wg.Done()
		bus.listen(messages)
	}()

	return bus, nil
}

// Subscribe registers a handler for one event type.
func (b *RedisEventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	return b.local.Subscribe(eventType, handler)
}

// SubscribeAll registers a handler for every event type.
func (b *RedisEventBus) SubscribeAll(handler shared.EventHandler) error {
	return b.local.SubscribeAll(handler)
}

// Publish sends the event to Redis and to local handlers.
func (b *RedisEventBus) Publish(event shared.Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrEventBusClosed
	}
	b.mu.RUnlock()

	data, err := json.Marshal(wireEvent{
		InstanceID:  b.instance,
		EventType:   event.EventType(),
		AggregateID: event.AggregateID(),
		OccurredAt:  event.OccurredAt(),
		Payload:     event.Payload(),
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := b.client.Publish(b.ctx, b.channel, string(data)); err != nil {
		// Local delivery still happens below.
		b.log.Error("redis publish failed", "event_type", event.EventType(), "error", err)
	}
	return b.local.Publish(event)
}

// listen replays remote events onto the local bus.
func (b *RedisEventBus) listen(messages <-chan RedisMessage) {
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if msg.Err != nil {
				b.log.Error("redis subscription error", "error", msg.Err)
				continue
			}

			var we wireEvent
			if err := json.Unmarshal([]byte(msg.Payload), &we); err != nil {
				b.log.Error("malformed bus message", "error", err)
				continue
			}
			if we.InstanceID == b.instance {
				// Own message, already delivered locally at publish time.
				continue
			}
			if err := b.local.Publish(we.event()); err != nil {
				b.log.Error("remote event delivery failed",
					"event_type", we.EventType, "error", err)
			}
		}
	}
}

// Close stops the listener and drains local handlers.
func (b *RedisEventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()
	b.wg.Wait()
	return b.local.Close()
}

// Metrics returns the local delivery counters.
func (b *RedisEventBus) Metrics() EventBusSnapshot {
	return b.local.Metrics()
}

// ══════════════════════════════════════════════════════════════════════════════
// WIRE FORMAT
// ══════════════════════════════════════════════════════════════════════════════

// wireEvent is the JSON envelope events travel in over Pub/Sub.
type wireEvent struct {
	InstanceID  string                 `json:"instance_id"`
	EventType   shared.EventType       `json:"event_type"`
	AggregateID string                 `json:"aggregate_id"`
	OccurredAt  time.Time              `json:"occurred_at"`
	Payload     map[string]interface{} `json:"payload"`
}

// event rebuilds a shared.Event view over the envelope.
func (w wireEvent) event() shared.Event {
	return remoteEvent{w}
}

type remoteEvent struct {
	w wireEvent
}

func (e remoteEvent) EventType() shared.EventType     { return e.w.EventType }
func (e remoteEvent) AggregateID() string             { return e.w.AggregateID }
func (e remoteEvent) OccurredAt() time.Time           { return e.w.OccurredAt }
func (e remoteEvent) Payload() map[string]interface{} { return e.w.Payload }

// ══════════════════════════════════════════════════════════════════════════════
// METRICS
// ══════════════════════════════════════════════════════════════════════════════

// EventBusMetrics counts deliveries. Lock-free; read via snapshot.
type EventBusMetrics struct {
	published atomic.Int64
	handled   atomic.Int64
	failed    atomic.Int64
}

func (m *EventBusMetrics) snapshot() EventBusSnapshot {
	return EventBusSnapshot{
		Published: m.published.Load(),
		Handled:   m.handled.Load(),
		Failed:    m.failed.Load(),
	}
}

// EventBusSnapshot is a point-in-time view of the counters.
type EventBusSnapshot struct {
	Published int64
	Handled   int64
	Failed    int64
}
