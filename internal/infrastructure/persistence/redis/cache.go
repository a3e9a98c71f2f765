// Package redis implements the Redis view cache for the challenge hub.
// Everything stored here is a disposable derived view: stats blocks, team
// progress blocks and ranked boards. Postgres stays the source of truth
// and a cold cache only costs latency.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheConnection is returned when the initial Redis handshake fails.
	ErrCacheConnection = errors.New("cache: connection failed")

	// ErrCacheMiss is returned when the requested key is absent.
	ErrCacheMiss = errors.New("cache: key not found")

	// ErrCacheSerialization wraps JSON encode/decode failures.
	ErrCacheSerialization = errors.New("cache: serialization failed")
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds the Redis connection settings.
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int

	PoolSize     int
	MinIdleConns int
	MaxRetries   int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns settings for a local single-node Redis.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         6379,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

func (c Config) addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// KEYS AND TTLs
// ══════════════════════════════════════════════════════════════════════════════

// Key namespaces. Board keys embed the scope and window so a whole board
// family can be invalidated with one pattern.
const (
	prefixUserStats    = "stats:"
	prefixTeamProgress = "progress:"

	// PrefixBoard is exported for the invalidation patterns in the view
	// cache.
	PrefixBoard = "board:"
)

// Per-entity view TTLs. Boards carry their own TTL per window, so they are
// not listed here.
const (
	TTLUserStats    = 2 * time.Minute
	TTLTeamProgress = 2 * time.Minute
)

// UserStatsKey is the cache key for one user's stats view.
func UserStatsKey(userID string) string {
	return prefixUserStats + userID
}

// TeamProgressKey is the cache key for one team's progress view.
func TeamProgressKey(teamID string) string {
	return prefixTeamProgress + teamID
}

// TeamBoardKey is the cache key for one window of a team board.
func TeamBoardKey(teamID, window string) string {
	return PrefixBoard + "team:" + teamID + ":" + window
}

// GlobalBoardKey is the cache key for one window of the global board.
func GlobalBoardKey(window string) string {
	return PrefixBoard + "global:" + window
}

// ══════════════════════════════════════════════════════════════════════════════
// CACHE CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Cache is a thin JSON layer over a go-redis client. It stores whole view
// structs as single string values; no per-field hash bookkeeping.
type Cache struct {
	client *redis.Client
}

// NewCache dials Redis and verifies the connection with a ping.
func NewCache(cfg Config) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}

	return &Cache{client: client}, nil
}

// Client exposes the underlying go-redis client. The event bus shares it
// for Pub/Sub.
func (c *Cache) Client() *redis.Client {
	return c.client
}

// Close releases the connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Ping reports whether Redis is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Set stores value as JSON under key with the given TTL.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

// Get loads key into dest. Absent keys come back as ErrCacheMiss.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
	}
	return nil
}

// Delete removes the given keys. Deleting an absent key is not an error.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// DeleteByPattern removes every key matching pattern. Used for board
// invalidation, where one mutation makes every window of a board stale.
// Iterates with SCAN and deletes in batches so large keyspaces do not
// block the server.
func (c *Cache) DeleteByPattern(ctx context.Context, pattern string) error {
	const batch = 100

	iter := c.client.Scan(ctx, 0, pattern, batch).Iterator()
	keys := make([]string, 0, batch)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == batch {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return c.client.Del(ctx, keys...).Err()
	}
	return nil
}
