// Package config loads service configuration from environment variables.
// Every setting has a development-friendly default; only production
// deployments need a populated environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment names the deployment tier.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config is the root of all service settings.
type Config struct {
	App           AppConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Streak        StreakConfig
	EventBus      EventBusConfig
	Observability ObservabilityConfig
}

// AppConfig identifies the running instance.
type AppConfig struct {
	Name        string
	Environment Environment
	Debug       bool
	Version     string
}

// DatabaseConfig holds the Postgres settings. URL, when set, wins over
// the individual fields.
type DatabaseConfig struct {
	URL string

	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string

	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	ConnectTimeout  time.Duration
}

// RedisConfig holds the view cache settings.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int

	PoolSize     int
	MinIdleConns int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Disabled runs the service without Redis. Every read falls through
	// to Postgres and mutations skip invalidation.
	Disabled bool
}

// StreakConfig tunes streak day-boundary handling.
type StreakConfig struct {
	// Timezone used for day boundaries. All users share one zone; streaks
	// compare calendar days, not 24h offsets.
	Timezone string
}

// EventBusConfig selects and tunes the event bus.
type EventBusConfig struct {
	// Backend is "memory" or "redis".
	Backend string

	// ChannelName is the Redis Pub/Sub channel (redis backend only).
	ChannelName string

	// WorkerPoolSize bounds concurrent async handlers.
	WorkerPoolSize int
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel string // debug, info, warn, error
}

// Load reads the environment and validates the result.
func Load() (*Config, error) {
	env := Environment(envStr("APP_ENV", "development"))

	cfg := &Config{
		App: AppConfig{
			Name:        envStr("APP_NAME", "stride-challenge-hub"),
			Environment: env,
			Debug:       env == EnvDevelopment || envBool("APP_DEBUG", false),
			Version:     envStr("APP_VERSION", "0.1.0"),
		},
		Database: DatabaseConfig{
			URL:             envStr("DATABASE_URL", ""),
			Host:            envStr("DB_HOST", "localhost"),
			Port:            envInt("DB_PORT", 5432),
			Name:            envStr("DB_NAME", "stride"),
			User:            envStr("DB_USER", "postgres"),
			Password:        envStr("DB_PASSWORD", ""),
			SSLMode:         envStr("DB_SSLMODE", "disable"),
			MaxConns:        envInt("DB_MAX_CONNS", 10),
			MinConns:        envInt("DB_MIN_CONNS", 2),
			ConnMaxLifetime: envDur("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: envDur("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
			ConnectTimeout:  envDur("DB_CONNECT_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Host:         envStr("REDIS_HOST", "localhost"),
			Port:         envInt("REDIS_PORT", 6379),
			Password:     envStr("REDIS_PASSWORD", ""),
			DB:           envInt("REDIS_DB", 0),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDur("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDur("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDur("REDIS_WRITE_TIMEOUT", 3*time.Second),
			Disabled:     envBool("REDIS_DISABLED", false),
		},
		Streak: StreakConfig{
			Timezone: envStr("STREAK_TIMEZONE", "UTC"),
		},
		EventBus: EventBusConfig{
			Backend:        envStr("EVENT_BUS_BACKEND", "memory"),
			ChannelName:    envStr("EVENT_BUS_CHANNEL", "stride-hub:events"),
			WorkerPoolSize: envInt("EVENT_BUS_WORKERS", 10),
		},
		Observability: ObservabilityConfig{
			LogLevel: envStr("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Validate collects every configuration problem into one error, so a
// broken deployment surfaces all of them on the first start.
func (c *Config) Validate() error {
	var errs []string

	if c.App.Environment == EnvProduction && c.Database.URL == "" {
		errs = append(errs, "DATABASE_URL is required in production")
	}

	switch c.EventBus.Backend {
	case "memory", "redis":
	default:
		errs = append(errs, "EVENT_BUS_BACKEND must be \"memory\" or \"redis\"")
	}
	if c.EventBus.Backend == "redis" && c.Redis.Disabled {
		errs = append(errs, "EVENT_BUS_BACKEND=redis requires Redis to be enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Environment lookups. Unset and unparseable values both read as the
// fallback; config problems should not crash startup over a typo.

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func envDur(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}
