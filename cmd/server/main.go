// Package main is the entry point of the challenge hub aggregation
// service.
//
// The layering follows Clean Architecture and DDD:
// - Domain: activity, stats, teamgoal, leaderboard, achievement
// - Application: the aggregation service (mutations + queries)
// - Infrastructure: Postgres repositories, Redis view cache, event bus
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/stridehub/stride-challenge-hub/config"
	"github.com/stridehub/stride-challenge-hub/internal/application/aggregation"
	"github.com/stridehub/stride-challenge-hub/internal/infrastructure/messaging"
	"github.com/stridehub/stride-challenge-hub/internal/infrastructure/persistence/postgres"
	"github.com/stridehub/stride-challenge-hub/internal/infrastructure/persistence/redis"
	"github.com/stridehub/stride-challenge-hub/pkg/circuitbreaker"
	"github.com/stridehub/stride-challenge-hub/pkg/logger"
	"github.com/stridehub/stride-challenge-hub/pkg/retry"
	"github.com/stridehub/stride-challenge-hub/pkg/timeutil"

	"github.com/stridehub/stride-challenge-hub/internal/domain/shared"
	"github.com/stridehub/stride-challenge-hub/internal/domain/stats"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.App.Debug,
	})
	log.Info("starting stride challenge hub",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
	)

	streakLoc, err := timeutil.LoadLocation(cfg.Streak.Timezone)
	if err != nil {
		return fmt.Errorf("invalid STREAK_TIMEZONE %q: %w", cfg.Streak.Timezone, err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. POSTGRES
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database")
	conn, err := connectPostgres(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection")
		conn.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 4. MIGRATIONS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("running database migrations")
	migrator := postgres.NewMigrator(conn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REDIS VIEW CACHE (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var viewCache *redis.ViewCache
	var redisCache *redis.Cache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis")
		redisCache, err = connectRedis(ctx, cfg)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", logger.Err(err))
		} else {
			defer redisCache.Close()
			breaker := circuitbreaker.CacheBreaker(func(name string, from, to circuitbreaker.State) {
				log.Warn("circuit breaker state change",
					logger.String("breaker", name),
					logger.String("from", from.String()),
					logger.String("to", to.String()),
				)
			})
			viewCache = redis.NewViewCache(redisCache, breaker)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	bus, err := buildEventBus(cfg, redisCache, log)
	if err != nil {
		return fmt.Errorf("failed to build event bus: %w", err)
	}
	defer func() {
		log.Info("closing event bus")
		_ = bus.Close()
	}()

	registerEventLogging(bus, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. REPOSITORIES AND SERVICE
	// ─────────────────────────────────────────────────────────────────────────
	deps := aggregation.Deps{
		UnitOfWork:   postgres.NewUnitOfWork(conn),
		Activities:   postgres.NewActivityRepository(conn),
		Memberships:  postgres.NewMembershipRepository(conn),
		Stats:        postgres.NewStatsRepository(conn),
		Goals:        postgres.NewTeamGoalRepository(conn),
		Boards:       postgres.NewLeaderboardSource(conn),
		Achievements: postgres.NewAchievementRepository(conn),
		Publisher:    bus,
		Streaks:      stats.NewStreakCalculator(streakLoc),
		Logger:       log,
	}
	if viewCache != nil {
		deps.Cache = viewCache
	}

	service := aggregation.NewService(deps)
	_ = service // handed to the transport layer once one is mounted

	log.Info("stride challenge hub is running",
		logger.String("event_bus", cfg.EventBus.Backend),
		logger.String("streak_timezone", cfg.Streak.Timezone),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case <-ctx.Done():
	}

	log.Info("shutdown completed")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// WIRING HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// connectPostgres establishes the pool, retrying while the database comes
// up. DATABASE_URL wins over the individual settings.
func connectPostgres(ctx context.Context, cfg *config.Config) (*postgres.Connection, error) {
	return retry.DoWithData(ctx, retry.StartupRetrier(), func(ctx context.Context) (*postgres.Connection, error) {
		var conn *postgres.Connection
		var err error
		if cfg.Database.URL != "" {
			conn, err = postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		} else {
			pgCfg := postgres.DefaultConfig()
			pgCfg.Host = cfg.Database.Host
			pgCfg.Port = cfg.Database.Port
			pgCfg.Database = cfg.Database.Name
			pgCfg.User = cfg.Database.User
			pgCfg.Password = cfg.Database.Password
			pgCfg.SSLMode = cfg.Database.SSLMode
			pgCfg.MaxConns = int32(cfg.Database.MaxConns)
			pgCfg.MinConns = int32(cfg.Database.MinConns)
			pgCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
			pgCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime
			pgCfg.ConnectTimeout = cfg.Database.ConnectTimeout
			conn, err = postgres.NewConnection(ctx, pgCfg)
		}
		if err != nil {
			return nil, retry.Retryable(err)
		}
		return conn, nil
	})
}

// connectRedis establishes the cache client, retrying on startup races.
func connectRedis(ctx context.Context, cfg *config.Config) (*redis.Cache, error) {
	redisCfg := redis.DefaultConfig()
	redisCfg.Host = cfg.Redis.Host
	redisCfg.Port = cfg.Redis.Port
	redisCfg.Password = cfg.Redis.Password
	redisCfg.DB = cfg.Redis.DB
	redisCfg.PoolSize = cfg.Redis.PoolSize
	redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
	redisCfg.DialTimeout = cfg.Redis.DialTimeout
	redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
	redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

	return retry.DoWithData(ctx, retry.StartupRetrier(), func(ctx context.Context) (*redis.Cache, error) {
		cache, err := redis.NewCache(redisCfg)
		if err != nil {
			return nil, retry.Retryable(err)
		}
		return cache, nil
	})
}

// closableBus is the surface main needs from either bus implementation.
type closableBus interface {
	shared.EventBus
	Close() error
}

// buildEventBus picks the backend. The Redis bus shares the cache client
// and fans events out across instances.
func buildEventBus(cfg *config.Config, redisCache *redis.Cache, log *logger.Logger) (closableBus, error) {
	busCfg := messaging.DefaultInMemoryEventBusConfig()
	busCfg.Logger = log.Slog()
	busCfg.WorkerPoolSize = cfg.EventBus.WorkerPoolSize

	if cfg.EventBus.Backend == "redis" {
		if redisCache == nil {
			return nil, fmt.Errorf("redis event bus requires a Redis connection")
		}
		return messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Client:         messaging.NewGoRedisClient(redisCache.Client()),
			ChannelName:    cfg.EventBus.ChannelName,
			LocalBusConfig: busCfg,
			Logger:         log.Slog(),
		})
	}

	return messaging.NewInMemoryEventBus(busCfg), nil
}

// registerEventLogging subscribes info-level logging for the milestone
// events. Notification delivery hangs off these same subscriptions when a
// sender is mounted.
func registerEventLogging(bus shared.EventBus, log *logger.Logger) {
	for _, eventType := range []shared.EventType{
		shared.EventGoalCompleted,
		shared.EventAchievementEarned,
		shared.EventStreakExtended,
	} {
		et := eventType
		_ = bus.Subscribe(et, func(event shared.Event) error {
			log.Info("milestone event",
				logger.String("event_type", string(et)),
				logger.String("aggregate_id", event.AggregateID()),
			)
			return nil
		})
	}
}
