package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/memberguard/block-registry/internal/cache"
	"github.com/memberguard/block-registry/internal/config"
	"github.com/memberguard/block-registry/internal/db"
	"github.com/memberguard/block-registry/internal/events"
	"github.com/memberguard/block-registry/internal/handler"
	"github.com/memberguard/block-registry/internal/metrics"
	"github.com/memberguard/block-registry/internal/middleware"
	"github.com/memberguard/block-registry/internal/repository"
	"github.com/memberguard/block-registry/internal/service"
	"github.com/memberguard/block-registry/internal/session"
	"github.com/memberguard/block-registry/internal/validation"
)

// app holds every long-lived dependency of the server.
type app struct {
	handlers handler.Handlers
	options  handler.RouterOptions
	registry *service.BlockRegistry

	pool      *pgxpool.Pool
	redis     *redis.Client
	publisher *service.EventPublisher
}

// buildApp connects the backends selected by cfg and assembles the handlers.
func buildApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	a := &app{}

	if cfg.Block.StateStore == config.StorePostgres {
		pool, err := db.NewPool(ctx, cfg.Database.PoolConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.pool = pool
		log.Info("Database connection established", zap.Int32("maxConns", pool.Config().MaxConns))
	}

	if cfg.UsesRedis() {
		client, err := db.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		a.redis = client
		log.Info("Redis connection established")
	}

	repo := a.stateStore(cfg.Block)
	blockedSet := a.cacheStore(cfg.Block)
	sessions := a.sessionStore(cfg.Block)

	bus := events.NewBus(log)
	m := metrics.New()
	m.Subscribe(bus)

	if cfg.RabbitMQ.Enabled {
		publisher, err := service.NewEventPublisher(&cfg.RabbitMQ)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize rabbitmq: %w", err)
		}
		publisher.Subscribe(bus)
		a.publisher = publisher
		log.Info("Publishing block events to RabbitMQ", zap.String("exchange", cfg.RabbitMQ.Exchange))
	}

	loc, err := cfg.Block.Location()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.registry = service.NewBlockRegistry(repo, blockedSet, sessions, bus,
		service.WithListBuffer(cfg.Block.ListBuffer),
		service.WithMetrics(m),
	)
	validator := validation.New(cfg.Block.MaxLength, cfg.Block.StrictValidation)

	// A typed nil *EventPublisher must not reach the interface.
	var broker handler.HealthReporter
	if a.publisher != nil {
		broker = a.publisher
	}

	a.handlers = handler.Handlers{
		Block: handler.NewBlockHandler(
			service.NewModerationService(a.registry, validator, cfg.Block.ProtectedUserIDs, loc),
			a.registry,
		),
		Auth: handler.NewAuthHandler(service.NewAuthGuard(a.registry, sessions, cfg.Block.SessionTTL)),
		Notification: handler.NewNotificationHandler(
			service.NewNotificationGuard(a.registry, cfg.Block.NotificationKeys, bus),
			validator,
		),
		Health: handler.NewHealthHandler(a.registry, broker),
	}

	a.options = handler.RouterOptions{Log: log, Metrics: m}
	if len(cfg.Auth.APIKeys) > 0 {
		a.options.Auth = middleware.NewAPIKeyAuth(cfg.Auth.APIKeys, log)
	} else {
		log.Warn("No API keys configured, the API is unauthenticated", zap.String("envVar", "APP_AUTH_API_KEYS"))
	}

	log.Info("Block registry assembled",
		zap.String("stateStore", cfg.Block.StateStore),
		zap.String("cacheStore", cfg.Block.CacheStore),
		zap.String("sessionStore", cfg.Block.SessionStore),
		zap.Duration("listBuffer", cfg.Block.ListBuffer),
	)
	return a, nil
}

func (a *app) stateStore(cfg config.BlockConfig) repository.BlockRepository {
	switch cfg.StateStore {
	case config.StorePostgres:
		return repository.NewPostgresBlockRepository(a.pool)
	case config.StoreRedis:
		return repository.NewRedisBlockRepository(a.redis, cfg.KeyPrefix)
	default:
		return repository.NewMemoryBlockRepository()
	}
}

func (a *app) cacheStore(cfg config.BlockConfig) cache.BlockedSetCache {
	if cfg.CacheStore == config.StoreRedis {
		return cache.NewRedisBlockedSetCache(a.redis, cfg.KeyPrefix, cfg.CacheTTL)
	}
	return cache.NewMemoryBlockedSetCache()
}

func (a *app) sessionStore(cfg config.BlockConfig) session.Store {
	switch cfg.SessionStore {
	case config.StoreRedis:
		return session.NewRedisStore(a.redis, cfg.KeyPrefix)
	case config.StoreMemory:
		return session.NewMemoryStore()
	default:
		return session.NopStore{}
	}
}

// Close releases every connection buildApp opened.
func (a *app) Close() error {
	var errs []error
	if a.publisher != nil {
		errs = append(errs, a.publisher.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.pool != nil {
		db.Close(a.pool)
	}
	return errors.Join(errs...)
}
