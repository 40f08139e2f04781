// Package server defines the Server struct that composes the data layer's
// shared dependencies and owns their lifecycle:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - database pool
//   - redis client and the property search cache (optional)
//
// It is not an HTTP server. Callers build repositories and services on top
// of it and call Shutdown when done.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/lightbnb/internal/cache"
	"github.com/deppfellow/lightbnb/internal/config"
	"github.com/deppfellow/lightbnb/internal/database"
	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	loggerPkg "github.com/deppfellow/lightbnb/internal/logger"
)

// RedisPingTimeout bounds the startup ping to Redis.
const RedisPingTimeout = 5 * time.Second

// Server is the application container that holds shared resources.
type Server struct {
	Config *config.Config

	Logger *zerolog.Logger

	// LoggerService optionally holds the New Relic application instance.
	LoggerService *loggerPkg.LoggerService

	DB *database.Database

	// Redis is nil when no redis address is configured.
	Redis *redis.Client

	// Cache is nil when caching is disabled; a nil cache is a no-op.
	Cache *cache.SearchCache
}

// New constructs a Server and initializes core dependencies.
//
// A database failure aborts startup. Redis is optional: when it cannot be
// reached the error is logged and the search cache is switched off.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	db, err := database.New(cfg, logger, loggerService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	server := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		DB:            db,
	}

	if cfg.Redis.Address != "" {
		server.Redis = newRedisClient(cfg.Redis, loggerService)

		ctx, cancel := context.WithTimeout(context.Background(), RedisPingTimeout)
		defer cancel()

		if err := server.Redis.Ping(ctx).Err(); err != nil {
			logger.Error().Err(err).Msg("Failed to connect to Redis, continuing without the search cache")
		} else if cfg.CacheEnabled() {
			server.Cache = cache.New(server.Redis, cfg.Cache.TTL)
			logger.Info().Dur("ttl", cfg.Cache.TTL).Msg("property search cache enabled")
		}
	}

	return server, nil
}

// newRedisClient creates the client and, when New Relic is enabled, adds
// hooks so Redis commands show up in distributed traces. The client
// connects lazily.
func newRedisClient(cfg config.RedisConfig, loggerService *loggerPkg.LoggerService) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if loggerService != nil && loggerService.GetApplication() != nil {
		client.AddHook(nrredis.NewHook(client.Options()))
	}

	return client
}

// Shutdown closes the database pool and the Redis client.
func (s *Server) Shutdown(_ context.Context) error {
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			return fmt.Errorf("failed to close redis client: %w", err)
		}
	}

	if s.LoggerService != nil {
		s.LoggerService.Shutdown()
	}

	return nil
}
