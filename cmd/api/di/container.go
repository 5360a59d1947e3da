package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"mongo-user-api/cmd/api/infrastructure"
	"mongo-user-api/internal/adapter/cache"
	"mongo-user-api/internal/adapter/db/mongodb"
	ginhandler "mongo-user-api/internal/adapter/gin/handler"
	"mongo-user-api/internal/adapter/gin/middleware"
	"mongo-user-api/internal/adapter/repository/cached"
	"mongo-user-api/internal/config"
	"mongo-user-api/internal/usecase/user"
	redisclient "mongo-user-api/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Mongo       *infrastructure.Mongo
	RedisClient *redisclient.Client
	UserUC      user.Usecase
	Handler     *ginhandler.UserHandler
	RateLimit   middleware.RateLimiterConfig
}

// NewContainer creates and initializes all application dependencies
func NewContainer(cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Initialize the store
	mg, err := infrastructure.NewMongo(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MongoDB: %w", err)
	}

	storeRepo := mongodb.NewUserRepository(mg.Collection, l)

	// Declare the email uniqueness constraint to the store. The constraint
	// is enforced by the store on every write from here on.
	indexCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := storeRepo.EnsureEmailIndex(indexCtx); err != nil {
		_ = mg.Close(context.Background())
		return nil, err
	}

	// Redis backs the optional read cache and the rate limiter; connect
	// only when a component needs it.
	var rdb *redisclient.Client
	if cfg.Cache.Enabled || cfg.RateLimit.Enabled {
		rdb, err = infrastructure.NewRedisClient(cfg, l)
		if err != nil {
			_ = mg.Close(context.Background())
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
	}

	repo := user.Repository(storeRepo)
	if cfg.Cache.Enabled {
		userCache := cache.NewRedisUserCache(
			rdb.Client,
			time.Duration(cfg.Cache.TTLSeconds)*time.Second,
			l,
		)
		repo = cached.NewUserRepository(storeRepo, userCache, l)
	}

	userUC := user.New(repo, l)
	handler := ginhandler.NewUserHandler(userUC, mg, l)

	return &Container{
		Config:      cfg,
		Logger:      l,
		Mongo:       mg,
		RedisClient: rdb,
		UserUC:      userUC,
		Handler:     handler,
		RateLimit: middleware.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstCapacity:     cfg.RateLimit.BurstCapacity,
			Enabled:           cfg.RateLimit.Enabled,
		},
	}, nil
}

// RawRedis returns the underlying redis client, or nil when Redis is not
// configured for any component.
func (c *Container) RawRedis() *redis.Client {
	if c.RedisClient == nil {
		return nil
	}
	return c.RedisClient.Client
}

// Close closes all resources held by the container
func (c *Container) Close(ctx context.Context) error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.Mongo != nil {
		if err := c.Mongo.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to close MongoDB: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
