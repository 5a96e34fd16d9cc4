package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/shopping"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// CartLockerFactory picks the cart lock backend from configuration
type CartLockerFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// CartLockerFactoryOption is a functional option for configuring the factory
type CartLockerFactoryOption func(*CartLockerFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) CartLockerFactoryOption {
	return func(f *CartLockerFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to
// the in-process locker instead of failing
func WithInMemoryFallback(allow bool) CartLockerFactoryOption {
	return func(f *CartLockerFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewCartLockerFactory creates a new factory
func NewCartLockerFactory(cfg config.RedisConfig, opts ...CartLockerFactoryOption) *CartLockerFactory {
	f := &CartLockerFactory{
		redisConfig: cfg,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns the locker and the Redis client backing it, if any. The
// caller owns the client.
func (f *CartLockerFactory) Create(ctx context.Context) (shopping.CartLocker, *redis.Client, error) {
	if f.redisConfig.Host == "" {
		f.logger.Info("Redis not configured, using in-process cart lock")
		return NewMemoryCartLocker(), nil, nil
	}

	client, err := NewRedisClient(ctx, f.redisConfig)
	if err != nil {
		if !f.allowInMemoryFallback {
			return nil, nil, fmt.Errorf("%w: %v", ErrLockUnavailable, err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-process cart lock",
			zap.String("addr", f.redisConfig.Addr()),
			zap.Error(err),
		)
		return NewMemoryCartLocker(), nil, nil
	}

	f.logger.Info("Using Redis cart lock", zap.String("addr", f.redisConfig.Addr()))
	return NewRedisCartLocker(client, "", f.logger), client, nil
}
