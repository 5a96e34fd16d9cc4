package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/shopping"
	"go.uber.org/zap"
)

const (
	defaultLockPrefix = "cart:lock:"
	minLockBackoff    = 5 * time.Millisecond
	maxLockBackoff    = 100 * time.Millisecond
	unlockTimeout     = 2 * time.Second
)

// unlockScript deletes the key only while it still holds our token, so an
// expired lock re-acquired by another request is left alone
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisCartLocker serialises cart writes across instances with a Redis
// SET NX PX lock per user
type RedisCartLocker struct {
	client    redis.UniversalClient
	keyPrefix string
	logger    *zap.Logger
}

// NewRedisCartLocker creates a locker on an existing client
func NewRedisCartLocker(client redis.UniversalClient, keyPrefix string, logger *zap.Logger) *RedisCartLocker {
	if keyPrefix == "" {
		keyPrefix = defaultLockPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCartLocker{client: client, keyPrefix: keyPrefix, logger: logger}
}

// Lock polls with capped exponential backoff until the lock is taken or
// ctx is done. The lock expires after ttl if never released.
func (l *RedisCartLocker) Lock(ctx context.Context, userID uuid.UUID, ttl time.Duration) (func(), error) {
	key := l.keyPrefix + userID.String()
	token := uuid.NewString()
	backoff := minLockBackoff

	for {
		ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("failed to acquire cart lock: %w", err)
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		backoff = min(backoff*2, maxLockBackoff)
	}
}

// release runs on its own context so a cancelled request still frees the
// lock. A failed release leaves the user's cart blocked until the ttl runs out.
func (l *RedisCartLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), unlockTimeout)
	defer cancel()

	deleted, err := unlockScript.Run(ctx, l.client, []string{key}, token).Int64()
	if err != nil {
		l.logger.Warn("Failed to release cart lock",
			zap.String("key", key),
			zap.Error(err))
		return
	}
	if deleted == 0 {
		l.logger.Warn("Cart lock expired before release", zap.String("key", key))
	}
}

// MemoryCartLocker serialises cart writes within one process. The ttl is
// ignored since a crashed holder takes the process down with it.
type MemoryCartLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*userLock
}

type userLock struct {
	sem  chan struct{}
	refs int
}

// NewMemoryCartLocker creates an in-process locker
func NewMemoryCartLocker() *MemoryCartLocker {
	return &MemoryCartLocker{locks: make(map[uuid.UUID]*userLock)}
}

// Lock blocks until the user's lock is free or ctx is done
func (l *MemoryCartLocker) Lock(ctx context.Context, userID uuid.UUID, _ time.Duration) (func(), error) {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{sem: make(chan struct{}, 1)}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	select {
	case ul.sem <- struct{}{}:
	case <-ctx.Done():
		l.forget(userID, ul)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-ul.sem
			l.forget(userID, ul)
		})
	}, nil
}

// forget drops the entry once nobody holds or waits for it
func (l *MemoryCartLocker) forget(userID uuid.UUID, ul *userLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ul.refs--
	if ul.refs == 0 {
		delete(l.locks, userID)
	}
}

// held returns the number of users with a holder or waiter
func (l *MemoryCartLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// ErrLockUnavailable is returned by the factory when Redis is required but
// unreachable
var ErrLockUnavailable = errors.New("cart lock backend unavailable")

var (
	_ shopping.CartLocker = (*RedisCartLocker)(nil)
	_ shopping.CartLocker = (*MemoryCartLocker)(nil)
)
