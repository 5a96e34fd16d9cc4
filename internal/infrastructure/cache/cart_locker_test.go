package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMemoryCartLocker_SerialisesOneUser(t *testing.T) {
	locker := NewMemoryCartLocker()
	userID := uuid.New()

	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(context.Background(), userID, time.Second)
			if !assert.NoError(t, err) {
				return
			}
			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load())
	assert.Zero(t, locker.held())
}

func TestMemoryCartLocker_UsersDoNotBlockEachOther(t *testing.T) {
	locker := NewMemoryCartLocker()

	unlockA, err := locker.Lock(context.Background(), uuid.New(), time.Second)
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	unlockB, err := locker.Lock(ctx, uuid.New(), time.Second)
	require.NoError(t, err)
	unlockB()
}

func TestMemoryCartLocker_ContextCancelled(t *testing.T) {
	locker := NewMemoryCartLocker()
	userID := uuid.New()

	unlock, err := locker.Lock(context.Background(), userID, time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, userID, time.Second)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	unlock()
	unlock()
	assert.Zero(t, locker.held())
}

func TestCartLockerFactory(t *testing.T) {
	t.Run("no redis host uses memory locker", func(t *testing.T) {
		locker, client, err := NewCartLockerFactory(config.RedisConfig{}).Create(context.Background())
		require.NoError(t, err)
		assert.Nil(t, client)
		assert.IsType(t, &MemoryCartLocker{}, locker)
	})

	unreachable := config.RedisConfig{Host: "127.0.0.1", Port: 1}

	t.Run("unreachable redis falls back when allowed", func(t *testing.T) {
		locker, client, err := NewCartLockerFactory(unreachable, WithInMemoryFallback(true)).Create(context.Background())
		require.NoError(t, err)
		assert.Nil(t, client)
		assert.IsType(t, &MemoryCartLocker{}, locker)
	})

	t.Run("unreachable redis fails otherwise", func(t *testing.T) {
		_, _, err := NewCartLockerFactory(unreachable).Create(context.Background())
		assert.ErrorIs(t, err, ErrLockUnavailable)
	})
}

func TestRedisCartLocker_ReleaseFailureIsLogged(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	core, logs := observer.New(zapcore.WarnLevel)
	locker := NewRedisCartLocker(client, "", zap.New(core))

	key := defaultLockPrefix + uuid.NewString()
	locker.release(key, uuid.NewString())

	entries := logs.FilterMessage("Failed to release cart lock").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, key, entries[0].ContextMap()["key"])
	assert.Contains(t, entries[0].ContextMap(), "error")
}

func TestNewRedisCartLocker_Defaults(t *testing.T) {
	locker := NewRedisCartLocker(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), "", nil)
	t.Cleanup(func() { _ = locker.client.Close() })

	assert.Equal(t, defaultLockPrefix, locker.keyPrefix)
	assert.NotNil(t, locker.logger)
}
