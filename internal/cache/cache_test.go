package cache

import (
	"context"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	catalogdomain "github.com/smallbiznis/dinepos/internal/catalog/domain"
	"github.com/smallbiznis/dinepos/internal/clock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTTLCacheExpires(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	c := newTTLCache[string, int](fake.Now)

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, 0)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	fake.Advance(time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)

	v, ok = c.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	c.Delete("b")
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestMemoryMenuCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryMenuCache()

	_, ok := c.Get(ctx)
	assert.False(t, ok)

	items := []catalogdomain.MenuItem{{ID: 1, Name: "Tea"}}
	c.Set(ctx, items)
	items[0].Name = "mutated"

	got, ok := c.Get(ctx)
	assert.True(t, ok)
	assert.Equal(t, "Tea", got[0].Name)

	c.Invalidate(ctx)
	_, ok = c.Get(ctx)
	assert.False(t, ok)
}

func TestNewMenuCacheFromConfigSelectsImplementation(t *testing.T) {
	_, isMemory := NewMenuCacheFromConfig(nil, zap.NewNop()).(*memoryMenuCache)
	assert.True(t, isMemory)

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()
	_, isRedis := NewMenuCacheFromConfig(client, zap.NewNop()).(*redisMenuCache)
	assert.True(t, isRedis)
}

func TestRedisMenuCacheDegradesToMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewRedisMenuCache(client, zap.NewNop())
	ctx := context.Background()
	c.Set(ctx, []catalogdomain.MenuItem{{ID: 1}})
	_, ok := c.Get(ctx)
	assert.False(t, ok)
	c.Invalidate(ctx)
}
