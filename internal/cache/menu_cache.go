package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
	catalogdomain "github.com/smallbiznis/dinepos/internal/catalog/domain"
	"go.uber.org/zap"
)

const (
	defaultMenuTTL = 10 * time.Minute
	menuKey        = "dinepos:menu:v1"
)

// MenuCache holds the ordered menu listing between catalog writes.
type MenuCache interface {
	Get(ctx context.Context) ([]catalogdomain.MenuItem, bool)
	Set(ctx context.Context, items []catalogdomain.MenuItem)
	Invalidate(ctx context.Context)
}

type memoryMenuCache struct {
	items Cache[string, []catalogdomain.MenuItem]
	ttl   time.Duration
}

// NewMemoryMenuCache returns a process-local menu cache.
func NewMemoryMenuCache() MenuCache {
	return &memoryMenuCache{
		items: NewTTLCache[string, []catalogdomain.MenuItem](),
		ttl:   defaultMenuTTL,
	}
}

func (c *memoryMenuCache) Get(_ context.Context) ([]catalogdomain.MenuItem, bool) {
	items, ok := c.items.Get(menuKey)
	if !ok {
		return nil, false
	}
	return cloneItems(items), true
}

func (c *memoryMenuCache) Set(_ context.Context, items []catalogdomain.MenuItem) {
	c.items.Set(menuKey, cloneItems(items), c.ttl)
}

func (c *memoryMenuCache) Invalidate(_ context.Context) {
	c.items.Delete(menuKey)
}

type redisMenuCache struct {
	client *redis.Client
	log    *zap.Logger
	ttl    time.Duration
}

// NewRedisMenuCache stores the menu as JSON under a single key. Redis errors
// degrade to cache misses.
func NewRedisMenuCache(client *redis.Client, log *zap.Logger) MenuCache {
	return &redisMenuCache{
		client: client,
		log:    log.Named("cache.menu"),
		ttl:    defaultMenuTTL,
	}
}

func (c *redisMenuCache) Get(ctx context.Context) ([]catalogdomain.MenuItem, bool) {
	raw, err := c.client.Get(ctx, menuKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("menu cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var items []catalogdomain.MenuItem
	if err := json.Unmarshal(raw, &items); err != nil {
		c.log.Warn("menu cache payload invalid", zap.Error(err))
		return nil, false
	}
	return items, true
}

func (c *redisMenuCache) Set(ctx context.Context, items []catalogdomain.MenuItem) {
	payload, err := json.Marshal(items)
	if err != nil {
		c.log.Warn("menu cache encode failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, menuKey, payload, c.ttl).Err(); err != nil {
		c.log.Warn("menu cache write failed", zap.Error(err))
	}
}

func (c *redisMenuCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, menuKey).Err(); err != nil {
		c.log.Warn("menu cache invalidate failed", zap.Error(err))
	}
}

func cloneItems(items []catalogdomain.MenuItem) []catalogdomain.MenuItem {
	if items == nil {
		return nil
	}
	out := make([]catalogdomain.MenuItem, len(items))
	copy(out, items)
	return out
}
