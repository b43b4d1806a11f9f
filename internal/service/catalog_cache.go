package service

import (
	"context"
	"time"

	"github.com/aurelia-jewelry/internal/cache"
	"github.com/aurelia-jewelry/internal/logger"
)

// loadCached 读穿缓存：命中直接返回，未命中调用 load 并回写。缓存异常只记录日志。
func loadCached[T any](ctx context.Context, store *cache.Store, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var cached T
	hit, err := store.GetJSON(ctx, key, &cached)
	if err != nil {
		logger.Warnw("catalog_cache_read_failed", "key", key, "error", err)
	}
	if hit {
		return cached, nil
	}
	value, err := load()
	if err != nil {
		return value, err
	}
	if err := store.SetJSON(ctx, key, value, ttl); err != nil {
		logger.Warnw("catalog_cache_write_failed", "key", key, "error", err)
	}
	return value, nil
}

func invalidateCached(ctx context.Context, store *cache.Store, keys ...string) {
	if err := store.Del(ctx, keys...); err != nil {
		logger.Warnw("catalog_cache_invalidate_failed", "keys", keys, "error", err)
	}
}
