package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cwrk-planet/watch-together/internal/domain"
	"github.com/cwrk-planet/watch-together/internal/service"
)

// PublishedCatalog: каталог видео, который умеет проверить статус без чтения всей записи.
type PublishedCatalog interface {
	service.VideoCatalog
	IsPublished(ctx context.Context, videoID string) (bool, error)
}

// CachedCatalog: read-through кэш поверх каталога видео.
// В кэше лежат путь и название, статус при каждом попадании сверяется с базой:
// снятое с публикации видео отклоняется сразу, а запись выкидывается из кэша.
// Промахи не кэшируются, публикация видна сразу.
type CachedCatalog struct {
	next  PublishedCatalog
	cache VideoCache
	ttl   time.Duration
}

func NewCachedCatalog(next PublishedCatalog, cache VideoCache, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{next: next, cache: cache, ttl: ttl}
}

func (c *CachedCatalog) GetPublished(ctx context.Context, videoID string) (domain.Video, error) {
	v, err := c.cache.Get(ctx, videoID)
	if err == nil {
		return c.confirm(ctx, v)
	}
	if !errors.Is(err, ErrCacheMiss) {
		// кэш недоступен, идём в базу
		slog.WarnContext(ctx, "video cache get failed", "video", videoID, "err", err)
	}

	v, err = c.next.GetPublished(ctx, videoID)
	if err != nil {
		return domain.Video{}, err
	}
	if err := c.cache.Set(ctx, v, c.ttl); err != nil {
		slog.WarnContext(ctx, "video cache set failed", "video", videoID, "err", err)
	}

	return v, nil
}

func (c *CachedCatalog) confirm(ctx context.Context, v domain.Video) (domain.Video, error) {
	ok, err := c.next.IsPublished(ctx, v.ID)
	if err != nil {
		return domain.Video{}, err
	}
	if !ok {
		if err := c.cache.Delete(ctx, v.ID); err != nil {
			slog.WarnContext(ctx, "video cache delete failed", "video", v.ID, "err", err)
		}
		return domain.Video{}, service.ErrVideoNotFound
	}

	return v, nil
}
