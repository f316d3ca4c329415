package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cwrk-planet/watch-together/internal/domain"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

type Config struct {
	Addr     string
	Password string
	DB       int
}

// VideoCache хранит опубликованные видео по id.
type VideoCache interface {
	Get(ctx context.Context, videoID string) (domain.Video, error)
	Set(ctx context.Context, v domain.Video, ttl time.Duration) error
	Delete(ctx context.Context, videoIDs ...string) error
}

type RedisVideoCache struct {
	client *redis.Client
	prefix string
}

func NewRedisVideoCache(cfg Config, prefix string) (*RedisVideoCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisVideoCache{
		client: client,
		prefix: prefix,
	}, nil
}

func (c *RedisVideoCache) key(videoID string) string {
	return fmt.Sprintf("%s:video:%s", c.prefix, videoID)
}

func (c *RedisVideoCache) Get(ctx context.Context, videoID string) (domain.Video, error) {
	data, err := c.client.Get(ctx, c.key(videoID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Video{}, ErrCacheMiss
		}
		return domain.Video{}, fmt.Errorf("failed to get from redis: %w", err)
	}

	var v domain.Video
	if err := json.Unmarshal(data, &v); err != nil {
		return domain.Video{}, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}

	return v, nil
}

func (c *RedisVideoCache) Set(ctx context.Context, v domain.Video, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	if err := c.client.Set(ctx, c.key(v.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}

	return nil
}

func (c *RedisVideoCache) Delete(ctx context.Context, videoIDs ...string) error {
	if len(videoIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(videoIDs))
	for _, id := range videoIDs {
		keys = append(keys, c.key(id))
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}

	return nil
}

func (c *RedisVideoCache) Close() error {
	return c.client.Close()
}
