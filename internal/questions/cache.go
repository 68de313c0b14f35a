package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fika-quiz/backend/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	chaptersCacheKey  = "catalog:chapters"
	moduleCacheFormat = "catalog:chapter:%d:module:%d"
)

// RedisCache keeps catalog reads in Redis. The catalog only changes through
// cmd/seed, so entries simply expire after ttl.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) GetChapters(ctx context.Context) ([]int, bool, error) {
	var chapters []int
	ok, err := c.get(ctx, chaptersCacheKey, &chapters)
	return chapters, ok, err
}

func (c *RedisCache) SetChapters(ctx context.Context, chapters []int) error {
	return c.set(ctx, chaptersCacheKey, chapters)
}

func (c *RedisCache) GetModule(ctx context.Context, chapter, module int) ([]models.Question, bool, error) {
	var qs []models.Question
	ok, err := c.get(ctx, fmt.Sprintf(moduleCacheFormat, chapter, module), &qs)
	return qs, ok, err
}

func (c *RedisCache) SetModule(ctx context.Context, chapter, module int, qs []models.Question) error {
	return c.set(ctx, fmt.Sprintf(moduleCacheFormat, chapter, module), qs)
}

// Flush drops every catalog entry. Called after a seed run.
func (c *RedisCache) Flush(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "catalog:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (c *RedisCache) get(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) set(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}
