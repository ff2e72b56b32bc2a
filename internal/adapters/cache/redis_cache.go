// Package cache backs the shared entity cache with Redis. All admin API
// replicas read the same view; only the optimistic mutation controller
// writes entity keys.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/domain"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/ports"
)

const (
	// entityTTL bounds how long a committed entity value can outlive its
	// list view; the backend stays authoritative either way.
	entityTTL = time.Hour
	listTTL   = 5 * time.Minute
)

type RedisCache struct {
	client *redis.Client
}

var _ ports.EntityCache = (*RedisCache)(nil)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func entityKey(entityType domain.EntityType, id string) string {
	return fmt.Sprintf("workflow:entity:%s:%s", entityType, id)
}

func listKey(name string) string {
	return fmt.Sprintf("workflow:list:%s", name)
}

func (c *RedisCache) GetEntity(ctx context.Context, entityType domain.EntityType, id string) ([]byte, error) {
	raw, err := c.client.Get(ctx, entityKey(entityType, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrEntityNotFound
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *RedisCache) PutEntity(ctx context.Context, entityType domain.EntityType, id string, value []byte) error {
	return c.client.Set(ctx, entityKey(entityType, id), value, entityTTL).Err()
}

func (c *RedisCache) DeleteEntity(ctx context.Context, entityType domain.EntityType, id string) error {
	return c.client.Del(ctx, entityKey(entityType, id)).Err()
}

func (c *RedisCache) GetList(ctx context.Context, name string) ([]byte, error) {
	raw, err := c.client.Get(ctx, listKey(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrEntityNotFound
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *RedisCache) PutList(ctx context.Context, name string, value []byte) error {
	return c.client.Set(ctx, listKey(name), value, listTTL).Err()
}

func (c *RedisCache) InvalidateList(ctx context.Context, name string) error {
	return c.client.Del(ctx, listKey(name)).Err()
}
