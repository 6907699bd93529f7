package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// redisDocumentRepository keeps documents as plain string values under a
// common prefix, so several app instances can share one set of preferences.
type redisDocumentRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisDocumentRepository(client *redis.Client, prefix string) DocumentRepository {
	return &redisDocumentRepository{client: client, prefix: prefix}
}

func (r *redisDocumentRepository) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, fmt.Errorf("document key is required")
	}
	value, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *redisDocumentRepository) Put(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("document key is required")
	}
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}

func (r *redisDocumentRepository) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("document key is required")
	}
	return r.client.Del(ctx, r.prefix+key).Err()
}
