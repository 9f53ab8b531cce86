package storage

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/jrsteele09/go-job-portal/internal/errors"
	"github.com/redis/go-redis/v9"
)

var _ Storage = (*Redis)(nil)

// Redis stores each key as a plain string under prefix. Keys never expire;
// the session core removes them explicitly on logout.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + ":" + key
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: redis get %s: %v", perrors.ErrStorageUnavailable, key, err)
	}
	return value, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: redis set %s: %v", perrors.ErrStorageUnavailable, key, err)
	}
	return nil
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: redis del %s: %v", perrors.ErrStorageUnavailable, key, err)
	}
	return nil
}
