package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisBackend keeps the document under a single redis key.
type RedisBackend struct {
	client redis.Cmdable
	key    string
}

var _ Backend = (*RedisBackend)(nil)

// NewRedisBackend stores the document under "<prefix>:<name>", or "<name>" when prefix is empty.
func NewRedisBackend(client redis.Cmdable, prefix, name string) *RedisBackend {
	key := name
	if prefix != "" {
		key = prefix + ":" + name
	}
	return &RedisBackend{client: client, key: key}
}

func (b *RedisBackend) Name() string {
	return "redis:" + b.key
}

func (b *RedisBackend) Exists(ctx context.Context) (bool, error) {
	n, err := b.client.Exists(ctx, b.key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check key %s: %w", b.key, err)
	}
	return n > 0, nil
}

func (b *RedisBackend) Read(ctx context.Context) ([]byte, error) {
	data, err := b.client.Get(ctx, b.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("failed to read key %s: %w", b.key, err)
	}
	return data, nil
}

func (b *RedisBackend) Write(ctx context.Context, data []byte) error {
	if err := b.client.Set(ctx, b.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write key %s: %w", b.key, err)
	}
	return nil
}
