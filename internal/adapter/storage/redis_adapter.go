package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/borrowhub/internal/port"
)

const (
	submissionGuardPrefix = "submit:"
	inventorySnapshotKey  = "inventory:list"
	submissionGuardTTL    = 24 * time.Hour
)

// RedisAdapter implements port.CacheRepository. It carries the fast-path
// double-submit guard and the inventory listing snapshot; the store keeps
// the authoritative state either way, so every failure here is
// recoverable.
type RedisAdapter struct {
	client      *redis.Client
	snapshotTTL time.Duration
}

func NewRedisAdapter(client *redis.Client, snapshotTTL time.Duration) *RedisAdapter {
	return &RedisAdapter{
		client:      client,
		snapshotTTL: snapshotTTL,
	}
}

func (r *RedisAdapter) SetSubmissionGuard(ctx context.Context, key string) (bool, error) {
	return r.client.SetNX(ctx, submissionGuardPrefix+key, 1, submissionGuardTTL).Result()
}

func (r *RedisAdapter) ReleaseSubmissionGuard(ctx context.Context, key string) error {
	return r.client.Del(ctx, submissionGuardPrefix+key).Err()
}

func (r *RedisAdapter) ReadInventorySnapshot(ctx context.Context) ([]byte, error) {
	payload, err := r.client.Get(ctx, inventorySnapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (r *RedisAdapter) WriteInventorySnapshot(ctx context.Context, payload []byte) error {
	return r.client.Set(ctx, inventorySnapshotKey, payload, r.snapshotTTL).Err()
}

var _ port.CacheRepository = (*RedisAdapter)(nil)
