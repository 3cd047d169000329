package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/stakevault/stakevault/internal/identity"
)

const recordKeyPrefix = "account:v1:"

// RedisStore persists account records in Redis, one key per address.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore builds a Redis-backed account store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func recordKey(address identity.Identity) string {
	return recordKeyPrefix + address.String()
}

// Allocate reserves the address with SETNX so concurrent allocations of the
// same derived address cannot both succeed.
func (s *RedisStore) Allocate(ctx context.Context, address identity.Identity, size int, _ identity.Identity) error {
	ok, err := s.client.SetNX(ctx, recordKey(address), make([]byte, size), 0).Result()
	if err != nil {
		return fmt.Errorf("allocate %s: %w", address, err)
	}
	if !ok {
		return ErrAccountExists
	}
	return nil
}

// Write replaces the record, enforcing the allocated size.
func (s *RedisStore) Write(ctx context.Context, address identity.Identity, data []byte) error {
	current, err := s.client.Get(ctx, recordKey(address)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrAccountNotFound
	}
	if err != nil {
		return fmt.Errorf("read %s before write: %w", address, err)
	}
	if len(data) != len(current) {
		return ErrRecordSize
	}
	if err := s.client.Set(ctx, recordKey(address), data, 0).Err(); err != nil {
		return fmt.Errorf("write %s: %w", address, err)
	}
	return nil
}

// Release deletes the record so the address can be allocated again.
func (s *RedisStore) Release(ctx context.Context, address identity.Identity) error {
	if err := s.client.Del(ctx, recordKey(address)).Err(); err != nil {
		return fmt.Errorf("release %s: %w", address, err)
	}
	return nil
}

// Read returns the record at the address.
func (s *RedisStore) Read(ctx context.Context, address identity.Identity) ([]byte, error) {
	data, err := s.client.Get(ctx, recordKey(address)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", address, err)
	}
	return data, nil
}
