package sessions

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var _ Store = (*RedisStore)(nil)

// RedisStore backs the session store with a networked TTL-keyed cache so that
// multiple service instances share one session space. Redis handles TTL
// eviction; the record's own expiry field remains the authoritative check.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// RedisStoreOption defines a function type to modify the RedisStore instance
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix namespaces all session keys, for shared Redis deployments
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		s.keyPrefix = prefix
	}
}

// NewRedisStore creates a session store on top of an existing Redis client
func NewRedisStore(client redis.UniversalClient, options ...RedisStoreOption) *RedisStore {
	store := &RedisStore{
		client:    client,
		keyPrefix: "sessions:",
	}

	for _, opt := range options {
		opt(store)
	}

	return store
}

func (s *RedisStore) Put(ctx context.Context, key string, record *Record, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "[RedisStore.Put] json.Marshal")
	}
	if err := s.client.Set(ctx, s.keyPrefix+key, data, ttl).Err(); err != nil {
		return errors.Wrap(ErrUnavailable, err.Error())
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Record, error) {
	data, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(ErrUnavailable, err.Error())
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.Wrap(err, "[RedisStore.Get] json.Unmarshal")
	}
	return &record, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return errors.Wrap(ErrUnavailable, err.Error())
	}
	return nil
}

func (s *RedisStore) PutString(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.keyPrefix+key, value, ttl).Err(); err != nil {
		return errors.Wrap(ErrUnavailable, err.Error())
	}
	return nil
}

func (s *RedisStore) GetString(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.keyPrefix+key).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.Wrap(ErrUnavailable, err.Error())
	}
	return value, nil
}
