package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a byte store over go-redis used as a repository cache backend.
type Store struct {
	db        redis.UniversalClient
	prefix    string
	opTimeout time.Duration
}

// NewStore wraps client. Use NewStoreWithConfig to set a key prefix or per-call timeout.
func NewStore(client redis.UniversalClient) *Store {
	return &Store{db: client}
}

// NewStoreWithConfig wraps client with the prefix and timeout from cfg.
func NewStoreWithConfig(client redis.UniversalClient, cfg Config) *Store {
	return &Store{db: client, prefix: cfg.KeyPrefix, opTimeout: cfg.OpTimeout}
}

// Get returns the value and whether it was found. redis.Nil is a miss, not an error.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()

	val, err := s.db.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set stores value with ttl. A non-positive ttl means no expiration.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	if ttl < 0 {
		ttl = 0
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.db.Set(ctx, s.prefix+key, value, ttl).Err()
}

// Delete removes keys. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			return ErrEmptyKey
		}
		prefixed = append(prefixed, s.prefix+k)
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.db.Del(ctx, prefixed...).Err()
}

func (s *Store) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opTimeout)
}
