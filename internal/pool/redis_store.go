package pool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tubetext/internal/domain"
)

// RedisStore keeps the cache record under a single key. Deployments running
// several instances against one pool share it without the file-race caveat
// of FileStore.
type RedisStore struct {
	Client *redis.Client
	Key    string
}

func (s *RedisStore) Load(ctx context.Context) (*domain.CacheRecord, error) {
	data, err := s.Client.Get(ctx, s.Key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("read proxy cache key %s: %w", s.Key, err)
	}

	var record domain.CacheRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode proxy cache key %s: %w", s.Key, err)
	}
	return &record, nil
}

func (s *RedisStore) Save(ctx context.Context, record domain.CacheRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode proxy cache: %w", err)
	}

	ttl := time.Until(record.ExpiryIn)
	if ttl <= 0 {
		ttl = time.Minute
	}

	if err := s.Client.Set(ctx, s.Key, data, ttl).Err(); err != nil {
		return fmt.Errorf("write proxy cache key %s: %w", s.Key, err)
	}
	return nil
}
