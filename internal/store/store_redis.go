package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"bims/pkg/platform/sentinel"
)

// RedisStore is the Redis-backed entity store. This is the production
// implementation; records are hashes, counters are plain integer keys and
// indexes are sets.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a Redis-backed entity store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) PutFields(ctx context.Context, entityType, id string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	// Flatten to one HSET so all fields of the write land atomically on the key.
	pairs := make([]any, 0, len(fields)*2)
	for field, value := range fields {
		pairs = append(pairs, field, value)
	}
	if err := s.client.HSet(ctx, Key(entityType, id), pairs...).Err(); err != nil {
		return fmt.Errorf("hset %s: %w", Key(entityType, id), wrapUnavailable(err))
	}
	return nil
}

func (s *RedisStore) GetAll(ctx context.Context, entityType, id string) (map[string]string, error) {
	fields, err := s.client.HGetAll(ctx, Key(entityType, id)).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", Key(entityType, id), wrapUnavailable(err))
	}
	return fields, nil
}

func (s *RedisStore) GetField(ctx context.Context, entityType, id, field string) (string, error) {
	value, err := s.client.HGet(ctx, Key(entityType, id), field).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("hget %s %s: %w", Key(entityType, id), field, wrapUnavailable(err))
	}
	return value, nil
}

func (s *RedisStore) Delete(ctx context.Context, entityType, id string) error {
	if err := s.client.Del(ctx, Key(entityType, id)).Err(); err != nil {
		return fmt.Errorf("del %s: %w", Key(entityType, id), wrapUnavailable(err))
	}
	return nil
}

func (s *RedisStore) ListIDs(ctx context.Context, entityType string) ([]string, error) {
	var (
		ids    []string
		cursor uint64
		prefix = entityType + ":"
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scan %s*: %w", prefix, wrapUnavailable(err))
		}
		for _, key := range keys {
			// Index keys like "user:<name>:certificates" share the prefix but
			// are not records.
			id := strings.TrimPrefix(key, prefix)
			if strings.Contains(id, ":") {
				continue
			}
			ids = append(ids, id)
		}
		cursor = next
		if cursor == 0 {
			return ids, nil
		}
	}
}

func (s *RedisStore) Incr(ctx context.Context, counter string) (int64, error) {
	value, err := s.client.Incr(ctx, counter).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", counter, wrapUnavailable(err))
	}
	return value, nil
}

func (s *RedisStore) SetAdd(ctx context.Context, key, member string) error {
	if err := s.client.SAdd(ctx, key, member).Err(); err != nil {
		return fmt.Errorf("sadd %s: %w", key, wrapUnavailable(err))
	}
	return nil
}

func (s *RedisStore) SetRemove(ctx context.Context, key, member string) error {
	if err := s.client.SRem(ctx, key, member).Err(); err != nil {
		return fmt.Errorf("srem %s: %w", key, wrapUnavailable(err))
	}
	return nil
}

func (s *RedisStore) SetIsMember(ctx context.Context, key, member string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, key, member).Result()
	if err != nil {
		return false, fmt.Errorf("sismember %s: %w", key, wrapUnavailable(err))
	}
	return ok, nil
}

func (s *RedisStore) SetMembers(ctx context.Context, key string) ([]string, error) {
	members, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("smembers %s: %w", key, wrapUnavailable(err))
	}
	return members, nil
}

func wrapUnavailable(err error) error {
	return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
}
