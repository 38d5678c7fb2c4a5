package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultSessionTTL = 30 * time.Minute

// RedisStore keeps selection context in Redis so it survives process
// restarts. Values expire on their own; an expired key reads back as unset,
// which the router already handles as stale navigation.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(chatID int64) string {
	return fmt.Sprintf("session:%d:instrument", chatID)
}

func (s *RedisStore) SetInstrument(ctx context.Context, chatID int64, instrumentID string) error {
	return s.client.Set(ctx, sessionKey(chatID), instrumentID, s.ttl).Err()
}

func (s *RedisStore) Instrument(ctx context.Context, chatID int64) (string, error) {
	val, err := s.client.Get(ctx, sessionKey(chatID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *RedisStore) Clear(ctx context.Context, chatID int64) error {
	return s.client.Del(ctx, sessionKey(chatID)).Err()
}
