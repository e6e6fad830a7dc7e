package resultcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/recipefinder/backend/internal/types"
)

// KeyPrefix namespaces the per-session slot keys.
const KeyPrefix = "recommendations"

// RedisStore keeps one key per session. The TTL bounds how long an unread
// result set outlives an abandoned browser session.
type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a Redis backed store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &RedisStore{redis: client, ttl: ttl}
}

func key(sessionID string) string {
	return fmt.Sprintf("%s:%s", KeyPrefix, sessionID)
}

// Store overwrites the session's slot.
func (s *RedisStore) Store(ctx context.Context, sessionID string, records []types.RecipeRecord) error {
	if sessionID == "" {
		return ErrNoSession
	}
	if records == nil {
		records = []types.RecipeRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := s.redis.Set(ctx, key(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store results: %w", err)
	}
	return nil
}

// TakeAndClear reads and deletes the slot atomically with GETDEL.
func (s *RedisStore) TakeAndClear(ctx context.Context, sessionID string) ([]types.RecipeRecord, bool, error) {
	if sessionID == "" {
		return nil, false, ErrNoSession
	}
	data, err := s.redis.GetDel(ctx, key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to take results: %w", err)
	}

	var records []types.RecipeRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal results: %w", err)
	}
	return records, true, nil
}
