package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nijaru/videovoyager/errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions as JSON values. Every save refreshes the TTL.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

func NewRedisStore(client redis.UniversalClient, keyPrefix string, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (r *RedisStore) key(id string) string {
	return r.keyPrefix + "session:" + id
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	const op = "RedisStore.Get"

	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err == redis.Nil {
		return nil, errors.NotFound(op, nil, "Session not found")
	}
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to load session")
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Internal(op, err, "Failed to decode session")
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	const op = "RedisStore.Save"

	if s == nil || s.ID == "" {
		return errors.InvalidInput(op, nil, "Session id is required")
	}
	stored := *s
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return errors.Internal(op, err, "Failed to encode session")
	}
	if err := r.client.Set(ctx, r.key(s.ID), data, r.ttl).Err(); err != nil {
		return errors.Internal(op, err, "Failed to save session")
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	const op = "RedisStore.Delete"

	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return errors.Internal(op, err, "Failed to delete session")
	}
	return nil
}
