package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nijaru/videovoyager/config"
	"github.com/nijaru/videovoyager/errors"
	"github.com/nijaru/videovoyager/models"
	pkgerrors "github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient parses cfg.URL and checks the connection.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "parse redis url")
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, pkgerrors.Wrap(err, "ping redis")
	}
	return client, nil
}

// RedisStore keeps transcripts as JSON values with a TTL.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

func NewRedisStore(client redis.UniversalClient, keyPrefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (s *RedisStore) key(videoID string) string {
	return s.keyPrefix + "transcript:" + videoID
}

func (s *RedisStore) Save(ctx context.Context, t *models.Transcript) error {
	const op = "RedisStore.Save"

	stored := *t
	if stored.FetchedAt.IsZero() {
		stored.FetchedAt = time.Now().UTC()
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return errors.Internal(op, err, "Failed to encode transcript")
	}

	if err := s.client.Set(ctx, s.key(t.VideoID), data, s.ttl).Err(); err != nil {
		return errors.Internal(op, err, "Failed to save transcript to redis")
	}
	return nil
}

func (s *RedisStore) Find(ctx context.Context, videoID string) (*models.Transcript, error) {
	const op = "RedisStore.Find"

	data, err := s.client.Get(ctx, s.key(videoID)).Bytes()
	if err == redis.Nil {
		return nil, errors.NotFound(op, nil, "Transcript not found")
	}
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to get transcript from redis")
	}

	var t models.Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, errors.Internal(op, err, "Failed to decode transcript")
	}
	return &t, nil
}

// Close is a no-op; the client is shared with the session store and closed by its owner.
func (s *RedisStore) Close() error {
	return nil
}
