package session

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nijaru/videovoyager/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(10, time.Hour)

	_, err := store.Get(ctx, "missing")
	assert.True(t, errors.IsNotFound(err))

	require.NoError(t, store.Save(ctx, &Session{ID: "a", VideoID: "dQw4w9WgXcQ", Transcript: "hello"}))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Transcript)
	assert.False(t, got.UpdatedAt.IsZero())
	assert.True(t, got.HasTranscript())

	got.Transcript = "mutated"
	again, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "hello", again.Transcript)

	require.NoError(t, store.Delete(ctx, "a"))
	_, err = store.Get(ctx, "a")
	assert.True(t, errors.IsNotFound(err))
}

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(10, time.Hour)

	require.NoError(t, store.Save(ctx, &Session{ID: "alice", VideoID: "aaaaaaaaaaa", Transcript: "first"}))
	require.NoError(t, store.Save(ctx, &Session{ID: "bob", VideoID: "bbbbbbbbbbb", Transcript: "second"}))

	a, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	b, err := store.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "first", a.Transcript)
	assert.Equal(t, "second", b.Transcript)
}

func TestMemoryStoreCapacity(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(2, time.Hour)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Save(ctx, &Session{ID: fmt.Sprintf("s%d", i), Transcript: "x"}))
	}
	assert.Equal(t, 2, store.Len())
	_, err := store.Get(ctx, "s0")
	assert.True(t, errors.IsNotFound(err))
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(10, 20*time.Millisecond)

	require.NoError(t, store.Save(ctx, &Session{ID: "a", Transcript: "x"}))
	assert.Eventually(t, func() bool {
		_, err := store.Get(ctx, "a")
		return errors.IsNotFound(err)
	}, time.Second, 10*time.Millisecond)
}

func TestSaveRequiresID(t *testing.T) {
	err := NewMemoryStore(1, time.Minute).Save(context.Background(), &Session{})
	assert.True(t, errors.IsInvalidInput(err))
}

func TestHasTranscript(t *testing.T) {
	var nilSession *Session
	assert.False(t, nilSession.HasTranscript())
	assert.False(t, (&Session{ID: "a"}).HasTranscript())
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	ctx := context.Background()
	store := NewRedisStore(client, "videovoyager-test:", time.Minute)
	id := uuid.NewString()

	_, err = store.Get(ctx, id)
	assert.True(t, errors.IsNotFound(err))

	require.NoError(t, store.Save(ctx, &Session{ID: id, VideoID: "dQw4w9WgXcQ", Transcript: "hello"}))
	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", got.VideoID)
	assert.Equal(t, "hello", got.Transcript)

	require.NoError(t, store.Delete(ctx, id))
	_, err = store.Get(ctx, id)
	assert.True(t, errors.IsNotFound(err))
}
