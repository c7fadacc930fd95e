package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nijaru/videovoyager/config"
	"github.com/nijaru/videovoyager/errors"
	"github.com/nijaru/videovoyager/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 is a minimal path-style object server.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = data
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		data, ok := f.objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestSpacesStore(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	ctx := context.Background()
	store, err := NewSpacesStore(ctx, config.SpacesConfig{
		AccessKey: "key",
		SecretKey: "secret",
		Region:    "us-east-1",
		Endpoint:  srv.URL,
		Bucket:    "videos",
		Prefix:    "transcripts",
	})
	require.NoError(t, err)

	_, err = store.Find(ctx, "dQw4w9WgXcQ")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	err = store.Save(ctx, &models.Transcript{VideoID: "dQw4w9WgXcQ", Text: "never gonna give you up"})
	require.NoError(t, err)

	fake.mu.Lock()
	_, stored := fake.objects["/videos/transcripts/dQw4w9WgXcQ.json"]
	fake.mu.Unlock()
	assert.True(t, stored)

	got, err := store.Find(ctx, "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "never gonna give you up", got.Text)
	assert.False(t, got.FetchedAt.IsZero())
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}

	ctx := context.Background()
	client, err := NewRedisClient(ctx, config.RedisConfig{URL: url})
	require.NoError(t, err)
	defer client.Close()

	prefix := "vvtest:" + strings.ReplaceAll(t.Name(), "/", "_") + ":"
	store := NewRedisStore(client, prefix, time.Minute)

	_, err = store.Find(ctx, "missing0000")
	assert.True(t, errors.IsNotFound(err))

	require.NoError(t, store.Save(ctx, &models.Transcript{VideoID: "dQw4w9WgXcQ", Text: "hello"}))
	got, err := store.Find(ctx, "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Text)

	client.Del(ctx, store.key("dQw4w9WgXcQ"))
}

func TestNewRedisClientBadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), config.RedisConfig{URL: "not a url"})
	assert.Error(t, err)
}
