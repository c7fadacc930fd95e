package bootstrap

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/nijaru/videovoyager/config"
	"github.com/nijaru/videovoyager/session"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.YouTube.APIKey = "yt-key"
	cfg.LLM.APIKey = "or-key"
	return cfg
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestNewMemoryOnly(t *testing.T) {
	app, err := New(context.Background(), testConfig(), quietLogger())
	require.NoError(t, err)
	defer app.Close()

	assert.NotNil(t, app.Search)
	assert.NotNil(t, app.Summary)
	assert.NotNil(t, app.Chat)
	assert.IsType(t, &session.MemoryStore{}, app.Sessions)
	assert.Equal(t, 0, app.Fetcher.Len())
}

func TestNewWithSQLiteStore(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.Store = config.StoreSQLite
	cfg.Database.Path = filepath.Join(t.TempDir(), "transcripts.db")

	app, err := New(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	assert.Len(t, app.closers, 1)
	assert.NoError(t, app.Close())
	assert.Empty(t, app.closers)
}

func TestNewRedisUnavailable(t *testing.T) {
	cfg := testConfig()
	cfg.Session.Store = config.StoreRedis
	cfg.Redis.URL = "not-a-redis-url"

	_, err := New(context.Background(), cfg, quietLogger())
	assert.Error(t, err)
}
