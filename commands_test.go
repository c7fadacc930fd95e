package main

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/nijaru/videovoyager/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bufferLogger() (*logrus.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	return log, &buf
}

func TestAskSessionIDGeneratesWhenEmpty(t *testing.T) {
	log, buf := bufferLogger()

	id := askSessionID(config.SessionConfig{Store: config.StoreMemory}, "", log)

	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestAskSessionIDWarnsWithMemoryStore(t *testing.T) {
	log, buf := bufferLogger()

	id := askSessionID(config.SessionConfig{Store: config.StoreMemory}, "abc", log)

	assert.Equal(t, "abc", id)
	assert.Contains(t, buf.String(), `"level":"warning"`)
	assert.Contains(t, buf.String(), `"session_id":"abc"`)
}

func TestAskSessionIDQuietWithRedisStore(t *testing.T) {
	log, buf := bufferLogger()

	id := askSessionID(config.SessionConfig{Store: config.StoreRedis}, "abc", log)

	assert.Equal(t, "abc", id)
	assert.Empty(t, buf.String())
}
