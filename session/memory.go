package session

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/nijaru/videovoyager/errors"
)

const (
	DefaultMaxSessions = 1000
	DefaultTTL         = 2 * time.Hour
)

// MemoryStore holds at most maxSessions sessions; idle ones expire after ttl.
type MemoryStore struct {
	cache *expirable.LRU[string, Session]
}

func NewMemoryStore(maxSessions int, ttl time.Duration) *MemoryStore {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		cache: expirable.NewLRU[string, Session](maxSessions, nil, ttl),
	}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	const op = "MemoryStore.Get"

	s, ok := m.cache.Get(id)
	if !ok {
		return nil, errors.NotFound(op, nil, "Session not found")
	}
	return &s, nil
}

func (m *MemoryStore) Save(ctx context.Context, s *Session) error {
	const op = "MemoryStore.Save"

	if s == nil || s.ID == "" {
		return errors.InvalidInput(op, nil, "Session id is required")
	}
	stored := *s
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now().UTC()
	}
	m.cache.Add(stored.ID, stored)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.cache.Remove(id)
	return nil
}

func (m *MemoryStore) Len() int {
	return m.cache.Len()
}
