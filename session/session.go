// Package session keeps the transcript each caller is currently asking
// questions about, keyed by a caller-held session id.
package session

import (
	"context"
	"time"
)

type Session struct {
	ID         string    `json:"id"`
	VideoID    string    `json:"video_id"`
	Transcript string    `json:"transcript"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// HasTranscript reports whether a video has been loaded into the session.
func (s *Session) HasTranscript() bool {
	return s != nil && s.Transcript != ""
}

// Store persists sessions. Get returns a NotFound error for unknown or
// expired ids.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}
