package repository

import (
	"context"

	"github.com/nijaru/videovoyager/models"
)

// TranscriptRepository is a durable second tier behind the in-memory
// transcript cache. Find returns a NotFound AppError on a miss.
type TranscriptRepository interface {
	Save(ctx context.Context, transcript *models.Transcript) error
	Find(ctx context.Context, videoID string) (*models.Transcript, error)
	Close() error
}
