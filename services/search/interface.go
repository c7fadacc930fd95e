package search

import (
	"context"

	"github.com/nijaru/videovoyager/models"
)

type Service interface {
	// SearchVideos returns up to Config.MaxResults videos matching query.
	SearchVideos(ctx context.Context, query string) ([]models.Video, error)
}

// Searcher is the video search provider.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]models.Video, error)
}

type Config struct {
	MaxResults int
}
