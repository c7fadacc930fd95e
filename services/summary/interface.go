package summary

import (
	"context"

	"github.com/nijaru/videovoyager/models"
)

type Service interface {
	// SummarizeVideo summarizes the video at videoURL, translating the
	// result when translate is set.
	SummarizeVideo(ctx context.Context, videoURL string, translate bool) (*models.SummaryResponse, error)
}

// TranscriptFetcher resolves a video id to its transcript text.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string) (string, error)
}

type Translator interface {
	TranslateAll(ctx context.Context, texts []string) ([]string, error)
}

type Config struct {
	MaxTranscriptChars int
}
