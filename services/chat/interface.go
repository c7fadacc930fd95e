package chat

import (
	"context"

	"github.com/nijaru/videovoyager/models"
)

type Service interface {
	// ChatAboutVideo answers question against the transcript held by the
	// caller's session. A non-empty videoURL loads that video into the
	// session first. An empty sessionID keeps nothing between calls.
	ChatAboutVideo(ctx context.Context, sessionID, videoURL, question string, translate bool) (*models.ChatResponse, error)
}

type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string) (string, error)
}

type Translator interface {
	TranslateAll(ctx context.Context, texts []string) ([]string, error)
}

type Config struct {
	MaxTranscriptChars int
}
