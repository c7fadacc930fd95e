// Package transcription resolves a video id to its transcript text through a
// bounded in-memory cache, an optional durable repository and the caption
// provider, in that order.
package transcription

import (
	"context"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/nijaru/videovoyager/errors"
	"github.com/nijaru/videovoyager/models"
	"github.com/nijaru/videovoyager/repository"
	"github.com/nijaru/videovoyager/youtube"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const DefaultCacheSize = 100

// Provider returns the caption segments of a video.
type Provider interface {
	Transcript(ctx context.Context, videoID string) ([]models.Segment, error)
}

type Fetcher struct {
	provider Provider
	cache    *lru.Cache[string, string]
	store    repository.TranscriptRepository
	group    singleflight.Group
	logger   *logrus.Logger
}

type Option func(*Fetcher)

// WithStore adds a second cache tier consulted on memory misses.
func WithStore(store repository.TranscriptRepository) Option {
	return func(f *Fetcher) {
		f.store = store
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

func NewFetcher(provider Provider, size int, opts ...Option) (*Fetcher, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "create transcript cache")
	}

	f := &Fetcher{
		provider: provider,
		cache:    cache,
		logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Fetch returns the transcript text for videoID. A provider failure is not
// cached; the next call tries again.
func (f *Fetcher) Fetch(ctx context.Context, videoID string) (string, error) {
	if text, ok := f.cache.Get(videoID); ok {
		f.logger.WithField("video_id", videoID).Debug("Transcript cache hit")
		return text, nil
	}

	// The shared call must not die with whichever caller arrived first.
	shared := context.WithoutCancel(ctx)
	v, err, _ := f.group.Do(videoID, func() (interface{}, error) {
		return f.load(shared, videoID)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (f *Fetcher) load(ctx context.Context, videoID string) (string, error) {
	const op = "Fetcher.load"
	logger := f.logger.WithField("video_id", videoID)

	if text, ok := f.cache.Get(videoID); ok {
		return text, nil
	}

	if f.store != nil {
		t, err := f.store.Find(ctx, videoID)
		switch {
		case err == nil:
			logger.Debug("Transcript loaded from store")
			f.cache.Add(videoID, t.Text)
			return t.Text, nil
		case !errors.IsNotFound(err):
			logger.WithError(err).Warn("Transcript store lookup failed")
		}
	}

	segments, err := f.provider.Transcript(ctx, videoID)
	if err != nil {
		if pkgerrors.Is(err, youtube.ErrTranscriptsDisabled) {
			return "", errors.TranscriptUnavailable(op, err, "This video has no transcript available")
		}
		logger.WithError(err).Error("Transcript provider failed")
		return "", errors.Upstream(op, err, err.Error())
	}

	text := Join(segments)
	if text == "" {
		return "", errors.TranscriptUnavailable(op, nil, "This video has no transcript available")
	}

	f.cache.Add(videoID, text)
	logger.WithField("chars", len(text)).Info("Transcript fetched")

	if f.store != nil {
		err := f.store.Save(ctx, &models.Transcript{
			VideoID:   videoID,
			Text:      text,
			FetchedAt: time.Now().UTC(),
		})
		if err != nil {
			logger.WithError(err).Warn("Failed to persist transcript")
		}
	}

	return text, nil
}

// Join concatenates segment texts with single spaces, dropping timing.
func Join(segments []models.Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if text := strings.TrimSpace(s.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// Contains reports whether videoID is in memory without touching recency.
func (f *Fetcher) Contains(videoID string) bool {
	return f.cache.Contains(videoID)
}

func (f *Fetcher) Len() int {
	return f.cache.Len()
}
