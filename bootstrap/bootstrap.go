// Package bootstrap builds the application components from configuration.
package bootstrap

import (
	"context"
	"io"

	"github.com/nijaru/videovoyager/config"
	"github.com/nijaru/videovoyager/llm"
	"github.com/nijaru/videovoyager/repository"
	"github.com/nijaru/videovoyager/repository/sqlite"
	"github.com/nijaru/videovoyager/services/chat"
	"github.com/nijaru/videovoyager/services/search"
	"github.com/nijaru/videovoyager/services/summary"
	"github.com/nijaru/videovoyager/session"
	"github.com/nijaru/videovoyager/storage"
	"github.com/nijaru/videovoyager/transcription"
	"github.com/nijaru/videovoyager/translation"
	"github.com/nijaru/videovoyager/validation"
	"github.com/nijaru/videovoyager/youtube"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type App struct {
	Search  search.Service
	Summary summary.Service
	Chat    chat.Service

	Fetcher  *transcription.Fetcher
	Sessions session.Store

	logger  *logrus.Logger
	closers []io.Closer
}

// New wires the providers, stores and services described by cfg. The
// returned App owns every opened connection; call Close when done.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	app := &App{logger: logger}

	var redisClient *redis.Client
	needsRedis := cfg.Cache.Store == config.StoreRedis || cfg.Session.Store == config.StoreRedis
	if needsRedis {
		client, err := storage.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, errors.Wrap(err, "connect to redis")
		}
		redisClient = client
		app.closers = append(app.closers, client)
	}

	store, err := newTranscriptStore(ctx, cfg, redisClient)
	if err != nil {
		app.Close()
		return nil, err
	}
	if store != nil {
		app.closers = append(app.closers, store)
	}

	fetcherOpts := []transcription.Option{transcription.WithLogger(logger)}
	if store != nil {
		fetcherOpts = append(fetcherOpts, transcription.WithStore(store))
	}
	fetcher, err := transcription.NewFetcher(youtube.NewTranscriptClient(cfg.YouTube), cfg.Cache.Size, fetcherOpts...)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Fetcher = fetcher

	switch cfg.Session.Store {
	case config.StoreRedis:
		app.Sessions = session.NewRedisStore(redisClient, cfg.Redis.KeyPrefix, cfg.Session.TTL)
	default:
		app.Sessions = session.NewMemoryStore(cfg.Session.MaxSessions, cfg.Session.TTL)
	}

	completer := llm.NewClient(cfg.LLM, llm.WithLogger(logger))
	translator := translation.New(completer, cfg.LLM.TranslationLanguage, logger)

	app.Search = search.NewService(
		youtube.NewSearchClient(cfg.YouTube),
		search.Config{MaxResults: cfg.YouTube.MaxResults},
		logger,
	)
	app.Summary = summary.NewService(
		fetcher,
		completer,
		translator,
		validation.NewValidator(),
		summary.Config{MaxTranscriptChars: cfg.LLM.MaxTranscriptChars},
		logger,
	)
	app.Chat = chat.NewService(
		fetcher,
		completer,
		translator,
		app.Sessions,
		chat.Config{MaxTranscriptChars: cfg.LLM.MaxTranscriptChars},
		logger,
	)

	logger.WithFields(logrus.Fields{
		"transcript_store": cfg.Cache.Store,
		"session_store":    cfg.Session.Store,
		"cache_size":       cfg.Cache.Size,
		"model":            cfg.LLM.Model,
	}).Info("Application initialized")

	return app, nil
}

func newTranscriptStore(ctx context.Context, cfg *config.Config, redisClient *redis.Client) (repository.TranscriptRepository, error) {
	switch cfg.Cache.Store {
	case config.StoreSQLite:
		dbCfg := sqlite.DefaultDBConfig()
		if cfg.Database.MaxConnections > 0 {
			dbCfg.MaxConnections = cfg.Database.MaxConnections
		}
		repo, err := sqlite.Open(cfg.Database.Path, dbCfg)
		if err != nil {
			return nil, errors.Wrap(err, "open sqlite transcript store")
		}
		return repo, nil
	case config.StoreRedis:
		return storage.NewRedisStore(redisClient, cfg.Redis.KeyPrefix, cfg.Redis.TTL), nil
	case config.StoreS3:
		s, err := storage.NewSpacesStore(ctx, cfg.Spaces)
		if err != nil {
			return nil, errors.Wrap(err, "create spaces transcript store")
		}
		return s, nil
	default:
		return nil, nil
	}
}

// Close releases stores and connections in reverse order of creation.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.WithError(err).Error("Failed to close resource")
			if first == nil {
				first = err
			}
		}
	}
	a.closers = nil
	return first
}
