package search

import (
	"context"
	"strings"

	"github.com/nijaru/videovoyager/errors"
	"github.com/nijaru/videovoyager/models"
	"github.com/sirupsen/logrus"
)

const defaultMaxResults = 5

type service struct {
	searcher Searcher
	config   Config
	logger   *logrus.Logger
}

func NewService(searcher Searcher, config Config, logger *logrus.Logger) Service {
	if config.MaxResults <= 0 {
		config.MaxResults = defaultMaxResults
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &service{
		searcher: searcher,
		config:   config,
		logger:   logger,
	}
}

func (s *service) SearchVideos(ctx context.Context, query string) ([]models.Video, error) {
	const op = "SearchService.SearchVideos"

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.InvalidInput(op, nil, "Search query is required")
	}

	logger := s.logger.WithContext(ctx).WithField("query", query)

	videos, err := s.searcher.Search(ctx, query, s.config.MaxResults)
	if err != nil {
		logger.WithError(err).Error("Search error")
		return nil, errors.Upstream(op, err, err.Error())
	}
	if videos == nil {
		videos = []models.Video{}
	}

	logger.WithField("results", len(videos)).Debug("Search completed")
	return videos, nil
}
