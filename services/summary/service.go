package summary

import (
	"context"

	"github.com/nijaru/videovoyager/errors"
	"github.com/nijaru/videovoyager/llm"
	"github.com/nijaru/videovoyager/models"
	"github.com/nijaru/videovoyager/parser"
	"github.com/nijaru/videovoyager/prompt"
	"github.com/nijaru/videovoyager/translation"
	"github.com/nijaru/videovoyager/validation"
	"github.com/sirupsen/logrus"
)

type service struct {
	fetcher    TranscriptFetcher
	completer  llm.Completer
	translator Translator
	validator  *validation.Validator
	formatter  *prompt.Formatter
	logger     *logrus.Logger
}

// NewService creates a new summary service. translator may be nil, in which
// case translation requests are ignored.
func NewService(
	fetcher TranscriptFetcher,
	completer llm.Completer,
	translator Translator,
	validator *validation.Validator,
	config Config,
	logger *logrus.Logger,
) Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &service{
		fetcher:    fetcher,
		completer:  completer,
		translator: translator,
		validator:  validator,
		formatter:  prompt.NewFormatter(config.MaxTranscriptChars),
		logger:     logger,
	}
}

func (s *service) SummarizeVideo(ctx context.Context, videoURL string, translate bool) (*models.SummaryResponse, error) {
	const op = "SummaryService.SummarizeVideo"

	videoID, err := s.validator.VideoURL(videoURL)
	if err != nil {
		return nil, err
	}
	logger := s.logger.WithContext(ctx).WithField("video_id", videoID)

	transcript, err := s.fetcher.Fetch(ctx, videoID)
	if err != nil {
		if appErr, ok := errors.As(err); ok && appErr.Kind == errors.KindUpstream {
			return nil, errors.Upstream(op, err, "Failed to get video transcript: "+appErr.Message)
		}
		return nil, err
	}

	raw, err := s.completer.Complete(ctx, s.formatter.Summarize(transcript))
	if err != nil {
		logger.WithError(err).Error("Summary request failed")
		return nil, errors.Upstream(op, err, "Failed to get summary from OpenRouter")
	}

	answer := parser.ParseSummary(raw)
	resp := &models.SummaryResponse{
		VideoID:   videoID,
		Summary:   answer.Summary,
		KeyPoints: answer.KeyPointsText,
		Facts:     answer.KeyPoints,
	}

	if translate && s.translator != nil {
		s.translate(ctx, resp, logger)
	}

	logger.WithField("key_points", len(resp.Facts)).Info("Video summarized")
	return resp, nil
}

// translate rewrites the summary and the key points block in place. A field
// that fails holds the failure placeholder; facts are re-derived only from a
// block that translated.
func (s *service) translate(ctx context.Context, resp *models.SummaryResponse, logger *logrus.Entry) {
	out, err := s.translator.TranslateAll(ctx, []string{resp.Summary, resp.KeyPoints})
	resp.Translated = true
	if err != nil {
		resp.TranslationFailed = true
		logger.WithError(err).Warn("Translation failed")
	}

	resp.Summary, resp.KeyPoints = out[0], out[1]
	if resp.KeyPoints != translation.FailedTranslation {
		resp.Facts = parser.Bullets(resp.KeyPoints)
	}
}
