package chat

import (
	"context"
	"strings"
	"time"

	"github.com/nijaru/videovoyager/errors"
	"github.com/nijaru/videovoyager/llm"
	"github.com/nijaru/videovoyager/models"
	"github.com/nijaru/videovoyager/parser"
	"github.com/nijaru/videovoyager/prompt"
	"github.com/nijaru/videovoyager/session"
	"github.com/nijaru/videovoyager/validation"
	"github.com/sirupsen/logrus"
)

type service struct {
	fetcher    TranscriptFetcher
	completer  llm.Completer
	translator Translator
	sessions   session.Store
	formatter  *prompt.Formatter
	logger     *logrus.Logger
}

func NewService(
	fetcher TranscriptFetcher,
	completer llm.Completer,
	translator Translator,
	sessions session.Store,
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
		sessions:   sessions,
		formatter:  prompt.NewFormatter(config.MaxTranscriptChars),
		logger:     logger,
	}
}

func (s *service) ChatAboutVideo(ctx context.Context, sessionID, videoURL, question string, translate bool) (*models.ChatResponse, error) {
	const op = "ChatService.ChatAboutVideo"

	question = strings.TrimSpace(question)
	videoURL = strings.TrimSpace(videoURL)
	if question == "" {
		return nil, errors.InvalidInput(op, nil, "Question is required")
	}

	logger := s.logger.WithContext(ctx).WithField("session_id", sessionID)

	sess, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if videoURL != "" {
		if err := s.loadVideo(ctx, sess, videoURL); err != nil {
			return nil, err
		}
	}

	req, err := s.formatter.AnswerQuestion(sess.Transcript, question)
	if err != nil {
		return nil, err
	}
	logger = logger.WithField("video_id", sess.VideoID)

	raw, err := s.completer.Complete(ctx, req)
	if err != nil {
		logger.WithError(err).Error("Answer request failed")
		return nil, errors.Upstream(op, err, "Failed to get answer from OpenRouter")
	}

	answer := parser.ParseAnswer(raw)
	resp := &models.ChatResponse{
		VideoID:    sess.VideoID,
		Summary:    answer.Summary,
		Facts:      answer.KeyPoints,
		Timestamps: []string{},
	}

	if translate && s.translator != nil {
		out, err := s.translator.TranslateAll(ctx, append([]string{resp.Summary}, resp.Facts...))
		resp.Translated = true
		if err != nil {
			resp.TranslationFailed = true
			logger.WithError(err).Warn("Translation failed")
		}
		resp.Summary, resp.Facts = out[0], out[1:]
	}

	logger.WithField("facts", len(resp.Facts)).Info("Question answered")
	return resp, nil
}

// loadSession returns the caller's session, or a fresh one when none is
// stored yet.
func (s *service) loadSession(ctx context.Context, sessionID string) (*session.Session, error) {
	const op = "ChatService.loadSession"

	if sessionID == "" || s.sessions == nil {
		return &session.Session{}, nil
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	switch {
	case err == nil:
		return sess, nil
	case errors.IsNotFound(err):
		return &session.Session{ID: sessionID}, nil
	default:
		return nil, errors.Internal(op, err, "Failed to load session")
	}
}

// loadVideo replaces the session transcript with the one for videoURL. The
// session is left untouched when the transcript cannot be fetched.
func (s *service) loadVideo(ctx context.Context, sess *session.Session, videoURL string) error {
	const op = "ChatService.loadVideo"

	videoID, err := validation.ExtractVideoID(videoURL)
	if err != nil {
		return err
	}

	text, err := s.fetcher.Fetch(ctx, videoID)
	if err != nil {
		if appErr, ok := errors.As(err); ok && appErr.Kind == errors.KindUpstream {
			s.logger.WithContext(ctx).WithError(err).Error("Error fetching video transcript")
			return errors.Upstream(op, err, "Failed to fetch video transcript: "+appErr.Message)
		}
		return err
	}

	sess.VideoID = videoID
	sess.Transcript = text
	sess.UpdatedAt = time.Now().UTC()

	if sess.ID == "" || s.sessions == nil {
		return nil
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return errors.Internal(op, err, "Failed to save session")
	}
	return nil
}
