// Package llm sends chat completions to an OpenAI compatible endpoint
// (OpenRouter by default).
package llm

import (
	"context"
	"net/http"
	"time"

	"github.com/nijaru/videovoyager/config"
	"github.com/nijaru/videovoyager/errors"
	"github.com/nijaru/videovoyager/prompt"
	pkgerrors "github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// Completer returns the assistant message for a prompt.
type Completer interface {
	Complete(ctx context.Context, req prompt.Request) (string, error)
}

type Client struct {
	client *openai.Client
	model  string
	logger *logrus.Logger
}

type Option func(*Client)

func WithLogger(logger *logrus.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func NewClient(cfg config.LLMConfig, opts ...Option) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	c := &Client{
		client: openai.NewClientWithConfig(oc),
		model:  cfg.Model,
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete issues one chat completion and returns choices[0] verbatim.
func (c *Client) Complete(ctx context.Context, req prompt.Request) (string, error) {
	const op = "Client.Complete"

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	logger := c.logger.WithFields(logrus.Fields{
		"model":    c.model,
		"duration": time.Since(start),
	})

	if err != nil {
		fields := logrus.Fields{}
		var apiErr *openai.APIError
		if pkgerrors.As(err, &apiErr) {
			fields["status"] = apiErr.HTTPStatusCode
		}
		logger.WithFields(fields).WithError(err).Error("LLM request failed")
		return "", errors.Upstream(op, err, "LLM request failed")
	}

	if len(resp.Choices) == 0 {
		logger.Error("LLM returned no choices")
		return "", errors.Upstream(op, nil, "LLM returned no choices")
	}

	logger.WithFields(logrus.Fields{
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
	}).Debug("LLM request completed")

	return resp.Choices[0].Message.Content, nil
}
