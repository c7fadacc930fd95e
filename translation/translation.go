package translation

import (
	"context"
	"fmt"
	"strings"

	"github.com/nijaru/videovoyager/errors"
	"github.com/nijaru/videovoyager/llm"
	"github.com/nijaru/videovoyager/prompt"
	"github.com/sirupsen/logrus"
)

// FailedTranslation replaces a field whose translation failed.
const FailedTranslation = "Error: Failed to translate"

type Translator struct {
	completer llm.Completer
	language  string
	preambles []string
	logger    *logrus.Logger
}

func New(completer llm.Completer, language string, logger *logrus.Logger) *Translator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Translator{
		completer: completer,
		language:  language,
		preambles: preamblesFor(language),
		logger:    logger,
	}
}

func (t *Translator) Language() string {
	return t.language
}

// Translate returns text in the target language. On failure it returns
// FailedTranslation together with an Upstream error so callers can choose
// between the placeholder and the error.
func (t *Translator) Translate(ctx context.Context, text string) (string, error) {
	const op = "Translator.Translate"

	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	out, err := t.completer.Complete(ctx, prompt.Translate(text, t.language))
	if err != nil {
		t.logger.WithError(err).WithField("language", t.language).Error("Translation error")
		return FailedTranslation, errors.Upstream(op, err, "Failed to translate")
	}

	return t.stripPreamble(out), nil
}

// TranslateAll translates each text on its own; one failure does not stop
// the others. The returned error is the first failure, if any.
func (t *Translator) TranslateAll(ctx context.Context, texts []string) ([]string, error) {
	out := make([]string, len(texts))
	var firstErr error
	for i, text := range texts {
		translated, err := t.Translate(ctx, text)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		out[i] = translated
	}
	return out, firstErr
}

func (t *Translator) stripPreamble(s string) string {
	s = strings.TrimSpace(s)
	for _, p := range t.preambles {
		if strings.HasPrefix(s, p) {
			return strings.TrimSpace(strings.TrimPrefix(s, p))
		}
	}
	return s
}

func preamblesFor(language string) []string {
	var out []string
	for _, apostrophe := range []string{"'", "’"} {
		out = append(out,
			fmt.Sprintf("Here%ss the %s translation:", apostrophe, language),
			fmt.Sprintf("Here%ss the translation of that text into %s:", apostrophe, language),
			fmt.Sprintf("Here%ss the translation into %s:", apostrophe, language),
		)
	}
	return out
}
