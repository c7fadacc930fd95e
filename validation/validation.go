package validation

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/nijaru/videovoyager/errors"
)

// watchURLPattern accepts only canonical watch URLs with a bare 11-character id.
var watchURLPattern = regexp.MustCompile(`^https?://(www\.)?youtube\.com/watch\?v=[A-Za-z0-9_-]{11}$`)

const videoIDLength = 11

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateYouTubeURL reports whether rawURL is an accepted watch URL.
func ValidateYouTubeURL(rawURL string) bool {
	return watchURLPattern.MatchString(rawURL)
}

// ExtractVideoID returns the id following "v=" in an accepted watch URL.
func ExtractVideoID(rawURL string) (string, error) {
	const op = "validation.ExtractVideoID"

	if !ValidateYouTubeURL(rawURL) {
		return "", errors.InvalidInput(op, nil, "Invalid YouTube URL format")
	}

	idx := strings.Index(rawURL, "v=")
	id := rawURL[idx+2:]
	if len(id) != videoIDLength {
		return "", errors.InvalidInput(op, nil, "Invalid YouTube URL format")
	}
	return id, nil
}

// VideoURL checks a user supplied video URL and returns its id.
func (v *Validator) VideoURL(rawURL string) (string, error) {
	const op = "Validator.VideoURL"

	if rawURL == "" {
		return "", errors.InvalidInput(op, nil, "Video URL is required")
	}
	return ExtractVideoID(rawURL)
}

// RequestValidationOpts holds options for request validation
type RequestValidationOpts struct {
	MaxContentLength int64
	AllowedMethods   []string
	RequireJSON      bool
}

// ValidateRequest validates HTTP requests
func (v *Validator) ValidateRequest(r *http.Request, opts RequestValidationOpts) error {
	const op = "Validator.ValidateRequest"

	if len(opts.AllowedMethods) > 0 {
		methodAllowed := false
		for _, method := range opts.AllowedMethods {
			if r.Method == method {
				methodAllowed = true
				break
			}
		}
		if !methodAllowed {
			return errors.InvalidInput(op, nil, fmt.Sprintf("Method %s not allowed", r.Method))
		}
	}

	if opts.RequireJSON {
		if contentType := r.Header.Get("Content-Type"); !strings.Contains(contentType, "application/json") {
			return errors.InvalidInput(op, nil, "Content-Type must be application/json")
		}
	}

	if opts.MaxContentLength > 0 && r.ContentLength > opts.MaxContentLength {
		return errors.InvalidInput(op, nil, "Request body too large")
	}

	return nil
}
