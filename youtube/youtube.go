// Package youtube talks to the YouTube Data API and to the public watch page
// for caption tracks.
package youtube

import (
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// Option configures a client.
type Option func(*options)

type options struct {
	httpClient *http.Client
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

func buildOptions(timeout time.Duration, opts []Option) options {
	o := options{
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// stripURL drops the request URL from transport errors so API keys never
// reach logs or responses.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
