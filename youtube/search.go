package youtube

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/nijaru/videovoyager/config"
	"github.com/nijaru/videovoyager/models"
	"github.com/pkg/errors"
)

type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Thumbnails  struct {
			Default struct {
				URL string `json:"url"`
			} `json:"default"`
		} `json:"thumbnails"`
	} `json:"snippet"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SearchClient queries the YouTube Data API v3 search endpoint.
type SearchClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewSearchClient(cfg config.YouTubeConfig, opts ...Option) *SearchClient {
	o := buildOptions(cfg.Timeout, opts)
	return &SearchClient{
		httpClient: o.httpClient,
		baseURL:    strings.TrimRight(cfg.APIBaseURL, "/"),
		apiKey:     cfg.APIKey,
	}
}

// Search returns up to maxResults videos matching query.
func (c *SearchClient) Search(ctx context.Context, query string, maxResults int) ([]models.Video, error) {
	params := url.Values{}
	params.Set("part", "id,snippet")
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("q", query)
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build search request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(stripURL(err), "youtube search request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return nil, errors.Wrap(err, "read search response")
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, errors.Errorf("youtube search returned %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, errors.Errorf("youtube search returned %d", resp.StatusCode)
	}

	var data searchResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, errors.Wrap(err, "decode search response")
	}

	videos := make([]models.Video, 0, len(data.Items))
	for _, item := range data.Items {
		if item.ID.VideoID == "" {
			continue
		}
		videos = append(videos, models.Video{
			VideoID:     item.ID.VideoID,
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
			Thumbnail:   item.Snippet.Thumbnails.Default.URL,
		})
	}

	return videos, nil
}
