package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/nijaru/videovoyager/config"
	"github.com/nijaru/videovoyager/models"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

// ErrTranscriptsDisabled is returned when the video exposes no caption tracks.
var ErrTranscriptsDisabled = errors.New("transcripts are disabled for this video")

const playerResponseMarker = "ytInitialPlayerResponse = "

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

// timedText covers both the legacy <text start dur> and the srv3 <p t d> formats.
type timedText struct {
	Lines []struct {
		Start string `xml:"start,attr"`
		Dur   string `xml:"dur,attr"`
		Text  string `xml:",chardata"`
	} `xml:"text"`
	Body struct {
		Paragraphs []struct {
			T     string `xml:"t,attr"`
			D     string `xml:"d,attr"`
			Inner string `xml:",innerxml"`
		} `xml:"p"`
	} `xml:"body"`
}

// TranscriptClient fetches caption tracks through the watch page.
type TranscriptClient struct {
	httpClient *http.Client
	watchURL   string
	languages  []string
}

func NewTranscriptClient(cfg config.YouTubeConfig, opts ...Option) *TranscriptClient {
	o := buildOptions(cfg.Timeout, opts)
	languages := cfg.Languages
	if len(languages) == 0 {
		languages = []string{"en"}
	}
	return &TranscriptClient{
		httpClient: o.httpClient,
		watchURL:   cfg.WatchURL,
		languages:  languages,
	}
}

// Transcript returns the caption segments for videoID.
func (c *TranscriptClient) Transcript(ctx context.Context, videoID string) ([]models.Segment, error) {
	page, err := c.get(ctx, c.watchURL+"?v="+url.QueryEscape(videoID), 6*1024*1024)
	if err != nil {
		return nil, errors.Wrap(err, "watch page")
	}

	idx := bytes.Index(page, []byte(playerResponseMarker))
	if idx < 0 {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	data := extractJSON(page[idx+len(playerResponseMarker):])
	if data == nil {
		return nil, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}

	var player playerResponse
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, errors.Wrap(err, "decode ytInitialPlayerResponse")
	}

	if player.Captions == nil {
		if ps := player.PlayabilityStatus; ps != nil && ps.Status != "" && ps.Status != "OK" {
			return nil, errors.Errorf("video unplayable: %s %s", ps.Status, ps.Reason)
		}
		return nil, ErrTranscriptsDisabled
	}

	tracks := player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, ErrTranscriptsDisabled
	}

	track, ok := pickBestTrack(tracks, c.languages)
	if !ok {
		return nil, errors.New("all caption tracks require a browser token")
	}

	raw, err := c.get(ctx, track.BaseURL, 2*1024*1024)
	if err != nil {
		return nil, errors.Wrap(err, "fetch timedtext")
	}

	return parseTimedText(raw)
}

func (c *TranscriptClient) get(ctx context.Context, target string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cookie", "CONSENT=YES+cb")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, stripURL(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

// needsPoToken reports whether a caption URL only works inside a browser.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack prefers a manual track in a preferred language, then a
// generated one, then any English track, then whatever is left.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, false
	}

	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return usable[0], true
}

func parseTimedText(raw []byte) ([]models.Segment, error) {
	var tt timedText
	if err := xml.Unmarshal(raw, &tt); err != nil {
		return nil, errors.Wrap(err, "parse timedtext XML")
	}

	segments := make([]models.Segment, 0, len(tt.Lines)+len(tt.Body.Paragraphs))
	for _, line := range tt.Lines {
		text := cleanCaption(line.Text)
		if text == "" {
			continue
		}
		segments = append(segments, models.Segment{
			Text:     text,
			Start:    parseFloat(line.Start),
			Duration: parseFloat(line.Dur),
		})
	}
	for _, p := range tt.Body.Paragraphs {
		text := cleanCaption(p.Inner)
		if text == "" {
			continue
		}
		segments = append(segments, models.Segment{
			Text:     text,
			Start:    parseFloat(p.T) / 1000,
			Duration: parseFloat(p.D) / 1000,
		})
	}

	return segments, nil
}

// cleanCaption drops markup such as <font> and decodes entities.
func cleanCaption(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var sb strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(sb.String()), " ")
		case html.TextToken:
			sb.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			sb.WriteByte(' ')
		}
	}
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// extractJSON returns the JSON object starting at b[0] by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}
