package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nijaru/videovoyager/config"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(base string) config.YouTubeConfig {
	return config.YouTubeConfig{
		APIKey:     "test-key",
		APIBaseURL: base,
		WatchURL:   base + "/watch",
		MaxResults: 5,
		Languages:  []string{"en"},
		Timeout:    5 * time.Second,
	}
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "id,snippet", q.Get("part"))
		assert.Equal(t, "video", q.Get("type"))
		assert.Equal(t, "5", q.Get("maxResults"))
		assert.Equal(t, "golang tutorial", q.Get("q"))
		assert.Equal(t, "test-key", q.Get("key"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"items":[
			{"id":{"videoId":"dQw4w9WgXcQ"},"snippet":{"title":"Go in 100s","description":"fast","thumbnails":{"default":{"url":"https://i.ytimg.com/vi/dQw4w9WgXcQ/default.jpg"}}}},
			{"id":{},"snippet":{"title":"channel result"}}
		]}`)
	}))
	defer srv.Close()

	client := NewSearchClient(testConfig(srv.URL))
	videos, err := client.Search(context.Background(), "golang tutorial", 5)
	require.NoError(t, err)
	require.Len(t, videos, 1)

	assert.Equal(t, "dQw4w9WgXcQ", videos[0].VideoID)
	assert.Equal(t, "Go in 100s", videos[0].Title)
	assert.Equal(t, "fast", videos[0].Description)
	assert.Equal(t, "https://i.ytimg.com/vi/dQw4w9WgXcQ/default.jpg", videos[0].Thumbnail)
}

func TestSearchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"code":403,"message":"quota exceeded"}}`)
	}))
	defer srv.Close()

	client := NewSearchClient(testConfig(srv.URL))
	_, err := client.Search(context.Background(), "anything", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.NotContains(t, err.Error(), "test-key")
}

const watchPageTemplate = `<html><script>var ytInitialPlayerResponse = %s;var meta = {};</script></html>`

func TestTranscript(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			assert.Equal(t, "dQw4w9WgXcQ", r.URL.Query().Get("v"))
			player := fmt.Sprintf(`{"playabilityStatus":{"status":"OK"},"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[
				{"baseUrl":"%[1]s/timedtext?lang=de","languageCode":"de"},
				{"baseUrl":"%[1]s/timedtext?lang=en&kind=asr","languageCode":"en","kind":"asr"},
				{"baseUrl":"%[1]s/timedtext?lang=en","languageCode":"en","name":{"simpleText":"English \"manual\" {x}"}}
			]}}}`, srv.URL)
			fmt.Fprintf(w, watchPageTemplate, player)
		case "/timedtext":
			assert.Equal(t, "en", r.URL.Query().Get("lang"))
			assert.Empty(t, r.URL.Query().Get("kind"), "manual track preferred")
			fmt.Fprint(w, `<?xml version="1.0" encoding="utf-8" ?><transcript>
				<text start="0.5" dur="1.5">We&amp;#39;re no strangers</text>
				<text start="2" dur="2.25">to &lt;font color=&quot;#E5E5E5&quot;&gt;love&lt;/font&gt;</text>
				<text start="4.25" dur="1">   </text>
			</transcript>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewTranscriptClient(testConfig(srv.URL))
	segments, err := client.Transcript(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	require.Len(t, segments, 2)

	assert.Equal(t, "We're no strangers", segments[0].Text)
	assert.Equal(t, 0.5, segments[0].Start)
	assert.Equal(t, 1.5, segments[0].Duration)
	assert.Equal(t, "to love", segments[1].Text)
	assert.Equal(t, 2.0, segments[1].Start)
}

func TestTranscriptDisabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, watchPageTemplate, `{"playabilityStatus":{"status":"OK"}}`)
	}))
	defer srv.Close()

	client := NewTranscriptClient(testConfig(srv.URL))
	_, err := client.Transcript(context.Background(), "dQw4w9WgXcQ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTranscriptsDisabled))
}

func TestTranscriptUnplayable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, watchPageTemplate, `{"playabilityStatus":{"status":"ERROR","reason":"Video unavailable"}}`)
	}))
	defer srv.Close()

	client := NewTranscriptClient(testConfig(srv.URL))
	_, err := client.Transcript(context.Background(), "dQw4w9WgXcQ")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTranscriptsDisabled))
	assert.Contains(t, err.Error(), "Video unavailable")
}

func TestParseTimedTextSrv3(t *testing.T) {
	raw := []byte(`<timedtext format="3"><body>
		<p t="1000" d="2500"><s>Hello</s><s t="400"> world</s></p>
		<p t="3500" d="1000">again &amp; again</p>
	</body></timedtext>`)

	segments, err := parseTimedText(raw)
	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, "Hello world", segments[0].Text)
	assert.Equal(t, 1.0, segments[0].Start)
	assert.Equal(t, 2.5, segments[0].Duration)
	assert.Equal(t, "again & again", segments[1].Text)
}

func TestPickBestTrack(t *testing.T) {
	tracks := []captionTrack{
		{BaseURL: "u1&exp=xpe", LanguageCode: "en"},
		{BaseURL: "u2", LanguageCode: "fr"},
		{BaseURL: "u3", LanguageCode: "en-GB", Kind: "asr"},
	}

	track, ok := pickBestTrack(tracks, []string{"en"})
	require.True(t, ok)
	assert.Equal(t, "u3", track.BaseURL)

	track, ok = pickBestTrack(tracks, []string{"fr"})
	require.True(t, ok)
	assert.Equal(t, "u2", track.BaseURL)

	_, ok = pickBestTrack(tracks[:1], []string{"en"})
	assert.False(t, ok)
}

func TestExtractJSON(t *testing.T) {
	in := []byte(`{"a":"brace } in \"string\\\"","b":{"c":1}};rest`)
	assert.Equal(t, `{"a":"brace } in \"string\\\"","b":{"c":1}}`, string(extractJSON(in)))
	assert.Nil(t, extractJSON([]byte(`{"open":`)))
	assert.Nil(t, extractJSON([]byte(`nope`)))
}
