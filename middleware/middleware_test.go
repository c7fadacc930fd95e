package middleware

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nijaru/videovoyager/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(okHandler(), mark("a"), nil, mark("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "given-id")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "given-id", seen)
}

func TestRecovery(t *testing.T) {
	h := Recovery(quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Internal server error", body["error"])
	assert.Equal(t, float64(500), body["status"])
}

func TestLogging(t *testing.T) {
	var hasLogger bool
	h := Logging(quietLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasLogger = r.Context().Value(LoggerKey).(*logrus.Entry)
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.True(t, hasLogger)
}

func TestGetLoggerFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.NotNil(t, GetLogger(req.Context()))
}

func TestCORS(t *testing.T) {
	cfg := config.CORSConfig{
		Enabled:        true,
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type", "X-Session-ID"},
		MaxAge:         300,
	}
	h := CORS(cfg)(okHandler())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/video_chat", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type,X-Session-ID", rr.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "300", rr.Header().Get("Access-Control-Max-Age"))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/video_chat", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestTimeoutSetsDeadline(t *testing.T) {
	var hasDeadline bool
	h := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, hasDeadline)
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		in      string
		want    Limit
		wantErr bool
	}{
		{"30 per minute", Limit{30, time.Minute}, false},
		{"200 per day", Limit{200, 24 * time.Hour}, false},
		{"50 per hour", Limit{50, time.Hour}, false},
		{"5 per Seconds", Limit{5, time.Second}, false},
		{"per minute", Limit{}, true},
		{"0 per minute", Limit{}, true},
		{"10 every minute", Limit{}, true},
		{"10 per fortnight", Limit{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLimit(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLimitsSkipsBlank(t *testing.T) {
	limits, err := ParseLimits("200 per day", "", "50 per hour")
	require.NoError(t, err)
	assert.Len(t, limits, 2)
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl, err := NewRateLimiter(10, Limit{Events: 2, Period: time.Hour})
	require.NoError(t, err)
	h := rl.Middleware(okHandler())

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/search_videos", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1:1001").Code)

	rr := send("10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"Rate limit exceeded","status":429}`, rr.Body.String())

	// Other clients have their own budget.
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1000").Code)
}

func TestRateLimiterRejectionConsumesNothing(t *testing.T) {
	rl, err := NewRateLimiter(10,
		Limit{Events: 5, Period: time.Hour},
		Limit{Events: 1, Period: time.Hour},
	)
	require.NoError(t, err)

	ok, _ := rl.Allow("c")
	assert.True(t, ok)
	for i := 0; i < 3; i++ {
		ok, wait := rl.Allow("c")
		assert.False(t, ok)
		assert.Greater(t, wait, time.Duration(0))
	}

	limiters := rl.limitersFor("c")
	assert.InDelta(t, 4, limiters[0].Tokens(), 0.01)
}

func TestRateLimiterWithoutLimits(t *testing.T) {
	rl, err := NewRateLimiter(0)
	require.NoError(t, err)
	ok, _ := rl.Allow("anyone")
	assert.True(t, ok)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", ClientIP(req, false))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "192.0.2.1", ClientIP(req, false))
	assert.Equal(t, "203.0.113.9", ClientIP(req, true))
}

func TestRateLimiterIgnoresForwardedForByDefault(t *testing.T) {
	rl, err := NewRateLimiter(100, Limit{Events: 2, Period: time.Minute})
	require.NoError(t, err)
	h := rl.Middleware(okHandler())

	allowed := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/search_videos", nil)
		req.RemoteAddr = "203.0.113.7:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code == http.StatusOK {
			allowed++
		}
	}
	assert.Equal(t, 2, allowed)
}

func TestRateLimiterTrustedProxy(t *testing.T) {
	rl, err := NewRateLimiter(100, Limit{Events: 1, Period: time.Minute})
	require.NoError(t, err)
	h := rl.TrustProxy(true).Middleware(okHandler())

	send := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/search_videos", nil)
		req.RemoteAddr = "10.0.0.1:4000"
		req.Header.Set("X-Forwarded-For", forwarded)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, send("198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("198.51.100.1"))
	assert.Equal(t, http.StatusOK, send("198.51.100.2"))
}
