package api

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/nijaru/videovoyager/config"
	"github.com/nijaru/videovoyager/middleware"
	"github.com/nijaru/videovoyager/services/chat"
	"github.com/nijaru/videovoyager/services/search"
	"github.com/nijaru/videovoyager/services/summary"
	"github.com/nijaru/videovoyager/validation"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Server struct {
	search    *SearchHandler
	summary   *SummaryHandler
	chat      *ChatHandler
	config    *config.Config
	logger    *logrus.Logger
	server    *http.Server
	startTime time.Time
}

type ServerOption func(*Server)

// NewServer creates the API server. It fails when a configured rate limit
// cannot be parsed.
func NewServer(cfg *config.Config, opts ...ServerOption) (*Server, error) {
	s := &Server{
		config:    cfg,
		logger:    logrus.StandardLogger(),
		startTime: time.Now(),
	}

	for _, opt := range opts {
		opt(s)
	}

	handler, err := s.routes()
	if err != nil {
		return nil, err
	}

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s, nil
}

// WithServices sets up the handlers with the provided services
func WithServices(searchSvc search.Service, summarySvc summary.Service, chatSvc chat.Service) ServerOption {
	return func(s *Server) {
		validator := validation.NewValidator()
		s.search = NewSearchHandler(searchSvc, validator, s.logger)
		s.summary = NewSummaryHandler(summarySvc, validator, s.logger)
		s.chat = NewChatHandler(chatSvc, validator, s.config.Session, s.logger)
	}
}

// WithLogger sets a custom logger for the server. It must precede
// WithServices to reach the handlers.
func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start() error {
	s.logger.WithField("port", s.config.ServerPort).Info("Starting server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() (http.Handler, error) {
	mux := http.NewServeMux()

	if s.search == nil || s.summary == nil || s.chat == nil {
		return nil, errors.New("api server requires services")
	}

	rl := s.config.RateLimit
	routes := []struct {
		pattern string
		limit   string
		handler http.HandlerFunc
	}{
		{"POST /search_videos", rl.Search, s.search.HandleSearch},
		{"POST /summarize_video", rl.Summarize, s.summary.HandleSummarize},
		{"POST /video_chat", rl.Chat, s.chat.HandleChat},
	}
	for _, route := range routes {
		h, err := s.limit(route.handler, route.limit)
		if err != nil {
			return nil, errors.Wrapf(err, "route %s", route.pattern)
		}
		mux.Handle(route.pattern, h)
	}

	mux.HandleFunc("GET /health", s.handleHealth)

	if s.config.StaticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(s.config.StaticDir)))
	}

	return s.middleware(mux)
}

// limit wraps h in a per-route limiter when rate limiting is enabled.
func (s *Server) limit(h http.Handler, limitDef string) (http.Handler, error) {
	if !s.config.RateLimit.Enabled || limitDef == "" {
		return h, nil
	}
	limits, err := middleware.ParseLimits(limitDef)
	if err != nil {
		return nil, err
	}
	limiter, err := middleware.NewRateLimiter(s.config.RateLimit.MaxIPs, limits...)
	if err != nil {
		return nil, err
	}
	return limiter.TrustProxy(s.config.RateLimit.TrustProxy).Middleware(h), nil
}

func (s *Server) middleware(handler http.Handler) (http.Handler, error) {
	middlewares := []func(http.Handler) http.Handler{
		middleware.Recovery(s.logger),
		middleware.RequestID(),
		middleware.Logging(s.logger),
		middleware.CORS(s.config.CORS),
		middleware.Timeout(s.config.RequestTimeout),
	}

	if s.config.RateLimit.Enabled {
		limits, err := middleware.ParseLimits(s.config.RateLimit.Default...)
		if err != nil {
			return nil, errors.Wrap(err, "default rate limits")
		}
		limiter, err := middleware.NewRateLimiter(s.config.RateLimit.MaxIPs, limits...)
		if err != nil {
			return nil, err
		}
		middlewares = append(middlewares, limiter.TrustProxy(s.config.RateLimit.TrustProxy).Middleware)
	}

	return middleware.Chain(handler, middlewares...), nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"version":   s.config.Version,
		"uptime":    time.Since(s.startTime).String(),
	}

	if s.config.Debug {
		status["debug"] = true
		status["goroutines"] = runtime.NumGoroutine()
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		status["memory"] = map[string]interface{}{
			"allocated": m.Alloc,
			"total":     m.TotalAlloc,
			"system":    m.Sys,
			"gc_cycles": m.NumGC,
		}
	}

	respondJSON(w, r, http.StatusOK, status)
}
