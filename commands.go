package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/nijaru/videovoyager/bootstrap"
	"github.com/nijaru/videovoyager/config"
	"github.com/nijaru/videovoyager/errors"
	"github.com/nijaru/videovoyager/handlers/api"
	"github.com/nijaru/videovoyager/logger"
	"github.com/nijaru/videovoyager/models"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	translateFlag bool
	urlFlag       string
	sessionFlag   string
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "videovoyager",
		Short: "Search YouTube and summarize or question video transcripts",
		Long: `videovoyager searches YouTube, fetches video transcripts and asks an LLM
to summarize them or answer questions about them.

Without a subcommand it starts the HTTP server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search YouTube videos",
		Args:  cobra.ExactArgs(1),
		RunE:  runSearch,
	}

	summarizeCmd := &cobra.Command{
		Use:   "summarize <video-url>",
		Short: "Summarize a video",
		Args:  cobra.ExactArgs(1),
		RunE:  runSummarize,
	}
	summarizeCmd.Flags().BoolVar(&translateFlag, "translate", false, "Translate the result")

	askCmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about a video",
		Args:  cobra.ExactArgs(1),
		RunE:  runAsk,
	}
	askCmd.Flags().StringVar(&urlFlag, "url", "", "Video URL to load before asking")
	askCmd.Flags().StringVar(&sessionFlag, "session", "", "Session id to reuse a previously loaded video (across runs only with SESSION_STORE=redis)")
	askCmd.Flags().BoolVar(&translateFlag, "translate", false, "Translate the answer")

	rootCmd.AddCommand(serveCmd, searchCmd, summarizeCmd, askCmd)
	return rootCmd
}

// setup loads configuration and builds the application. CLI commands log to
// stderr so stdout carries only JSON.
func setup(ctx context.Context, cli bool) (*config.Config, *logrus.Logger, *bootstrap.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, pkgerrors.Wrap(err, "load configuration")
	}

	var log *logrus.Logger
	if cli {
		log, err = logger.NewWithConsole(cfg.Log, cfg.IsProduction(), os.Stderr)
	} else {
		log, err = logger.New(cfg.Log, cfg.IsProduction())
	}
	if err != nil {
		return nil, nil, nil, pkgerrors.Wrap(err, "initialize logger")
	}

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return nil, nil, nil, pkgerrors.Wrap(err, "initialize application")
	}
	return cfg, log, app, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, log, app, err := setup(ctx, false)
	if err != nil {
		return err
	}
	defer app.Close()

	server, err := api.NewServer(cfg,
		api.WithLogger(log),
		api.WithServices(app.Search, app.Summary, app.Chat),
	)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return pkgerrors.Wrap(err, "server error")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return pkgerrors.Wrap(err, "server shutdown")
	}
	log.Info("Server stopped")
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	_, _, app, err := setup(ctx, true)
	if err != nil {
		return err
	}
	defer app.Close()

	videos, err := app.Search.SearchVideos(ctx, args[0])
	if err != nil {
		return printError(err)
	}
	return printJSON(videos)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	_, _, app, err := setup(ctx, true)
	if err != nil {
		return err
	}
	defer app.Close()

	resp, err := app.Summary.SummarizeVideo(ctx, args[0], translateFlag)
	if err != nil {
		return printError(err)
	}
	return printJSON(resp)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, log, app, err := setup(ctx, true)
	if err != nil {
		return err
	}
	defer app.Close()

	sessionID := askSessionID(cfg.Session, sessionFlag, log)

	resp, err := app.Chat.ChatAboutVideo(ctx, sessionID, urlFlag, args[0], translateFlag)
	if err != nil {
		return printError(err)
	}
	return printJSON(struct {
		SessionID string `json:"session_id"`
		*models.ChatResponse
	}{sessionID, resp})
}

// askSessionID returns the given session id, or a fresh one when empty. A
// memory store starts empty in every process, so reusing an id only works
// against redis.
func askSessionID(cfg config.SessionConfig, id string, log *logrus.Logger) string {
	if id == "" {
		return uuid.NewString()
	}
	if cfg.Store != config.StoreRedis {
		log.WithFields(logrus.Fields{
			"session_id": id,
			"store":      cfg.Store,
		}).Warn("Session store does not persist between runs; load the video with --url")
	}
	return id
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printError writes the {"error", "status"} body to stdout and returns err so
// the process exits non-zero.
func printError(err error) error {
	code := errors.CodeOf(err)
	msg := err.Error()
	if appErr, ok := errors.As(err); ok {
		msg = appErr.Message
	}
	if perr := printJSON(models.ErrorResponse{Error: msg, Status: code}); perr != nil {
		return perr
	}
	return err
}
