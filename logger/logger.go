package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/nijaru/videovoyager/config"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a logger writing to stdout and, when a log directory is
// configured, to a rotating app.log inside it.
func New(cfg config.LogConfig, production bool) (*logrus.Logger, error) {
	return NewWithConsole(cfg, production, os.Stdout)
}

// NewWithConsole is New with console output sent to console instead of stdout.
func NewWithConsole(cfg config.LogConfig, production bool, console io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if production {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	if cfg.Dir == "" {
		logger.SetOutput(console)
		return logger, nil
	}

	if err := os.MkdirAll(cfg.Dir, os.ModePerm); err != nil {
		return nil, err
	}

	logFile := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Dir, "app.log"),
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	logger.SetOutput(io.MultiWriter(console, logFile))
	return logger, nil
}
