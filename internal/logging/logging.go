// Package logging builds the logrus logger shared by the CLI, TUI and web view.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Joseda-hg/supertask/internal/config"
)

// New returns a logger writing to out with the level and format from cfg.
func New(cfg config.Config, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)

	level := strings.TrimSpace(cfg.LogLevel)
	if level == "" {
		level = "info"
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	logger.SetLevel(parsed)

	switch strings.ToLower(cfg.LogFormat) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}

// OpenFile returns a logger appending to path. The terminal belongs to the
// TUI while it runs, so interactive sessions log to a file instead.
func OpenFile(cfg config.Config, path string) (*logrus.Logger, func(), error) {
	if err := config.EnsureDir(path); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger, err := New(cfg, file)
	if err != nil {
		_ = file.Close()
		return nil, nil, err
	}
	return logger, func() { _ = file.Close() }, nil
}

// Discard is a logger for tests and callers that do not care about output.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
