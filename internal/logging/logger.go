package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"recolector/internal/config"
)

// New builds the process logger. The returned cleanup closes the log file,
// if any, and is safe to call when no file was opened.
func New(cfg config.Log) (*logrus.Logger, func(), error) {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, func() {}, fmt.Errorf("log level %q: %w", cfg.Level, err)
	}
	l.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	cleanup := func() {}
	var out io.Writer = os.Stderr
	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return nil, cleanup, fmt.Errorf("open log file: %w", err)
		}
		out = file
		cleanup = func() { _ = file.Close() }
	}
	l.SetOutput(out)
	l.AddHook(NewRedactHook())
	return l, cleanup, nil
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
