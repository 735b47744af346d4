package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level   slog.Level
	Service string
	// File, when set, receives a rotated copy of everything written to Stdout.
	File   string
	Stdout io.Writer
}

// New builds the JSON logger used by every binary. The returned closer
// flushes the rotating file and is safe to call when no file is used.
func New(opts Options) (*slog.Logger, io.Closer) {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	var writer io.Writer = stdout
	var closer io.Closer = nopCloser{}

	if path := strings.TrimSpace(opts.File); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to create log directory", "path", filepath.Dir(path), "error", err)
		} else {
			rotator := &lumberjack.Logger{
				Filename:   path,
				MaxSize:    5,
				MaxBackups: 3,
				MaxAge:     30,
				Compress:   true,
			}
			writer = io.MultiWriter(stdout, rotator)
			closer = rotator
		}
	}

	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: opts.Level})
	logger := slog.New(handler)
	if opts.Service != "" {
		logger = logger.With("service", opts.Service)
	}
	return logger, closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
