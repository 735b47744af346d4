// Command threadctl runs the detection and thread search pipeline from a shell.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/anistark/crunchythread/internal/app"
	"github.com/anistark/crunchythread/internal/config"
	"github.com/anistark/crunchythread/internal/logging"
)

func main() {
	root := newRootCommand(openApp)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		os.Exit(1)
	}
}

func openApp(verbose bool) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if verbose {
		level = slog.LevelDebug
	}
	// stdout carries command output, so logs go to stderr.
	logger, _ := logging.New(logging.Options{Level: level, Service: "threadctl", Stdout: os.Stderr})
	slog.SetDefault(logger)

	return app.New(cfg, logger)
}
