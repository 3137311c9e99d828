// ABOUTME: Entry point for the kbase terminal UI
// ABOUTME: Connects to a running kbase server and browses the knowledge base

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/wenli/kbase/internal/client"
	"github.com/wenli/kbase/internal/config"
	"github.com/wenli/kbase/internal/session"
	"github.com/wenli/kbase/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Default()
	configPath := config.DefaultPath()
	if _, err := os.Stat(configPath); err == nil {
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}

	// The terminal owns stdout, so logs go to a file or nowhere.
	logger := setupLogger()

	c := client.New(cfg.Client.BaseURL)
	sess, err := session.New(session.Config{
		Client:          c,
		StalenessWindow: cfg.Cache.StalenessWindow,
		Logger:          logger,
	})
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	return tui.Run(tui.RunOpts{Session: sess})
}

func setupLogger() *slog.Logger {
	logPath := os.Getenv("KBASE_TUI_LOG")
	if logPath == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(f, nil))
}
