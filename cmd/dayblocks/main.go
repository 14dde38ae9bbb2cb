package main

import (
	"fmt"
	"os"

	"github.com/javiermolinar/dayblocks/internal/config"
	"github.com/javiermolinar/dayblocks/internal/logging"
	"github.com/javiermolinar/dayblocks/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, closeLog, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	}, os.Stderr)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer func() { _ = closeLog() }()

	app := ui.NewApp(nil, cfg, log)
	defer func() { _ = app.Close() }()
	return app.Execute()
}
