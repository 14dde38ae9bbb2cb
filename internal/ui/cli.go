// Package ui implements the dayblocks command line interface.
package ui

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/dayblocks/internal/config"
	"github.com/javiermolinar/dayblocks/internal/db"
	"github.com/javiermolinar/dayblocks/internal/schedule"
	"github.com/javiermolinar/dayblocks/internal/task"
	"github.com/javiermolinar/dayblocks/internal/tui"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	store     *schedule.Store
	config    *config.Config
	log       zerolog.Logger
	root      *cobra.Command
	debug     bool // Enable debug logging
	ephemeral bool // Use in-memory storage
}

// NewApp creates a new CLI application. store may be nil, in which case it is
// opened from the storage config the first time a command needs it.
func NewApp(store *schedule.Store, cfg *config.Config, log zerolog.Logger) *App {
	a := &App{store: store, config: cfg, log: log}

	a.root = &cobra.Command{
		Use:   "dayblocks",
		Short: "Plan your day in non-overlapping time blocks",
		Long: `Dayblocks keeps a single day of colored time blocks.

Blocks never overlap. Moving the end of a block with 'shift' moves every
later block by the same amount, wrapping past midnight. Times before 06:00
belong to the tail of the day.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureStore(cmd.Context()); err != nil {
				return err
			}
			return tui.RunWithDebug(a.store, a.config, a.debug)
		},
	}

	// Add global flags
	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging (logs to temp file)")
	a.root.PersistentFlags().BoolVar(&a.ephemeral, "ephemeral", false, "Keep blocks in memory only")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.listCmd())
	a.root.AddCommand(a.addCmd())
	a.root.AddCommand(a.editCmd())
	a.root.AddCommand(a.shiftCmd())
	a.root.AddCommand(a.rmCmd())
	a.root.AddCommand(a.clearCmd())
	a.root.AddCommand(a.checkCmd())
	a.root.AddCommand(a.exportCmd())
	a.root.AddCommand(a.importCmd())
	a.root.AddCommand(a.planCmd())
	a.root.AddCommand(a.reviewCmd())
	a.root.AddCommand(a.serveCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "dayblocks %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.ExecuteContext(context.Background())
}

// ExecuteContext runs the CLI application with ctx.
func (a *App) ExecuteContext(ctx context.Context) error {
	return a.root.ExecuteContext(ctx)
}

// Close releases the store if one was opened.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

// ensureStore opens the configured storage on first use.
func (a *App) ensureStore(ctx context.Context) error {
	if a.store != nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := db.Config{
		Driver:      a.config.Storage.Driver,
		Path:        a.config.Storage.DBPath,
		DSN:         a.config.Storage.DSN,
		BusyTimeout: time.Duration(a.config.Storage.BusyTimeoutMS) * time.Millisecond,
	}
	if a.ephemeral {
		cfg.Driver = db.DriverMemory
	}

	storage, err := db.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	a.store = schedule.New(storage, schedule.WithLogger(a.log))
	a.log.Debug().Str("driver", cfg.Driver).Msg("storage opened")
	return nil
}

// findTask returns the stored task with id or an error wrapping task.ErrTaskNotFound.
func (a *App) findTask(ctx context.Context, id int64) (*task.Task, error) {
	tasks, err := a.store.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: #%d", task.ErrTaskNotFound, id)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}
