package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/dayblocks/internal/task"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown storage driver")

// Config selects and configures a storage backend.
type Config struct {
	Driver      string // "sqlite", "postgres" or "memory"
	Path        string // SQLite database file
	DSN         string // PostgreSQL connection string
	BusyTimeout time.Duration
}

// Open returns the storage backend selected by cfg.Driver.
// An empty driver means sqlite.
func Open(ctx context.Context, cfg Config) (task.Storage, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))

	switch driver {
	case "", DriverSQLite, "sqlite3":
		if cfg.Path == "" {
			return nil, errors.New("sqlite storage requires a database path")
		}
		return NewWithTimeout(cfg.Path, cfg.BusyTimeout)
	case DriverPostgres, "postgresql", "pg":
		if cfg.DSN == "" {
			return nil, errors.New("postgres storage requires a dsn")
		}
		return NewPostgres(ctx, cfg.DSN)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
