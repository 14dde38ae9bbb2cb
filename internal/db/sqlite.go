// Package db provides the task storage backends.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/dayblocks/internal/task"
)

// querier is the subset of *sql.DB and *sql.Tx used by sqlStore.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLite implements task.Storage using SQLite.
type SQLite struct {
	sqlStore
	db *sql.DB
}

// New creates a new SQLite storage and runs migrations.
func New(path string) (*SQLite, error) {
	return NewWithTimeout(path, 0)
}

// NewWithTimeout is like New but sets the SQLite busy timeout.
func NewWithTimeout(path string, busyTimeout time.Duration) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite prefers a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// In-memory databases answer "memory" and keep going.
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling WAL: %w", err)
	}

	if busyTimeout > 0 {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeout.Milliseconds())); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("setting busy timeout: %w", err)
		}
	}

	s := &SQLite{sqlStore: sqlStore{q: db}, db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// RunAtomically runs fn inside a single transaction.
func (s *SQLite) RunAtomically(ctx context.Context, fn func(tx task.Storage) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&sqliteTx{sqlStore: sqlStore{q: tx}}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// sqliteTx is the task.Storage view of an open transaction.
type sqliteTx struct {
	sqlStore
}

// RunAtomically runs fn in the already open transaction.
func (t *sqliteTx) RunAtomically(_ context.Context, fn func(tx task.Storage) error) error {
	return fn(t)
}

// Close is a no-op; the owning SQLite commits or rolls back.
func (t *sqliteTx) Close() error {
	return nil
}

// sqlStore implements the CRUD part of task.Storage over a querier.
type sqlStore struct {
	q querier
}

// List returns all tasks ordered by start time.
func (s sqlStore) List(ctx context.Context) ([]*task.Task, error) {
	query := `
		SELECT task_id, task_name, task_time_start, task_time_end, task_color
		FROM tasks
		ORDER BY task_time_start, task_id
	`

	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*task.Task
	for rows.Next() {
		var t task.Task
		if err := rows.Scan(&t.ID, &t.Name, &t.Start, &t.End, &t.Color); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}

	return tasks, nil
}

// Get retrieves a task by ID.
func (s sqlStore) Get(ctx context.Context, id int64) (*task.Task, error) {
	query := `
		SELECT task_id, task_name, task_time_start, task_time_end, task_color
		FROM tasks
		WHERE task_id = ?
	`

	var t task.Task
	err := s.q.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Name, &t.Start, &t.End, &t.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying task: %w", err)
	}
	return &t, nil
}

// Insert adds a new task and returns its ID.
func (s sqlStore) Insert(ctx context.Context, name, start, end, color string) (int64, error) {
	query := `
		INSERT INTO tasks (task_name, task_time_start, task_time_end, task_color)
		VALUES (?, ?, ?, ?)
	`

	result, err := s.q.ExecContext(ctx, query, name, start, end, color)
	if err != nil {
		return 0, fmt.Errorf("inserting task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}
	return id, nil
}

// Update overwrites every mutable field of the task with t.ID.
func (s sqlStore) Update(ctx context.Context, t *task.Task) (bool, error) {
	query := `
		UPDATE tasks
		SET task_name = ?, task_time_start = ?, task_time_end = ?, task_color = ?
		WHERE task_id = ?
	`

	result, err := s.q.ExecContext(ctx, query, t.Name, t.Start, t.End, t.Color, t.ID)
	if err != nil {
		return false, fmt.Errorf("updating task %d: %w", t.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}
	return rows > 0, nil
}

// Delete removes a task by ID.
func (s sqlStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM tasks WHERE task_id = ?`, id); err != nil {
		return fmt.Errorf("deleting task %d: %w", id, err)
	}
	return nil
}

// DeleteAll removes every task.
func (s sqlStore) DeleteAll(ctx context.Context) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("deleting tasks: %w", err)
	}
	return nil
}
