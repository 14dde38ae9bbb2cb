package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/javiermolinar/dayblocks/internal/task"
)

// pgQuerier is the subset of *pgxpool.Pool and pgx.Tx used by pgStore.
type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres implements task.Storage using PostgreSQL.
type Postgres struct {
	pgStore
	pool *pgxpool.Pool
}

// NewPostgres connects to dsn and creates the schema if needed.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Postgres{pgStore: pgStore{q: pool}, pool: pool}, nil
}

// atomicTxOptions makes concurrent read-check-write units from several
// processes behave as if run one after another. The loser of a conflict
// fails with a serialization error instead of writing an overlap.
var atomicTxOptions = pgx.TxOptions{IsoLevel: pgx.Serializable}

// RunAtomically runs fn inside a single serializable transaction.
func (p *Postgres) RunAtomically(ctx context.Context, fn func(tx task.Storage) error) error {
	tx, err := p.pool.BeginTx(ctx, atomicTxOptions)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&postgresTx{pgStore: pgStore{q: tx}}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

type postgresTx struct {
	pgStore
}

func (t *postgresTx) RunAtomically(_ context.Context, fn func(tx task.Storage) error) error {
	return fn(t)
}

func (t *postgresTx) Close() error {
	return nil
}

type pgStore struct {
	q pgQuerier
}

func (s pgStore) List(ctx context.Context) ([]*task.Task, error) {
	rows, err := s.q.Query(ctx, `
		SELECT task_id, task_name, task_time_start, task_time_end, task_color
		FROM tasks
		ORDER BY task_time_start, task_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

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

func (s pgStore) Get(ctx context.Context, id int64) (*task.Task, error) {
	var t task.Task
	err := s.q.QueryRow(ctx, `
		SELECT task_id, task_name, task_time_start, task_time_end, task_color
		FROM tasks
		WHERE task_id = $1
	`, id).Scan(&t.ID, &t.Name, &t.Start, &t.End, &t.Color)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying task: %w", err)
	}
	return &t, nil
}

func (s pgStore) Insert(ctx context.Context, name, start, end, color string) (int64, error) {
	var id int64
	err := s.q.QueryRow(ctx, `
		INSERT INTO tasks (task_name, task_time_start, task_time_end, task_color)
		VALUES ($1, $2, $3, $4)
		RETURNING task_id
	`, name, start, end, color).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting task: %w", err)
	}
	return id, nil
}

func (s pgStore) Update(ctx context.Context, t *task.Task) (bool, error) {
	tag, err := s.q.Exec(ctx, `
		UPDATE tasks
		SET task_name = $1, task_time_start = $2, task_time_end = $3, task_color = $4
		WHERE task_id = $5
	`, t.Name, t.Start, t.End, t.Color, t.ID)
	if err != nil {
		return false, fmt.Errorf("updating task %d: %w", t.ID, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s pgStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.q.Exec(ctx, `DELETE FROM tasks WHERE task_id = $1`, id); err != nil {
		return fmt.Errorf("deleting task %d: %w", id, err)
	}
	return nil
}

func (s pgStore) DeleteAll(ctx context.Context) error {
	if _, err := s.q.Exec(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("deleting tasks: %w", err)
	}
	return nil
}
