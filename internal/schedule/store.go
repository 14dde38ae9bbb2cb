// Package schedule implements the interval-scheduling engine: overlap
// enforcement on top of a task.Storage and the cascading shift of downstream
// tasks when a task's end time moves.
//
// Every interval handled here must satisfy start < end within one day. The
// Store does not validate names, times or colors; callers validate user input
// with task.New before reaching it.
package schedule

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/javiermolinar/dayblocks/internal/task"
)

// Store owns the task collection and serializes all access to it.
// Mutations run under the write lock, List and the overlap queries under the
// read lock, so readers never observe a half-applied write.
type Store struct {
	mu      sync.RWMutex
	storage task.Storage
	log     zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for mutation and failure events.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l.With().Str("component", "schedule").Logger() }
}

// New creates a Store backed by storage.
func New(storage task.Storage, opts ...Option) *Store {
	s := &Store{storage: storage, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns all tasks ordered by start time.
func (s *Store) List(ctx context.Context) ([]*task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks, err := s.storage.List(ctx)
	if err != nil {
		return nil, s.fail("list", storageErr("listing tasks", err))
	}
	return tasks, nil
}

// Create inserts a new task unless it overlaps an existing one.
// Returns the persisted task with its storage-assigned ID.
func (s *Store) Create(ctx context.Context, name, start, end, color string) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var created *task.Task
	err := s.storage.RunAtomically(ctx, func(tx task.Storage) error {
		tasks, err := tx.List(ctx)
		if err != nil {
			return storageErr("listing tasks", err)
		}
		if conflict := firstConflict(tasks, &task.Task{Name: name, Start: start, End: end}, nil); conflict != nil {
			return overlapErr(conflict)
		}

		id, err := tx.Insert(ctx, name, start, end, color)
		if err != nil {
			return storageErr("inserting task", err)
		}

		created, err = tx.Get(ctx, id)
		if err != nil {
			return storageErr("reading created task", err)
		}
		if created == nil {
			return &StorageError{Op: "reading created task", Err: fmt.Errorf("task #%d missing after insert", id)}
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("create", storageErr("creating task", err))
	}

	s.log.Info().Str("op", "create").Int64("task_id", created.ID).
		Str("start", created.Start).Str("end", created.End).Msg("task created")
	return created, nil
}

// CreateMany inserts every block or none of them. Each block is checked
// against the stored tasks and the blocks created before it. Only the Name,
// Start, End and Color of each block are used.
func (s *Store) CreateMany(ctx context.Context, blocks []*task.Task) ([]*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := make([]*task.Task, 0, len(blocks))
	err := s.storage.RunAtomically(ctx, func(tx task.Storage) error {
		tasks, err := tx.List(ctx)
		if err != nil {
			return storageErr("listing tasks", err)
		}

		for _, b := range blocks {
			if conflict := firstConflict(tasks, b, nil); conflict != nil {
				return overlapErr(conflict)
			}
			id, err := tx.Insert(ctx, b.Name, b.Start, b.End, b.Color)
			if err != nil {
				return storageErr("inserting task", err)
			}
			t := &task.Task{ID: id, Name: b.Name, Start: b.Start, End: b.End, Color: b.Color}
			tasks = append(tasks, t)
			created = append(created, t)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("create_many", storageErr("creating tasks", err))
	}

	s.log.Info().Str("op", "create_many").Int("count", len(created)).Msg("tasks created")
	return created, nil
}

// Update overwrites the task with the given ID unless the new interval
// overlaps another task. The returned task echoes the input; it is not
// re-read from storage.
func (s *Store) Update(ctx context.Context, id int64, name, start, end, color string) (*task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := s.update(ctx, id, name, start, end, color)
	if err != nil {
		return nil, s.fail("update", err)
	}
	return updated, nil
}

// update is Update without locking. Callers must hold s.mu.
func (s *Store) update(ctx context.Context, id int64, name, start, end, color string) (*task.Task, error) {
	updated := &task.Task{ID: id, Name: name, Start: start, End: end, Color: color}

	err := s.storage.RunAtomically(ctx, func(tx task.Storage) error {
		current, err := tx.Get(ctx, id)
		if err != nil {
			return storageErr("getting task", err)
		}
		if current == nil {
			return notFound(id)
		}

		tasks, err := tx.List(ctx)
		if err != nil {
			return storageErr("listing tasks", err)
		}
		if conflict := firstConflict(tasks, updated, &id); conflict != nil {
			return overlapErr(conflict)
		}

		ok, err := tx.Update(ctx, updated)
		if err != nil {
			return storageErr("updating task", err)
		}
		if !ok {
			return notFound(id)
		}
		return nil
	})
	if err != nil {
		return nil, storageErr("updating task", err)
	}

	s.log.Info().Str("op", "update").Int64("task_id", id).
		Str("start", start).Str("end", end).Msg("task updated")
	return updated, nil
}

// Delete removes the task with the given ID. Missing IDs are ignored.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Delete(ctx, id); err != nil {
		return s.fail("delete", storageErr("deleting task", err))
	}
	s.log.Info().Str("op", "delete").Int64("task_id", id).Msg("task deleted")
	return nil
}

// DeleteAll removes every task.
func (s *Store) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.DeleteAll(ctx); err != nil {
		return s.fail("delete_all", storageErr("deleting all tasks", err))
	}
	s.log.Info().Str("op", "delete_all").Msg("all tasks deleted")
	return nil
}

// CheckOverlap reports whether [start, end) overlaps any stored task other
// than excludeID. It never mutates anything.
func (s *Store) CheckOverlap(ctx context.Context, start, end string, excludeID *int64) (bool, error) {
	conflicts, err := s.Conflicts(ctx, start, end, excludeID)
	if err != nil {
		return false, err
	}
	return len(conflicts) > 0, nil
}

// Conflicts returns every stored task (other than excludeID) overlapping [start, end).
func (s *Store) Conflicts(ctx context.Context, start, end string, excludeID *int64) ([]*task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks, err := s.storage.List(ctx)
	if err != nil {
		return nil, s.fail("check_overlap", storageErr("listing tasks", err))
	}

	return conflicting(tasks, &task.Task{Start: start, End: end}, excludeID), nil
}

// Close releases the underlying storage.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.Close()
}

// conflicting returns the tasks overlapping candidate, skipping excludeID.
func conflicting(tasks []*task.Task, candidate *task.Task, excludeID *int64) []*task.Task {
	var result []*task.Task
	for _, t := range tasks {
		if excludeID != nil && t.ID == *excludeID {
			continue
		}
		if candidate.OverlapsWith(t) {
			result = append(result, t)
		}
	}
	return result
}

func firstConflict(tasks []*task.Task, candidate *task.Task, excludeID *int64) *task.Task {
	if c := conflicting(tasks, candidate, excludeID); len(c) > 0 {
		return c[0]
	}
	return nil
}

// fail logs err at a level matching its kind and returns it unchanged.
func (s *Store) fail(op string, err error) error {
	switch {
	case isDomainError(err):
		s.log.Info().Str("op", op).Err(err).Msg("operation rejected")
	default:
		s.log.Error().Str("op", op).Err(err).Msg("operation failed")
	}
	return err
}
