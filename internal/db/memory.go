package db

import (
	"context"
	"maps"
	"sync"

	"github.com/javiermolinar/dayblocks/internal/task"
)

// Memory implements task.Storage in process memory.
// Nothing survives Close; it backs tests and the "memory" driver.
type Memory struct {
	mu     sync.Mutex
	tasks  map[int64]task.Task
	nextID int64
}

// NewMemory creates an empty in-memory storage.
func NewMemory() *Memory {
	return &Memory{tasks: make(map[int64]task.Task), nextID: 1}
}

// List returns all tasks ordered by start time.
func (m *Memory) List(_ context.Context) ([]*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := make([]*task.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		t := t
		tasks = append(tasks, &t)
	}
	task.SortByStart(tasks)
	return tasks, nil
}

// Get retrieves a task by ID.
func (m *Memory) Get(_ context.Context, id int64) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// Insert adds a new task and returns its ID.
func (m *Memory) Insert(_ context.Context, name, start, end, color string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.tasks[id] = task.Task{ID: id, Name: name, Start: start, End: end, Color: color}
	return id, nil
}

// Update overwrites the task with t.ID.
func (m *Memory) Update(_ context.Context, t *task.Task) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[t.ID]; !ok {
		return false, nil
	}
	m.tasks[t.ID] = *t
	return true, nil
}

// Delete removes a task by ID.
func (m *Memory) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.tasks, id)
	return nil
}

// DeleteAll removes every task.
func (m *Memory) DeleteAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clear(m.tasks)
	return nil
}

// RunAtomically runs fn against a copy of the current state and keeps the
// copy only if fn succeeds. fn must use tx, not m.
func (m *Memory) RunAtomically(_ context.Context, fn func(tx task.Storage) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := &Memory{tasks: maps.Clone(m.tasks), nextID: m.nextID}
	if err := fn(snapshot); err != nil {
		return err
	}

	m.tasks = snapshot.tasks
	m.nextID = snapshot.nextID
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
