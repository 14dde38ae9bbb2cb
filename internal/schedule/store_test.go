package schedule

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/javiermolinar/dayblocks/internal/db"
	"github.com/javiermolinar/dayblocks/internal/task"
)

var errBoom = errors.New("disk on fire")

// faults configures failures injected by flakyStorage.
type faults struct {
	listErr      error
	failUpdateAt int // 1-based index of the Update call that fails; 0 never
	updates      int
}

// flakyStorage wraps a storage and injects failures, including inside
// RunAtomically.
type flakyStorage struct {
	task.Storage
	f *faults
}

func (s *flakyStorage) List(ctx context.Context) ([]*task.Task, error) {
	if s.f.listErr != nil {
		return nil, s.f.listErr
	}
	return s.Storage.List(ctx)
}

func (s *flakyStorage) Update(ctx context.Context, t *task.Task) (bool, error) {
	s.f.updates++
	if s.f.failUpdateAt == s.f.updates {
		return false, errBoom
	}
	return s.Storage.Update(ctx, t)
}

func (s *flakyStorage) RunAtomically(ctx context.Context, fn func(tx task.Storage) error) error {
	return s.Storage.RunAtomically(ctx, func(tx task.Storage) error {
		return fn(&flakyStorage{Storage: tx, f: s.f})
	})
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(db.NewMemory())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustCreate(t *testing.T, s *Store, name, start, end string) *task.Task {
	t.Helper()
	created, err := s.Create(context.Background(), name, start, end, task.DefaultColor)
	if err != nil {
		t.Fatalf("Create(%s %s-%s) failed: %v", name, start, end, err)
	}
	return created
}

func TestStore_Create(t *testing.T) {
	s := newTestStore(t)

	created := mustCreate(t, s, "Deep work", "09:00", "11:00")
	if created.ID == 0 {
		t.Error("expected ID to be assigned")
	}
	if created.Name != "Deep work" || created.Start != "09:00" || created.End != "11:00" || created.Color != task.DefaultColor {
		t.Errorf("unexpected created task: %+v", created)
	}

	tasks, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != created.ID {
		t.Errorf("expected created task in list, got %v", tasks)
	}
}

func TestStore_Create_Overlap(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		wantErr    bool
	}{
		{"same slot", "09:00", "10:00", true},
		{"partial overlap start", "08:30", "09:30", true},
		{"partial overlap end", "09:30", "10:30", true},
		{"contained", "09:15", "09:45", true},
		{"containing", "08:00", "11:00", true},
		{"touching before", "08:00", "09:00", false},
		{"touching after", "10:00", "11:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			mustCreate(t, s, "Existing", "09:00", "10:00")

			_, err := s.Create(context.Background(), "New", tt.start, tt.end, task.DefaultColor)
			tasks, _ := s.List(context.Background())

			if tt.wantErr {
				if !errors.Is(err, task.ErrTimeBlockOverlap) {
					t.Fatalf("expected ErrTimeBlockOverlap, got %v", err)
				}
				if errors.Is(err, ErrStorage) {
					t.Error("overlap must not be reported as a storage error")
				}
				if len(tasks) != 1 {
					t.Errorf("expected store unchanged, got %d tasks", len(tasks))
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(tasks) != 2 {
				t.Errorf("expected 2 tasks, got %d", len(tasks))
			}
		})
	}
}

func TestStore_Create_ErrorNamesConflict(t *testing.T) {
	s := newTestStore(t)
	existing := mustCreate(t, s, "Standup", "09:00", "09:15")

	_, err := s.Create(context.Background(), "Call", "09:10", "09:30", task.DefaultColor)
	if err == nil {
		t.Fatal("expected overlap error")
	}
	if !strings.Contains(err.Error(), "Standup") || !strings.Contains(err.Error(), "09:00-09:15") {
		t.Errorf("expected error to describe %v, got %q", existing, err)
	}
}

func TestStore_Update(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustCreate(t, s, "A", "09:00", "10:00")
	mustCreate(t, s, "B", "10:00", "11:00")

	t.Run("moves within own slot", func(t *testing.T) {
		got, err := s.Update(ctx, a.ID, "A renamed", "09:15", "10:00", "#f38ba8")
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		want := task.Task{ID: a.ID, Name: "A renamed", Start: "09:15", End: "10:00", Color: "#f38ba8"}
		if *got != want {
			t.Errorf("Update = %+v, want %+v", *got, want)
		}
	})

	t.Run("overlap with other task", func(t *testing.T) {
		_, err := s.Update(ctx, a.ID, "A", "09:00", "10:30", task.DefaultColor)
		if !errors.Is(err, task.ErrTimeBlockOverlap) {
			t.Fatalf("expected ErrTimeBlockOverlap, got %v", err)
		}

		tasks, _ := s.List(ctx)
		if tasks[0].Start != "09:15" || tasks[0].End != "10:00" {
			t.Errorf("expected A unchanged after rejected update, got %+v", tasks[0])
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, err := s.Update(ctx, 999, "Ghost", "20:00", "21:00", task.DefaultColor)
		if !errors.Is(err, task.ErrTaskNotFound) {
			t.Fatalf("expected ErrTaskNotFound, got %v", err)
		}
	})
}

func TestStore_Delete_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustCreate(t, s, "A", "09:00", "10:00")

	if err := s.Delete(ctx, a.ID); err != nil {
		t.Fatalf("first Delete failed: %v", err)
	}
	if err := s.Delete(ctx, a.ID); err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
	if err := s.Delete(ctx, 12345); err != nil {
		t.Fatalf("Delete of unknown id failed: %v", err)
	}

	tasks, _ := s.List(ctx)
	if len(tasks) != 0 {
		t.Errorf("expected empty store, got %d tasks", len(tasks))
	}
}

func TestStore_DeleteAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreate(t, s, "A", "09:00", "10:00")
	mustCreate(t, s, "B", "10:00", "11:00")

	if err := s.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}
	tasks, _ := s.List(ctx)
	if len(tasks) != 0 {
		t.Errorf("expected empty store, got %d tasks", len(tasks))
	}

	// The freed slot is available again.
	mustCreate(t, s, "C", "09:00", "10:00")
}

func TestStore_CheckOverlap(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustCreate(t, s, "A", "09:00", "10:00")
	mustCreate(t, s, "B", "13:00", "14:00")
	otherID := int64(777)

	tests := []struct {
		name       string
		start, end string
		exclude    *int64
		want       bool
	}{
		{"overlaps A", "09:30", "10:30", nil, true},
		{"overlaps A but A excluded", "09:30", "10:30", &a.ID, false},
		{"overlaps A, unrelated exclude", "09:30", "10:30", &otherID, true},
		{"free gap", "10:00", "13:00", nil, false},
		{"spans both", "08:00", "15:00", &a.ID, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.CheckOverlap(ctx, tt.start, tt.end, tt.exclude)
			if err != nil {
				t.Fatalf("CheckOverlap failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("CheckOverlap(%s, %s) = %v, want %v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestStore_Conflicts(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, "A", "09:00", "10:00")
	mustCreate(t, s, "B", "10:00", "11:00")
	mustCreate(t, s, "C", "12:00", "13:00")

	conflicts, err := s.Conflicts(context.Background(), "09:30", "10:30", nil)
	if err != nil {
		t.Fatalf("Conflicts failed: %v", err)
	}
	if len(conflicts) != 2 || conflicts[0].Name != "A" || conflicts[1].Name != "B" {
		t.Errorf("expected A and B, got %v", conflicts)
	}
}

func TestStore_StorageErrors(t *testing.T) {
	ctx := context.Background()
	storage := &flakyStorage{Storage: db.NewMemory(), f: &faults{listErr: errBoom}}
	s := New(storage)

	checks := map[string]error{}
	_, checks["List"] = s.List(ctx)
	_, checks["Create"] = s.Create(ctx, "A", "09:00", "10:00", task.DefaultColor)
	_, checks["CheckOverlap"] = s.CheckOverlap(ctx, "09:00", "10:00", nil)

	for op, err := range checks {
		if !errors.Is(err, ErrStorage) {
			t.Errorf("%s: expected ErrStorage, got %v", op, err)
		}
		if !errors.Is(err, errBoom) {
			t.Errorf("%s: expected wrapped cause, got %v", op, err)
		}
		var se *StorageError
		if !errors.As(err, &se) || se.Op == "" {
			t.Errorf("%s: expected *StorageError with op, got %v", op, err)
		}
	}
}

func TestStore_ConcurrentCreates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Create(ctx, "Contended", "09:00", "10:00", task.DefaultColor)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, overlaps int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, task.ErrTimeBlockOverlap):
			overlaps++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || overlaps != workers-1 {
		t.Errorf("expected 1 success and %d overlaps, got %d and %d", workers-1, ok, overlaps)
	}
}

func TestStore_LogsMutations(t *testing.T) {
	var buf bytes.Buffer
	s := New(db.NewMemory(), WithLogger(zerolog.New(&buf)))
	ctx := context.Background()

	if _, err := s.Create(ctx, "A", "09:00", "10:00", task.DefaultColor); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, _ = s.Create(ctx, "B", "09:30", "10:30", task.DefaultColor)

	out := buf.String()
	for _, want := range []string{`"component":"schedule"`, `"message":"task created"`, `"message":"operation rejected"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log to contain %s, got:\n%s", want, out)
		}
	}
}

func TestStore_CreateMany(t *testing.T) {
	ctx := context.Background()

	t.Run("all or nothing", func(t *testing.T) {
		s := newTestStore(t)
		mustCreate(t, s, "Existing", "12:00", "13:00")

		_, err := s.CreateMany(ctx, []*task.Task{
			{Name: "Fits", Start: "09:00", End: "10:00", Color: task.DefaultColor},
			{Name: "Clashes", Start: "12:30", End: "13:30", Color: task.DefaultColor},
		})
		if !errors.Is(err, task.ErrTimeBlockOverlap) {
			t.Fatalf("expected ErrTimeBlockOverlap, got %v", err)
		}

		tasks, _ := s.List(ctx)
		if len(tasks) != 1 {
			t.Errorf("expected only the existing task, got %d", len(tasks))
		}
	})

	t.Run("blocks checked against each other", func(t *testing.T) {
		s := newTestStore(t)
		_, err := s.CreateMany(ctx, []*task.Task{
			{Name: "First", Start: "09:00", End: "10:00", Color: task.DefaultColor},
			{Name: "Second", Start: "09:30", End: "10:30", Color: task.DefaultColor},
		})
		if !errors.Is(err, task.ErrTimeBlockOverlap) {
			t.Fatalf("expected ErrTimeBlockOverlap, got %v", err)
		}
	})

	t.Run("assigns ids", func(t *testing.T) {
		s := newTestStore(t)
		created, err := s.CreateMany(ctx, []*task.Task{
			{Name: "First", Start: "09:00", End: "10:00", Color: task.DefaultColor},
			{Name: "Second", Start: "10:00", End: "11:00", Color: "#a6e3a1"},
		})
		if err != nil {
			t.Fatalf("CreateMany failed: %v", err)
		}
		if len(created) != 2 || created[0].ID == 0 || created[0].ID == created[1].ID {
			t.Fatalf("unexpected created tasks: %+v", created)
		}
		if created[1].Color != "#a6e3a1" {
			t.Errorf("expected color to be kept, got %s", created[1].Color)
		}
	})
}
