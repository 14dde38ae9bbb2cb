package ui

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/javiermolinar/dayblocks/internal/config"
	"github.com/javiermolinar/dayblocks/internal/db"
	"github.com/javiermolinar/dayblocks/internal/schedule"
	"github.com/javiermolinar/dayblocks/internal/task"
)

func init() {
	DisableColor()
}

func newTestStore(t *testing.T) *schedule.Store {
	t.Helper()
	store := schedule.New(db.NewMemory())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// run executes one command on a fresh App sharing store.
func run(t *testing.T, store *schedule.Store, stdin string, args ...string) (string, error) {
	t.Helper()
	app := NewApp(store, config.Default(), zerolog.Nop())

	var out bytes.Buffer
	app.root.SetOut(&out)
	app.root.SetErr(&out)
	app.root.SetIn(strings.NewReader(stdin))
	app.root.SetArgs(args)
	err := app.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, store *schedule.Store, args ...string) string {
	t.Helper()
	out, err := run(t, store, "", args...)
	if err != nil {
		t.Fatalf("%v failed: %v\n%s", args, err, out)
	}
	return out
}

func times(t *testing.T, store *schedule.Store) map[string]string {
	t.Helper()
	tasks, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	got := make(map[string]string, len(tasks))
	for _, tk := range tasks {
		got[tk.Name] = tk.Start + "-" + tk.End
	}
	return got
}

func TestAddAndList(t *testing.T) {
	store := newTestStore(t)

	out := mustRun(t, store, "add", "Write", "docs", "--start=09:00", "--end=11:00")
	if !strings.Contains(out, "Created block #1: Write docs 09:00-11:00") {
		t.Errorf("unexpected add output: %q", out)
	}
	mustRun(t, store, "add", "Late", "--start=01:00", "--end=02:00", "--color=#F38BA8")

	out = mustRun(t, store, "list")
	write := strings.Index(out, "Write docs")
	late := strings.Index(out, "Late")
	if write < 0 || late < 0 || late < write {
		t.Errorf("expected logical-day order, got:\n%s", out)
	}
	if !strings.Contains(out, "+#2") {
		t.Errorf("expected early-morning marker, got:\n%s", out)
	}
	if !strings.Contains(out, "Busy: 3h") || !strings.Contains(out, "Total: 2 blocks") {
		t.Errorf("missing stats, got:\n%s", out)
	}
	if !strings.Contains(out, "Free: 08:00-09:00 (1h), 11:00-20:00 (9h)") {
		t.Errorf("missing free slots, got:\n%s", out)
	}
}

func TestListEmpty(t *testing.T) {
	out := mustRun(t, newTestStore(t), "list")
	if !strings.Contains(out, "No blocks scheduled.") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestAdd_Errors(t *testing.T) {
	store := newTestStore(t)
	mustRun(t, store, "add", "Lunch", "--start=12:00", "--end=13:00")

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"overlap", []string{"add", "Clash", "--start=12:30", "--end=13:30"}, task.ErrTimeBlockOverlap},
		{"crosses midnight", []string{"add", "Party", "--start=23:00", "--end=01:00"}, task.ErrEndBeforeStart},
		{"bad time", []string{"add", "X", "--start=9:00", "--end=10:00"}, task.ErrInvalidTimeFormat},
		{"bad color", []string{"add", "X", "--start=14:00", "--end=15:00", "--color=blue"}, task.ErrInvalidColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, store, "", tt.args...)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAdd_Duration(t *testing.T) {
	store := newTestStore(t)
	mustRun(t, store, "add", "Morning", "--start=08:00", "--end=09:30")

	mustRun(t, store, "add", "Gym", "--duration=60")
	mustRun(t, store, "add", "Call", "--duration=30", "--after=17:05")

	got := times(t, store)
	if got["Gym"] != "09:30-10:30" {
		t.Errorf("Gym = %s, want 09:30-10:30", got["Gym"])
	}
	if got["Call"] != "17:15-17:45" {
		t.Errorf("Call = %s, want 17:15-17:45", got["Call"])
	}

	if _, err := run(t, store, "", "add", "Huge", "--duration=900"); err == nil {
		t.Error("expected error when no slot fits")
	}
}

func TestEdit(t *testing.T) {
	store := newTestStore(t)
	mustRun(t, store, "add", "A", "--start=09:00", "--end=10:00")
	mustRun(t, store, "add", "B", "--start=10:00", "--end=11:00")

	mustRun(t, store, "edit", "1", "--name=Focus", "--end=09:45")
	if got := times(t, store); got["Focus"] != "09:00-09:45" || got["B"] != "10:00-11:00" {
		t.Errorf("unexpected schedule after edit: %v", got)
	}

	if _, err := run(t, store, "", "edit", "1", "--end=10:30"); !errors.Is(err, task.ErrTimeBlockOverlap) {
		t.Errorf("expected overlap error, got %v", err)
	}
	if _, err := run(t, store, "", "edit", "42", "--name=X"); !errors.Is(err, task.ErrTaskNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := run(t, store, "", "edit", "abc"); err == nil {
		t.Error("expected invalid id error")
	}
}

func TestShift(t *testing.T) {
	store := newTestStore(t)
	mustRun(t, store, "add", "A", "--start=09:00", "--end=10:00")
	mustRun(t, store, "add", "B", "--start=10:00", "--end=11:00")
	mustRun(t, store, "add", "Night", "--start=23:00", "--end=23:45")

	out := mustRun(t, store, "shift", "1", "--end=10:30", "--dry-run")
	if !strings.Contains(out, "(+30m)") || !strings.Contains(out, "#2 -> 10:30-11:30") {
		t.Errorf("unexpected preview:\n%s", out)
	}
	if got := times(t, store); got["B"] != "10:00-11:00" {
		t.Errorf("dry run changed B to %s", got["B"])
	}

	out = mustRun(t, store, "shift", "1", "--end=10:30")
	if !strings.Contains(out, "Block #1 now ends at 10:30 (+30m)") {
		t.Errorf("unexpected output: %q", out)
	}
	got := times(t, store)
	if got["A"] != "09:00-10:30" || got["B"] != "10:30-11:30" {
		t.Errorf("unexpected schedule: %v", got)
	}
	if got["Night"] != "23:30-00:15" {
		t.Errorf("Night = %s, want wrapped 23:30-00:15", got["Night"])
	}
}

func TestRmAndClear(t *testing.T) {
	store := newTestStore(t)
	mustRun(t, store, "add", "A", "--start=09:00", "--end=10:00")
	mustRun(t, store, "add", "B", "--start=10:00", "--end=11:00")
	mustRun(t, store, "add", "C", "--start=11:00", "--end=12:00")

	mustRun(t, store, "rm", "1", "99")
	if got := times(t, store); len(got) != 2 {
		t.Fatalf("expected 2 blocks after rm, got %v", got)
	}

	out, err := run(t, store, "n\n", "clear")
	if err != nil || !strings.Contains(out, "Nothing removed.") {
		t.Fatalf("clear without confirmation: %v %q", err, out)
	}
	if got := times(t, store); len(got) != 2 {
		t.Fatalf("declined clear removed blocks: %v", got)
	}

	if _, err := run(t, store, "y\n", "clear"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if got := times(t, store); len(got) != 0 {
		t.Errorf("expected empty schedule, got %v", got)
	}
}

func TestCheck(t *testing.T) {
	store := newTestStore(t)
	mustRun(t, store, "add", "Lunch", "--start=12:00", "--end=13:00")

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"check", "--start=13:00", "--end=14:00"}, "13:00-14:00 is free"},
		{[]string{"check", "--start=12:30", "--end=14:00"}, "overlaps 1 block(s)"},
		{[]string{"check", "--start=12:30", "--end=14:00", "--exclude=1"}, "12:30-14:00 is free"},
	}
	for _, tt := range tests {
		if out := mustRun(t, store, tt.args...); !strings.Contains(out, tt.want) {
			t.Errorf("%v: output %q, want %q", tt.args, out, tt.want)
		}
	}

	if _, err := run(t, store, "", "check", "--start=noon", "--end=14:00"); !errors.Is(err, task.ErrInvalidTimeFormat) {
		t.Errorf("expected format error, got %v", err)
	}
}

func TestExportImport(t *testing.T) {
	src := newTestStore(t)
	mustRun(t, src, "add", "A", "--start=09:00", "--end=10:00", "--color=#a6e3a1")
	mustRun(t, src, "add", "Late", "--start=00:30", "--end=01:00")

	path := filepath.Join(t.TempDir(), "day.yaml")
	mustRun(t, src, "export", "--file="+path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if !strings.Contains(string(data), "name: A") || strings.Contains(string(data), "task_id") {
		t.Errorf("unexpected export:\n%s", data)
	}

	dst := newTestStore(t)
	mustRun(t, dst, "add", "Other", "--start=15:00", "--end=16:00")
	mustRun(t, dst, "import", path)
	if got := times(t, dst); len(got) != 3 || got["Late"] != "00:30-01:00" {
		t.Errorf("unexpected schedule after import: %v", got)
	}

	// A second import collides with itself and must not change anything.
	if _, err := run(t, dst, "", "import", path); !errors.Is(err, task.ErrTimeBlockOverlap) {
		t.Errorf("expected overlap error, got %v", err)
	}
	if got := times(t, dst); len(got) != 3 {
		t.Errorf("failed import changed the schedule: %v", got)
	}

	mustRun(t, dst, "import", path, "--replace")
	if got := times(t, dst); len(got) != 2 || got["Other"] != "" {
		t.Errorf("unexpected schedule after replace: %v", got)
	}
}

func TestReadSchedule(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		want    int
		wantErr error
	}{
		{"empty", "", 0, nil},
		{"default color", "blocks:\n  - name: A\n    start: \"09:00\"\n    end: \"10:00\"\n", 1, nil},
		{"invalid", "blocks:\n  - name: A\n    start: \"10:00\"\n    end: \"09:00\"\n", 0, task.ErrEndBeforeStart},
		{"self overlap", "blocks:\n  - {name: A, start: \"09:00\", end: \"10:00\"}\n  - {name: B, start: \"09:30\", end: \"10:30\"}\n", 0, task.ErrTimeBlockOverlap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks, err := readSchedule(strings.NewReader(tt.doc), task.DefaultColor)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("readSchedule failed: %v", err)
			}
			if len(blocks) != tt.want {
				t.Fatalf("got %d blocks, want %d", len(blocks), tt.want)
			}
			for _, b := range blocks {
				if b.Color != task.DefaultColor {
					t.Errorf("color = %s, want default", b.Color)
				}
			}
		})
	}
}

func TestVersion(t *testing.T) {
	out := mustRun(t, newTestStore(t), "version")
	if !strings.HasPrefix(out, "dayblocks dev") {
		t.Errorf("unexpected version output: %q", out)
	}
}

func TestEphemeralStore(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.DBPath = filepath.Join(t.TempDir(), "never.db")

	app := NewApp(nil, cfg, zerolog.Nop())
	var out bytes.Buffer
	app.root.SetOut(&out)
	app.root.SetArgs([]string{"--ephemeral", "add", "A", "--start=09:00", "--end=10:00"})
	if err := app.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	defer func() { _ = app.Close() }()

	if _, err := os.Stat(cfg.Storage.DBPath); !os.IsNotExist(err) {
		t.Errorf("expected no database file, stat err = %v", err)
	}
}
