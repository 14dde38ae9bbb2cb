package commands

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/javiermolinar/dayblocks/internal/config"
	"github.com/javiermolinar/dayblocks/internal/db"
	"github.com/javiermolinar/dayblocks/internal/llm"
	"github.com/javiermolinar/dayblocks/internal/schedule"
	"github.com/javiermolinar/dayblocks/internal/task"
)

type cannedClient struct {
	reply string
}

func (c cannedClient) Chat(context.Context, []llm.Message) (string, error) {
	return c.reply, nil
}

func (c cannedClient) ChatJSON(ctx context.Context, messages []llm.Message, result any) error {
	content, err := c.Chat(ctx, messages)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(content), result)
}

func useClient(t *testing.T, c llm.Client) {
	t.Helper()
	orig := newClient
	newClient = func(config.LLMConfig, zerolog.Logger) (llm.Client, error) { return c, nil }
	t.Cleanup(func() { newClient = orig })
}

func newStore(t *testing.T, blocks ...[3]string) *schedule.Store {
	t.Helper()
	store := schedule.New(db.NewMemory())
	t.Cleanup(func() { _ = store.Close() })
	for _, b := range blocks {
		if _, err := store.Create(context.Background(), b[0], b[1], b[2], task.DefaultColor); err != nil {
			t.Fatalf("Create(%v) failed: %v", b, err)
		}
	}
	return store
}

func listed(t *testing.T, store Store) []*task.Task {
	t.Helper()
	msg := LoadTasks(store)()
	loaded, ok := msg.(TasksLoadedMsg)
	if !ok {
		t.Fatalf("LoadTasks returned %T", msg)
	}
	return loaded.Tasks
}

func TestCreateTask(t *testing.T) {
	store := newStore(t, [3]string{"Lunch", "12:00", "13:00"})

	msg := CreateTask(store, "  Gym ", "18:00", "19:00", "#A6E3A1")()
	saved, ok := msg.(TaskSavedMsg)
	if !ok {
		t.Fatalf("CreateTask returned %T", msg)
	}
	if saved.Task.Name != "Gym" || saved.Task.Color != "#a6e3a1" || saved.Action != "added" {
		t.Errorf("unexpected saved task %+v", saved)
	}

	msg = CreateTask(store, "Clash", "12:30", "13:30", "")()
	errMsg, ok := msg.(ErrMsg)
	if !ok || !errors.Is(errMsg.Err, task.ErrTimeBlockOverlap) {
		t.Fatalf("expected overlap error, got %#v", msg)
	}

	msg = CreateTask(store, "Bad", "14:00", "13:00", "")()
	if errMsg, ok := msg.(ErrMsg); !ok || !errors.Is(errMsg.Err, task.ErrEndBeforeStart) {
		t.Fatalf("expected ErrEndBeforeStart, got %#v", msg)
	}
}

func TestRenameTask(t *testing.T) {
	store := newStore(t, [3]string{"Lunch", "12:00", "13:00"})
	lunch := listed(t, store)[0]

	if msg, ok := RenameTask(store, lunch, "   ")().(ErrMsg); !ok || !errors.Is(msg.Err, task.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %#v", msg)
	}

	msg := RenameTask(store, lunch, "Long lunch")()
	if _, ok := msg.(TaskSavedMsg); !ok {
		t.Fatalf("RenameTask returned %T", msg)
	}
	if got := listed(t, store)[0]; got.Name != "Long lunch" || got.Start != "12:00" || got.End != "13:00" {
		t.Errorf("unexpected task after rename %+v", got)
	}

	msg = RenameTask(store, lunch, "  padded  ")()
	if saved, ok := msg.(TaskSavedMsg); !ok || saved.Task.Name != "padded" {
		t.Fatalf("RenameTask returned %#v", msg)
	}
	if got := listed(t, store)[0]; got.Name != "padded" {
		t.Errorf("stored name = %q, want it trimmed", got.Name)
	}
}

func TestResizeTask_ShiftsLaterBlocks(t *testing.T) {
	store := newStore(t,
		[3]string{"Focus", "09:00", "10:00"},
		[3]string{"Break", "10:00", "10:15"},
		[3]string{"Early", "07:00", "08:00"},
	)
	tasks := listed(t, store)
	var focus *task.Task
	for _, tk := range tasks {
		if tk.Name == "Focus" {
			focus = tk
		}
	}

	msg := ResizeTask(store, focus, ResizeStep)()
	if _, ok := msg.(TaskSavedMsg); !ok {
		t.Fatalf("ResizeTask returned %#v", msg)
	}

	want := map[string][2]string{
		"Focus": {"09:00", "10:15"},
		"Break": {"10:15", "10:30"},
		"Early": {"07:00", "08:00"},
	}
	for _, tk := range listed(t, store) {
		if got := [2]string{tk.Start, tk.End}; got != want[tk.Name] {
			t.Errorf("%s = %v, want %v", tk.Name, got, want[tk.Name])
		}
	}
}

func TestResizeTask_Limits(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		delta int
	}{
		{name: "shrink to nothing", start: "09:00", end: "09:15", delta: -ResizeStep},
		{name: "grow past midnight", start: "23:00", end: "23:50", delta: ResizeStep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore(t, [3]string{"Block", tt.start, tt.end})
			block := listed(t, store)[0]

			msg := ResizeTask(store, block, tt.delta)()
			errMsg, ok := msg.(ErrMsg)
			if !ok || !errors.Is(errMsg.Err, ErrInvalidResize) {
				t.Fatalf("expected ErrInvalidResize, got %#v", msg)
			}
			if got := listed(t, store)[0]; got.End != tt.end {
				t.Errorf("block changed to %+v", got)
			}
		})
	}
}

func TestDeleteTaskAndDeleteAll(t *testing.T) {
	store := newStore(t,
		[3]string{"A", "09:00", "10:00"},
		[3]string{"B", "10:00", "11:00"},
	)
	first := listed(t, store)[0]

	if msg, ok := DeleteTask(store, first.ID)().(TaskDeletedMsg); !ok || msg.ID != first.ID {
		t.Fatalf("DeleteTask returned %#v", msg)
	}
	if got := listed(t, store); len(got) != 1 {
		t.Fatalf("expected 1 task left, got %d", len(got))
	}

	// Deleting twice is a no-op.
	if _, ok := DeleteTask(store, first.ID)().(TaskDeletedMsg); !ok {
		t.Fatal("second DeleteTask should succeed")
	}

	if _, ok := DeleteAll(store)().(TaskDeletedMsg); !ok {
		t.Fatal("DeleteAll failed")
	}
	if got := listed(t, store); len(got) != 0 {
		t.Fatalf("expected empty day, got %d tasks", len(got))
	}
}

func TestPlanAndSave(t *testing.T) {
	useClient(t, cannedClient{reply: `{"tasks":[{"name":"Write","start":"09:00","end":"11:00"}],"warnings":[],"suggestions":[]}`})
	store := newStore(t)

	msg := Plan("two hours of writing", config.Default(), store)()
	planned, ok := msg.(PlanResultMsg)
	if !ok {
		t.Fatalf("Plan returned %#v", msg)
	}
	if planned.Result.TotalTasks() != 1 {
		t.Fatalf("expected 1 proposed block, got %d", planned.Result.TotalTasks())
	}

	msg = SavePlan(planned.Planner, planned.Result)()
	if saved, ok := msg.(PlanSavedMsg); !ok || saved.Count != 1 {
		t.Fatalf("SavePlan returned %#v", msg)
	}
	if got := listed(t, store); len(got) != 1 || got[0].Name != "Write" {
		t.Errorf("unexpected stored blocks %+v", got)
	}
}

func TestSavePlan_WithoutPlan(t *testing.T) {
	if _, ok := SavePlan(nil, nil)().(ErrMsg); !ok {
		t.Fatal("expected ErrMsg without a plan")
	}
	if _, ok := ContinuePlan(nil, "more")().(ErrMsg); !ok {
		t.Fatal("expected ErrMsg without a planning session")
	}
}

func TestReview(t *testing.T) {
	useClient(t, cannedClient{reply: "THEME: steady"})
	store := newStore(t, [3]string{"Lunch", "12:00", "13:00"})

	msg := Review(config.Default(), store)()
	review, ok := msg.(ReviewMsg)
	if !ok || review.Text != "THEME: steady" {
		t.Fatalf("Review returned %#v", msg)
	}
}
