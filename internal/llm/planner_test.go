package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/javiermolinar/dayblocks/internal/task"
)

// fakeClient returns canned responses and records the messages it received.
type fakeClient struct {
	reply    string
	err      error
	messages []Message
}

func (f *fakeClient) Chat(_ context.Context, messages []Message) (string, error) {
	f.messages = messages
	return f.reply, f.err
}

func (f *fakeClient) ChatJSON(ctx context.Context, messages []Message, result any) error {
	content, err := f.Chat(ctx, messages)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(extractJSON(content)), result)
}

func TestBuildInitialMessages_IncludesDayContext(t *testing.T) {
	planner := NewPlanner(nil)
	req := PlanRequest{
		Input:    "Gym for an hour and then groceries",
		Now:      time.Date(2026, 1, 8, 9, 30, 0, 0, time.UTC), // Thursday
		DayStart: "08:00",
		DayEnd:   "20:00",
		Existing: []*task.Task{
			{ID: 1, Name: "Standup", Start: "10:00", End: "10:15", Color: "#89b4fa"},
		},
		Free: []FreeWindow{{Start: "08:00", End: "10:00"}, {Start: "10:15", End: "20:00"}},
	}

	msgs := planner.BuildInitialMessages(req)
	if len(msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(msgs))
	}

	content := msgs[0].Content
	for _, want := range []string{
		"Current time: 09:30 (Thursday)",
		"Preferred hours for new blocks: 08:00 to 20:00",
		"- 10:00-10:15: Standup [#89b4fa]",
		"- 10:15-20:00",
		`User request: "Gym for an hour and then groceries"`,
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("missing %q in prompt: %s", want, content)
		}
	}
}

func TestBuildInitialMessages_CompactPrompt(t *testing.T) {
	planner := NewPlanner(nil)
	req := PlanRequest{
		Input:            "Plan my afternoon",
		Now:              time.Date(2026, 1, 8, 9, 30, 0, 0, time.UTC),
		UseCompactPrompt: true,
	}

	content := planner.BuildInitialMessages(req)[0].Content
	if strings.Contains(content, "logical day starts") {
		t.Fatalf("expected compact prompt without day context: %s", content)
	}
	if !strings.Contains(content, "Existing blocks: None") {
		t.Fatalf("missing existing blocks section: %s", content)
	}
	if !strings.Contains(content, "Preferred hours: 08:00 to 20:00") {
		t.Fatalf("expected default hours: %s", content)
	}
}

func TestPlan_ParsesResponse(t *testing.T) {
	client := &fakeClient{reply: "```json\n" + `{
  "tasks": [{"name": "Gym", "start": "18:00", "end": "19:00", "color": "#a6e3a1"}],
  "warnings": ["tight evening"],
  "suggestions": []
}` + "\n```"}

	resp, err := NewPlanner(client).Plan(context.Background(), PlanRequest{Input: "gym"})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	want := PlannedTask{Name: "Gym", Start: "18:00", End: "19:00", Color: "#a6e3a1"}
	if len(resp.Tasks) != 1 || resp.Tasks[0] != want {
		t.Errorf("tasks = %+v, want [%+v]", resp.Tasks, want)
	}
	if len(resp.Warnings) != 1 {
		t.Errorf("warnings = %v", resp.Warnings)
	}
	if len(client.messages) != 1 || client.messages[0].Role != "system" {
		t.Errorf("unexpected messages sent: %+v", client.messages)
	}
}

func TestPlan_ClientError(t *testing.T) {
	boom := errors.New("offline")
	_, err := NewPlanner(&fakeClient{err: boom}).Plan(context.Background(), PlanRequest{Input: "x"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped client error, got %v", err)
	}
}

func TestReviewDay(t *testing.T) {
	client := &fakeClient{reply: "THEME: Busy morning"}
	tasks := []*task.Task{
		{ID: 1, Name: "Write", Start: "09:00", End: "11:00"},
		{ID: 2, Name: "Night shift", Start: "01:00", End: "02:30"},
	}

	got, err := NewEvaluator(client).ReviewDay(context.Background(), tasks)
	if err != nil {
		t.Fatalf("ReviewDay failed: %v", err)
	}
	if got != "THEME: Busy morning" {
		t.Errorf("ReviewDay = %q", got)
	}

	prompt := client.messages[1].Content
	if !strings.Contains(prompt, "Day (2 blocks, 3h30m busy, 20h30m free)") {
		t.Errorf("missing stats line: %s", prompt)
	}
	if strings.Index(prompt, "Write") > strings.Index(prompt, "Night shift") {
		t.Errorf("expected logical-day order: %s", prompt)
	}
}

func TestReviewDay_OverlappingInput(t *testing.T) {
	tasks := []*task.Task{
		{ID: 1, Name: "A", Start: "09:00", End: "10:00"},
		{ID: 2, Name: "B", Start: "09:30", End: "10:30"},
	}
	_, err := NewEvaluator(&fakeClient{}).ReviewDay(context.Background(), tasks)
	if !errors.Is(err, task.ErrTimeBlockOverlap) {
		t.Fatalf("expected ErrTimeBlockOverlap, got %v", err)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := map[int]string{0: "0m", 45: "45m", 60: "1h", 90: "1h30m"}
	for in, want := range tests {
		if got := formatDuration(in); got != want {
			t.Errorf("formatDuration(%d) = %q, want %q", in, got, want)
		}
	}
}
