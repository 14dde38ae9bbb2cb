package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/dayblocks/internal/task"
)

const systemPromptWithContext = `You are a scheduling assistant that lays out a single day as colored time blocks.

Context:
- Current time: %s (%s)
- Preferred hours for new blocks: %s to %s
- The logical day starts at 06:00; blocks between 00:00 and 06:00 belong to the late night of the same day.

%s

%s

User request: "%s"

Rules:
1. Use 24-hour time format (HH:MM) for start and end
2. end must be after start; a block may not cross midnight
3. Never overlap with existing blocks listed above or with each other
4. Prefer the free windows listed above
5. Round durations to 15-minute increments (minimum 15 minutes)
6. Prefer starting at or after the current time (%s)
7. Pick a color for each block as "#RRGGBB"; reuse the color of a similar existing block
8. Add a warning if the request does not fit in the free time
9. Keep block names short (under 40 characters)

Respond ONLY with valid JSON (no markdown, no explanation):
{
  "tasks": [
    {
      "name": "string",
      "start": "HH:MM",
      "end": "HH:MM",
      "color": "#RRGGBB"
    }
  ],
  "warnings": ["string"],
  "suggestions": ["string"]
}`

const systemPromptCompact = `You are a scheduling assistant. Return JSON only.

Current time: %s
Preferred hours: %s to %s

%s

User request: "%s"

Rules:
- Return JSON only (no markdown).
- Times are HH:MM (24-hour); end after start; no crossing midnight.
- Do not overlap existing blocks or each other.
- Use 15-minute increments (minimum 15 minutes).
- color is "#RRGGBB".
- "warnings" and "suggestions" must be arrays of strings (no objects).

JSON schema:
{
  "tasks": [
    {"name": "string", "start": "HH:MM", "end": "HH:MM", "color": "#RRGGBB"}
  ],
  "warnings": ["string"],
  "suggestions": ["string"]
}`

// FreeWindow is a free interval offered to the LLM.
type FreeWindow struct {
	Start string // HH:MM
	End   string // HH:MM
}

// PlanRequest contains the input for the planner.
type PlanRequest struct {
	Input            string
	Now              time.Time
	DayStart         string       // "HH:MM"
	DayEnd           string       // "HH:MM"
	Existing         []*task.Task // blocks already in the day
	Free             []FreeWindow // free windows inside [DayStart, DayEnd)
	UseCompactPrompt bool         // Use a shorter prompt for local models
}

// PlanResponse contains the parsed LLM response.
type PlanResponse struct {
	Tasks       []PlannedTask `json:"tasks"`
	Warnings    []string      `json:"warnings"`
	Suggestions []string      `json:"suggestions"`
}

// PlannedTask is a block proposed by the LLM.
type PlannedTask struct {
	Name  string `json:"name"`
	Start string `json:"start"`
	End   string `json:"end"`
	Color string `json:"color"`
}

// Planner uses an LLM to plan blocks from natural language input.
type Planner struct {
	client Client
}

// NewPlanner creates a new Planner with the given LLM client.
func NewPlanner(client Client) *Planner {
	return &Planner{client: client}
}

// Plan converts natural language input into proposed blocks.
func (p *Planner) Plan(ctx context.Context, req PlanRequest) (*PlanResponse, error) {
	messages := p.buildInitialMessages(req)
	return p.planWithMessages(ctx, messages)
}

// PlanWithMessages allows planning with a pre-built message history.
// This is used for retry logic where we need to append error feedback.
func (p *Planner) PlanWithMessages(ctx context.Context, messages []Message) (*PlanResponse, error) {
	return p.planWithMessages(ctx, messages)
}

// BuildInitialMessages creates the initial message list for a planning request.
func (p *Planner) BuildInitialMessages(req PlanRequest) []Message {
	return p.buildInitialMessages(req)
}

func (p *Planner) buildInitialMessages(req PlanRequest) []Message {
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	currentTime := now.Format("15:04")

	dayStart := req.DayStart
	if dayStart == "" {
		dayStart = "08:00"
	}
	dayEnd := req.DayEnd
	if dayEnd == "" {
		dayEnd = "20:00"
	}

	existingSection := formatExisting(req.Existing)
	freeSection := formatFree(req.Free)

	var prompt string
	if req.UseCompactPrompt {
		prompt = fmt.Sprintf(systemPromptCompact,
			currentTime,
			dayStart,
			dayEnd,
			existingSection,
			req.Input,
		)
	} else {
		prompt = fmt.Sprintf(systemPromptWithContext,
			currentTime,          // Current time
			now.Format("Monday"), // Day of week
			dayStart,             // Preferred start
			dayEnd,               // Preferred end
			existingSection,      // Existing blocks
			freeSection,          // Free windows
			req.Input,            // User request
			currentTime,          // "prefer after" rule
		)
	}

	return []Message{
		{Role: "system", Content: prompt},
	}
}

func formatExisting(tasks []*task.Task) string {
	if len(tasks) == 0 {
		return "Existing blocks: None"
	}

	var sb strings.Builder
	sb.WriteString("Existing blocks (avoid overlaps):\n")
	for _, t := range tasks {
		sb.WriteString(fmt.Sprintf("- %s-%s: %s [%s]\n", t.Start, t.End, t.Name, t.Color))
	}
	return sb.String()
}

func formatFree(windows []FreeWindow) string {
	if len(windows) == 0 {
		return "Free windows: None"
	}

	var sb strings.Builder
	sb.WriteString("Free windows:\n")
	for _, w := range windows {
		sb.WriteString(fmt.Sprintf("- %s-%s\n", w.Start, w.End))
	}
	return sb.String()
}

func (p *Planner) planWithMessages(ctx context.Context, messages []Message) (*PlanResponse, error) {
	var resp PlanResponse
	if err := p.client.ChatJSON(ctx, messages, &resp); err != nil {
		return nil, fmt.Errorf("getting plan from LLM: %w", err)
	}
	return &resp, nil
}
