package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/javiermolinar/dayblocks/internal/task"
)

const evaluatorSystemPrompt = `You are a minimalist productivity analyst. Output ONLY the exact format shown - no markdown, no extra text. Be extremely concise.`

const userPromptTemplate = `Review this day plan and output EXACTLY this format (no markdown, no code blocks):

THEME: [ 2-4 word theme ]

⚠️  OVERLOAD: One sentence if the day has more than 10h of blocks, else omit.
🧠 GAPS: Mention any block followed by another with no break for more than 3h.
🌙 LATE: Mention blocks after 23:00 or before 06:00.

SUGGESTIONS:
➜  First specific change.
➜  Second specific change.

Day (%d blocks, %s busy, %s free):
%s

Rules:
- Use the exact emoji prefixes shown (⚠️, 🧠, 🌙, ➜)
- Keep each line under 70 characters
- Be specific with times and durations from the data
- If no issue exists for a category, omit that line
- Output plain text only, no markdown formatting`

// Evaluator reviews a day plan with an LLM.
type Evaluator struct {
	client Client
}

// NewEvaluator creates a new Evaluator with the given LLM client.
func NewEvaluator(client Client) *Evaluator {
	return &Evaluator{client: client}
}

// ReviewDay sends the day's blocks to the LLM and returns its review.
func (e *Evaluator) ReviewDay(ctx context.Context, tasks []*task.Task) (string, error) {
	day, err := task.NewDayWithTasks(tasks)
	if err != nil {
		return "", fmt.Errorf("building day: %w", err)
	}
	stats := day.Stats()

	prompt := fmt.Sprintf(userPromptTemplate,
		stats.Blocks,
		formatDuration(stats.BusyMinutes),
		formatDuration(stats.FreeMinutes()),
		formatDayData(day.Tasks()),
	)

	return e.client.Chat(ctx, []Message{
		{Role: "system", Content: evaluatorSystemPrompt},
		{Role: "user", Content: prompt},
	})
}

// formatDayData formats blocks one per line, in logical-day order.
func formatDayData(tasks []*task.Task) string {
	ordered := task.SortLogical(tasks)

	var sb strings.Builder
	for _, t := range ordered {
		sb.WriteString(fmt.Sprintf("  %s-%s  %s  %s\n",
			t.Start,
			t.End,
			t.Name,
			formatDuration(t.Duration())))
	}
	return sb.String()
}

// formatDuration formats minutes as a human-readable duration.
func formatDuration(minutes int) string {
	if minutes == 0 {
		return "0m"
	}
	hours := minutes / 60
	mins := minutes % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh%dm", hours, mins)
}
