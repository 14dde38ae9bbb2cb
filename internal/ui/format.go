package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/javiermolinar/dayblocks/internal/scheduler"
	"github.com/javiermolinar/dayblocks/internal/task"
)

// PrintTaskRow prints a single task row: swatch, id, interval, duration, name.
// Names longer than maxNameWidth are truncated.
func PrintTaskRow(w io.Writer, t *task.Task, maxNameWidth int) {
	name := t.Name
	if maxNameWidth > 3 && len(name) > maxNameWidth {
		name = name[:maxNameWidth-3] + "..."
	}

	marker := " "
	if task.AbsoluteStart(t.Start) >= task.MinutesPerDay {
		// Belongs to the tail of the logical day.
		marker = "+"
	}

	_, _ = fmt.Fprintf(w, "  %s %s#%-4d %s-%s  %-6s  %s\n",
		swatch(t.Color), marker, t.ID, t.Start, t.End,
		formatMuted(FormatDuration(t.Duration())), name)
}

// PrintDayStats prints the busy/free summary of a day.
func PrintDayStats(w io.Writer, stats task.DayStats) {
	_, _ = fmt.Fprintf(w, "%s | %s | Total: %d blocks\n",
		formatStats("Busy: "+FormatDuration(stats.BusyMinutes)),
		formatMuted("Free: "+FormatDuration(stats.FreeMinutes())),
		stats.Blocks)
}

// PrintFreeSlots prints the free slots of the configured window.
func PrintFreeSlots(w io.Writer, slots []scheduler.Slot) {
	if len(slots) == 0 {
		_, _ = fmt.Fprintln(w, formatMuted("No free time left in the window."))
		return
	}
	parts := make([]string, 0, len(slots))
	for _, s := range slots {
		parts = append(parts, fmt.Sprintf("%s-%s (%s)", s.Start, s.End, FormatDuration(s.Minutes())))
	}
	_, _ = fmt.Fprintf(w, "Free: %s\n", strings.Join(parts, ", "))
}

// PrintConflicts prints the tasks start-end collides with and by how much.
func PrintConflicts(w io.Writer, start, end string, conflicts []*task.Task) {
	for _, c := range conflicts {
		overlap := task.OverlapMinutes(start, end, c.Start, c.End)
		_, _ = fmt.Fprintf(w, "  %s #%d %s-%s %s %s\n", formatWarn("!"), c.ID, c.Start, c.End, c.Name,
			formatMuted("("+FormatDuration(overlap)+" overlap)"))
	}
}

// FormatDuration formats minutes as a human-readable duration.
func FormatDuration(minutes int) string {
	if minutes == 0 {
		return "0m"
	}
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	hours := minutes / 60
	mins := minutes % 60
	if hours == 0 {
		return fmt.Sprintf("%s%dm", sign, mins)
	}
	if mins == 0 {
		return fmt.Sprintf("%s%dh", sign, hours)
	}
	return fmt.Sprintf("%s%dh%dm", sign, hours, mins)
}

// PrintInsightWrapped formats and prints insight text preserving structure.
func PrintInsightWrapped(w io.Writer, text string, width int) {
	// Strip markdown code blocks
	text = stripMarkdownCodeBlocks(text)

	lines := strings.Split(text, "\n")
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			_, _ = fmt.Fprintln(w)
			continue
		}

		// Detect and format special line types
		prefix, content, contentWidth, isHeader := parseInsightLine(trimmed, width)
		if isHeader {
			_, _ = fmt.Fprintln(w)
			_, _ = fmt.Fprintln(w, formatHeader("  "+content))
			continue
		}

		wrapAndPrint(w, content, prefix, contentWidth)
	}
}

// parseInsightLine parses a line and returns formatting info.
func parseInsightLine(trimmed string, width int) (prefix, content string, contentWidth int, isHeader bool) {
	prefix = "  "
	content = trimmed
	contentWidth = width - 2

	switch {
	case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
		prefix = "    • "
		content = strings.TrimPrefix(strings.TrimPrefix(trimmed, "- "), "* ")
		contentWidth = width - 6

	case strings.HasPrefix(trimmed, "#"):
		content = strings.TrimLeft(trimmed, "# ")
		isHeader = true

	case strings.HasPrefix(trimmed, ">"):
		content = strings.TrimPrefix(trimmed, "> ")
		prefix = "  │ "
		contentWidth = width - 4

	case isNumberedItem(trimmed):
		idx := strings.Index(trimmed, ".")
		prefix = "  " + trimmed[:idx+1] + " "
		content = strings.TrimSpace(trimmed[idx+1:])
		contentWidth = width - len(prefix)
	}

	return prefix, content, contentWidth, isHeader
}

// isNumberedItem checks if a line starts with a number followed by a period.
func isNumberedItem(s string) bool {
	if len(s) < 3 {
		return false
	}
	if s[0] < '1' || s[0] > '9' {
		return false
	}
	if s[1] == '.' {
		return true
	}
	if s[1] >= '0' && s[1] <= '9' && len(s) > 3 && s[2] == '.' {
		return true
	}
	return false
}

// wrapAndPrint wraps text to width and prints with the given prefix.
func wrapAndPrint(w io.Writer, text, prefix string, width int) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return
	}

	line := ""
	continuation := strings.Repeat(" ", len(prefix))
	first := true

	flush := func() {
		p := continuation
		if first {
			p = prefix
		}
		_, _ = fmt.Fprintln(w, formatInsight(p+line))
		first = false
	}

	for _, word := range words {
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) <= width:
			line += " " + word
		default:
			flush()
			line = word
		}
	}
	if line != "" {
		flush()
	}
}

// stripMarkdownCodeBlocks removes ```...``` fences from text.
func stripMarkdownCodeBlocks(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inCodeBlock = !inCodeBlock
			continue
		}
		if !inCodeBlock {
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}
