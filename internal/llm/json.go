package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeJSON unmarshals the JSON payload of an LLM answer into v.
func decodeJSON(content string, v any) error {
	if err := json.Unmarshal([]byte(extractJSON(content)), v); err != nil {
		return fmt.Errorf("parsing JSON response: %w (content: %s)", err, content)
	}
	return nil
}

// extractJSON returns the JSON inside a model answer: the body of the first
// fenced code block, else the first balanced object or array, else s.
func extractJSON(s string) string {
	if body, ok := fencedBlock(s); ok {
		return body
	}
	if i := strings.IndexAny(s, "{["); i >= 0 {
		if end := closingBracket(s, i); end > i {
			return s[i : end+1]
		}
	}
	return s
}

func fencedBlock(s string) (string, bool) {
	_, rest, ok := strings.Cut(s, "```")
	if !ok {
		return "", false
	}
	// Drop a language tag such as "json" on the opening fence line.
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 && !strings.ContainsAny(rest[:nl], "{[") {
		rest = rest[nl+1:]
	}
	body, _, ok := strings.Cut(rest, "```")
	if !ok {
		return "", false
	}
	return strings.Trim(body, "\r\n"), true
}

// closingBracket returns the index of the bracket closing the one at open,
// ignoring brackets inside JSON strings, or -1.
func closingBracket(s string, open int) int {
	depth := 0
	inString, escaped := false, false
	for i := open; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{' || c == '[':
			depth++
		case c == '}' || c == ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
