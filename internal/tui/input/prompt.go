// Package input holds the slash-command prompt helpers of the TUI.
package input

import "strings"

// PromptCommand describes a command suggestion entry.
type PromptCommand struct {
	Name        string
	Description string
}

// Commands are the slash commands the prompt understands.
var Commands = []PromptCommand{
	{Name: "/plan", Description: "Plan blocks from a description"},
	{Name: "/review", Description: "Ask the AI to review the day"},
	{Name: "/clear", Description: "Delete every block"},
}

// PromptMatchingCommands returns commands that match the current input prefix.
func PromptMatchingCommands(input string, commands []PromptCommand) []PromptCommand {
	if !strings.HasPrefix(strings.TrimSpace(input), "/") {
		return nil
	}
	if strings.Contains(input, " ") {
		return nil
	}

	prefix := strings.ToLower(strings.TrimSpace(input))
	matches := make([]PromptCommand, 0, len(commands))
	for _, cmd := range commands {
		if strings.HasPrefix(strings.ToLower(cmd.Name), prefix) {
			matches = append(matches, cmd)
		}
	}
	return matches
}

// PromptAutocomplete returns the first matching command and whether it exists.
func PromptAutocomplete(input string, commands []PromptCommand) (string, bool) {
	matches := PromptMatchingCommands(input, commands)
	if len(matches) == 0 {
		return "", false
	}
	return matches[0].Name + " ", true
}

// Parse splits prompt input into a lowercased command and its argument.
// Input without a leading slash is treated as an argument to /plan.
func Parse(input string) (command, arg string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ""
	}
	if !strings.HasPrefix(input, "/") {
		return "/plan", input
	}
	command, arg, _ = strings.Cut(input, " ")
	return strings.ToLower(command), strings.TrimSpace(arg)
}
