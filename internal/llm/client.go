// Package llm provides LLM clients and the prompts used to plan and review a day.
package llm

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client defines the interface for LLM providers.
type Client interface {
	// Chat sends messages to the LLM and returns the response.
	Chat(ctx context.Context, messages []Message) (string, error)

	// ChatJSON sends messages and parses the response as JSON into the provided type.
	ChatJSON(ctx context.Context, messages []Message, result any) error
}

// loggedClient records every request made through next.
type loggedClient struct {
	next     Client
	provider string
	model    string
	log      zerolog.Logger
}

func (c *loggedClient) Chat(ctx context.Context, messages []Message) (string, error) {
	start := time.Now()
	reply, err := c.next.Chat(ctx, messages)
	c.record("chat", messages, start, err).Int("reply_chars", len(reply)).Send()
	return reply, err
}

func (c *loggedClient) ChatJSON(ctx context.Context, messages []Message, result any) error {
	start := time.Now()
	err := c.next.ChatJSON(ctx, messages, result)
	c.record("chat_json", messages, start, err).Send()
	return err
}

func (c *loggedClient) record(op string, messages []Message, start time.Time, err error) *zerolog.Event {
	chars := 0
	for _, m := range messages {
		chars += len(m.Content)
	}

	ev := c.log.Debug()
	if err != nil {
		ev = c.log.Warn().Err(err)
	}
	return ev.
		Str("provider", c.provider).
		Str("model", c.model).
		Str("op", op).
		Int("messages", len(messages)).
		Int("prompt_chars", chars).
		Dur("took", time.Since(start))
}
