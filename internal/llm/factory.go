package llm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/javiermolinar/dayblocks/internal/config"
)

const (
	ProviderCopilot  = "copilot"
	ProviderOllama   = "ollama"
	ProviderLMStudio = "lmstudio"
)

// ErrUnsupportedProvider is returned for providers NewClient cannot build.
var ErrUnsupportedProvider = errors.New("unsupported LLM provider")

// NormalizeProvider maps a configured provider name and its aliases to one of
// the Provider constants. An empty name means copilot. Unknown names are
// returned lowercased.
func NormalizeProvider(provider string) string {
	switch p := strings.ToLower(strings.TrimSpace(provider)); p {
	case "", ProviderCopilot:
		return ProviderCopilot
	case "lm-studio", "llmstudio":
		return ProviderLMStudio
	default:
		return p
	}
}

// IsLocal reports whether provider runs a local model.
func IsLocal(provider string) bool {
	switch NormalizeProvider(provider) {
	case ProviderOllama, ProviderLMStudio:
		return true
	}
	return false
}

// NewClient builds the client described by cfg. Each request is logged to
// log: debug on success, warn on failure.
func NewClient(cfg config.LLMConfig, log zerolog.Logger) (Client, error) {
	provider := NormalizeProvider(cfg.Provider)

	var (
		c   Client
		err error
	)
	switch provider {
	case ProviderCopilot:
		c, err = newCopilotClient(cfg.Model)
	case ProviderOllama:
		c, err = newOllamaClient(cfg.Model, cfg.BaseURL)
	case ProviderLMStudio:
		c, err = newLMStudioClient(cfg.Model, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("%s client: %w", provider, err)
	}

	log.Debug().Str("provider", provider).Str("model", cfg.Model).Msg("llm client ready")
	return &loggedClient{next: c, provider: provider, model: cfg.Model, log: log}, nil
}
