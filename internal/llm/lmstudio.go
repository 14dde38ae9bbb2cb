package llm

import (
	"errors"
	"os"
	"strings"

	"github.com/openai/openai-go/option"
)

const defaultLMStudioBaseURL = "http://localhost:1234/v1"

// LM Studio ignores the key but the OpenAI client insists on one.
const lmStudioPlaceholderKey = "lm-studio"

func newLMStudioClient(model, baseURL string) (*OpenAIClient, error) {
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("model is required")
	}
	if baseURL == "" {
		baseURL = defaultLMStudioBaseURL
	}
	return newOpenAIClient(ProviderLMStudio, model, baseURL, option.WithAPIKey(lmStudioAPIKey())), nil
}

func lmStudioAPIKey() string {
	for _, env := range []string{"DAYBLOCKS_LMSTUDIO_API_KEY", "LMSTUDIO_API_KEY", "OPENAI_API_KEY"} {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return lmStudioPlaceholderKey
}
