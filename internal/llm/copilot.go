package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/openai/openai-go/option"
)

const (
	copilotTokenURL = "https://api.github.com/copilot_internal/v2/token"
	copilotBaseURL  = "https://api.githubcopilot.com"

	// DefaultModel is used when copilot is configured without a model.
	DefaultModel = "gpt-4o"

	userAgent = "Dayblocks/1.0"
)

// copilotAuth trades a GitHub OAuth token for a short-lived Copilot token.
type copilotAuth struct {
	http     *http.Client
	tokenURL string
}

type copilotToken struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

func newCopilotClient(model string) (*OpenAIClient, error) {
	if model == "" {
		model = DefaultModel
	}

	githubToken, err := findGitHubToken()
	if err != nil {
		return nil, err
	}

	auth := copilotAuth{http: &http.Client{Timeout: 30 * time.Second}, tokenURL: copilotTokenURL}
	tok, err := auth.exchange(context.Background(), githubToken)
	if err != nil {
		return nil, err
	}

	return newOpenAIClient(ProviderCopilot, model, copilotBaseURL,
		option.WithAPIKey(tok.Token),
		option.WithHeader("Editor-Version", userAgent),
		option.WithHeader("Editor-Plugin-Version", userAgent),
		option.WithHeader("Copilot-Integration-Id", "vscode-chat"),
	), nil
}

func (a copilotAuth) exchange(ctx context.Context, githubToken string) (copilotToken, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.tokenURL, nil)
	if err != nil {
		return copilotToken{}, fmt.Errorf("token request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+githubToken)
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.http.Do(req)
	if err != nil {
		return copilotToken{}, fmt.Errorf("token exchange: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return copilotToken{}, fmt.Errorf("token exchange failed (status %d): %s", resp.StatusCode, body)
	}

	var tok copilotToken
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return copilotToken{}, fmt.Errorf("decoding copilot token: %w", err)
	}
	if tok.Token == "" {
		return copilotToken{}, errors.New("token exchange returned an empty token")
	}
	return tok, nil
}
