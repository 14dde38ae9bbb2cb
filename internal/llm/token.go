package llm

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
)

// ErrNoGitHubToken is returned when no GitHub token can be found for copilot.
var ErrNoGitHubToken = errors.New("GitHub token not found: set DAYBLOCKS_GITHUB_TOKEN or GITHUB_TOKEN, or sign in to GitHub Copilot in your editor")

// findGitHubToken looks in the environment first, then in the files the
// Copilot editor plugins write.
func findGitHubToken() (string, error) {
	for _, env := range []string{"DAYBLOCKS_GITHUB_TOKEN", "GITHUB_TOKEN"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v, nil
		}
	}

	for _, dir := range copilotConfigDirs() {
		for _, file := range []string{"hosts.json", "apps.json"} {
			if tok := readCopilotToken(filepath.Join(dir, "github-copilot", file)); tok != "" {
				return tok, nil
			}
		}
	}
	return "", ErrNoGitHubToken
}

// copilotConfigDirs lists where the plugins keep github-copilot/. They use
// ~/.config on macOS too, so os.UserConfigDir does not fit.
func copilotConfigDirs() []string {
	var dirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, xdg)
	}
	if runtime.GOOS == "windows" {
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			dirs = append(dirs, local)
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config"))
	}
	return dirs
}

// readCopilotToken returns the oauth_token of the first github.com entry in
// a Copilot hosts.json/apps.json file, or "" when there is none.
func readCopilotToken(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	var hosts map[string]struct {
		OAuthToken string `json:"oauth_token"`
	}
	if err := json.Unmarshal(data, &hosts); err != nil {
		return ""
	}

	keys := make([]string, 0, len(hosts))
	for k := range hosts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if strings.Contains(k, "github.com") && hosts[k].OAuthToken != "" {
			return hosts[k].OAuthToken
		}
	}
	return ""
}
