package config

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const maxRemotePromptBytes = 2 * 1024 * 1024

// LoadMsg loads a system prompt.
//
// Supported inputs:
//   - raw strings
//   - http(s) URLs
//   - file:// paths, with a leading ~/ expanded to the home directory
//
// For markdown files loaded via file://, YAML frontmatter is stripped.
func LoadMsg(ctx context.Context, msg string) (string, error) {
	if strings.HasPrefix(msg, "https://") || strings.HasPrefix(msg, "http://") {
		return fetchMsg(ctx, msg)
	}

	if path, ok := strings.CutPrefix(msg, "file://"); ok {
		if rest, ok := strings.CutPrefix(path, "~/"); ok {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("read system prompt file: %w", err)
			}
			path = filepath.Join(home, rest)
		}
		bts, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read system prompt file: %w", err)
		}
		content := string(bts)
		if strings.EqualFold(filepath.Ext(path), ".md") {
			return StripYAMLFrontmatter(content)
		}
		return content, nil
	}

	return msg, nil
}

func fetchMsg(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("fetch system prompt: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch system prompt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bts, _ := io.ReadAll(io.LimitReader(resp.Body, 8*1024))
		return "", fmt.Errorf("fetch system prompt: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(bts)))
	}
	bts, err := io.ReadAll(io.LimitReader(resp.Body, maxRemotePromptBytes))
	if err != nil {
		return "", fmt.Errorf("read system prompt: %w", err)
	}
	if len(bts) >= maxRemotePromptBytes {
		return "", fmt.Errorf("read system prompt: response too large (>%d bytes)", maxRemotePromptBytes)
	}
	return string(bts), nil
}

// StripYAMLFrontmatter removes YAML frontmatter from markdown content.
func StripYAMLFrontmatter(content string) (string, error) {
	lines := strings.Split(content, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return content, nil
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end == -1 {
		return "", fmt.Errorf("invalid markdown frontmatter: missing closing delimiter")
	}

	var parsed map[string]any
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:end], "\n")), &parsed); err != nil {
		return "", fmt.Errorf("invalid markdown frontmatter: %w", err)
	}

	body := strings.Join(lines[end+1:], "\n")
	return strings.TrimLeft(body, "\r\n"), nil
}
