package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicVersion     = "2023-06-01"
	defaultAnthropicURL  = "https://api.anthropic.com/v1/messages"
	defaultMaxTokens     = 1024
	defaultHTTPTimeout   = 30 * time.Second
	maxResponseBodyBytes = 1 << 20
)

// anthropicBackend talks to the Anthropic Messages API.
type anthropicBackend struct {
	apiKey     string
	endpoint   string
	model      string
	maxTokens  int
	httpClient *http.Client
}

func newAnthropicBackend(cfg Config, httpClient *http.Client) *anthropicBackend {
	endpoint := cfg.BaseURL
	if endpoint == "" {
		endpoint = defaultAnthropicURL
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeoutFor(cfg)}
	}
	return &anthropicBackend{
		apiKey:     cfg.APIKey,
		endpoint:   endpoint,
		model:      cfg.Model,
		maxTokens:  maxTokens,
		httpClient: httpClient,
	}
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (b *anthropicBackend) Complete(ctx context.Context, system, prompt string) (string, error) {
	payload := anthropicRequest{
		Model:     b.model,
		MaxTokens: b.maxTokens,
		System:    strings.TrimSpace(system),
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("claude request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("claude request: new request: %w", err)
	}
	req.Header.Set("x-api-key", b.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("claude request: http error (timeout=%s): %w", b.httpClient.Timeout, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return "", fmt.Errorf("claude request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return "", &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       summarizeSnippet(string(body)),
			RetryAfter: retryAfter,
		}
	}

	var decoded anthropicResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("claude request: decode response: %w (body: %s)", err, summarizeSnippet(string(body)))
	}
	if decoded.Error != nil {
		return "", fmt.Errorf("claude request: api error: %s", strings.TrimSpace(decoded.Error.Message))
	}
	for _, block := range decoded.Content {
		if block.Type != "" && block.Type != "text" {
			continue
		}
		if text := strings.TrimSpace(block.Text); text != "" {
			return text, nil
		}
	}
	return "", &emptyContentError{Op: "claude request", StopReason: decoded.StopReason}
}

func timeoutFor(cfg Config) time.Duration {
	if cfg.TimeoutSeconds > 0 {
		return time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return defaultHTTPTimeout
}
