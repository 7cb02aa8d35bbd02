package classifier

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// openAIBackend serves both OpenAI and Groq, which exposes an
// OpenAI-compatible chat completions endpoint.
type openAIBackend struct {
	name  string
	api   *openai.Client
	model string
}

func newOpenAIBackend(cfg Config, httpClient *http.Client) *openAIBackend {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeoutFor(cfg)}
	}
	clientCfg.HTTPClient = httpClient
	return &openAIBackend{
		name:  string(cfg.Kind),
		api:   openai.NewClientWithConfig(clientCfg),
		model: cfg.Model,
	}
}

func (b *openAIBackend) Complete(ctx context.Context, system, prompt string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if system = strings.TrimSpace(system); system != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	resp, err := b.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    b.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("%s api error: %w", b.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s request: no choices in response", b.name)
	}
	choice := resp.Choices[0]
	content := strings.TrimSpace(choice.Message.Content)
	if content == "" {
		return "", &emptyContentError{
			Op:         b.name + " request",
			StopReason: string(choice.FinishReason),
			Refusal:    choice.Message.Refusal,
		}
	}
	return content, nil
}
