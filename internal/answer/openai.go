package answer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hyperjump/sdkchat/internal/config"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIGenerator sends the prompt as a single user message to an
// OpenAI-compatible chat completions endpoint, such as Ollama's /v1 API.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator creates a client for cfg. The API key is read from the
// environment variable named by cfg.APIKeyEnv; local servers accept an empty key.
func NewOpenAIGenerator(cfg config.OpenAIConfig) (*OpenAIGenerator, error) {
	if cfg.Model == "" {
		return nil, errors.New("openai generator needs a model")
	}
	apiKey := ""
	if cfg.APIKeyEnv != "" {
		apiKey = os.Getenv(cfg.APIKeyEnv)
	}
	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}, nil
}

// Generate returns the first choice's message content, trimmed.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &ExternalError{ExitCode: apiErr.HTTPStatusCode, Stderr: apiErr.Message}
		}
		return "", &ExternalError{ExitCode: -1, Err: fmt.Errorf("chat completion: %w", err)}
	}
	if len(resp.Choices) == 0 {
		return "", &ExternalError{ExitCode: -1, Err: errors.New("chat completion returned no choices")}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
