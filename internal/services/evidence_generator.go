package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"disputeshield_back_end/internal/config"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	openaiDefaultBaseURL = "https://api.openai.com/v1/"
	openaiDefaultModel   = "gpt-4o-mini"
	openaiMaxRetries     = 2
	openaiRequestTimeout = 60 * time.Second
)

// OpenAIGenerator : lettre de contestation via /chat/completions
type OpenAIGenerator struct {
	apiKey string
	model  string
	client openai.Client
}

func NewOpenAIGenerator(cfg config.OpenAIConfig) *OpenAIGenerator {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = openaiDefaultBaseURL
	} else {
		baseURL += "/"
	}
	model := cfg.Model
	if model == "" {
		model = openaiDefaultModel
	}
	return &OpenAIGenerator{
		apiKey: cfg.APIKey,
		model:  model,
		client: openai.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(baseURL),
			option.WithMaxRetries(openaiMaxRetries),
			option.WithRequestTimeout(openaiRequestTimeout),
		),
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY not set")
	}

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(evidenceSystemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.4),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("OpenAI API error (%d): %w", apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("OpenAI request failed: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("empty completion")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
