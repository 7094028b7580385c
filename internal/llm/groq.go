package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultGroqBaseURL is Groq's OpenAI-compatible endpoint.
const DefaultGroqBaseURL = "https://api.groq.com/openai/v1/"

// GroqConfig configures the Groq provider.
type GroqConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Groq generates text through Groq's chat completions API.
type Groq struct {
	client openai.Client
	model  string
}

// NewGroq creates a Groq provider.
func NewGroq(cfg GroqConfig) (*Groq, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("llm: groq api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemma2-9b-it"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGroqBaseURL
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(0),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	return &Groq{client: openai.NewClient(opts...), model: cfg.Model}, nil
}

func (g *Groq) Name() string { return "groq" }

func (g *Groq) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(g.model),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		MaxTokens:   openai.Int(defaultMaxTokens),
		Temperature: openai.Float(defaultTemperature),
	})
	if err != nil {
		return "", fmt.Errorf("groq chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
