package llm

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

// OllamaConfig configures a local Ollama server.
type OllamaConfig struct {
	Host       string
	Model      string
	HTTPClient *http.Client
}

// Ollama calls /api/generate on an Ollama server with streaming disabled.
type Ollama struct {
	host  string
	model string
	http  *http.Client
}

// NewOllama creates an Ollama provider.
func NewOllama(cfg OllamaConfig) *Ollama {
	host := strings.TrimRight(strings.TrimSpace(cfg.Host), "/")
	if host == "" {
		host = "http://localhost:11434"
	}
	model := cfg.Model
	if model == "" {
		model = "llama3"
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Ollama{host: host, model: model, http: client}
}

func (o *Ollama) Name() string { return "ollama" }

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:   o.model,
		Prompt:  prompt,
		Options: ollamaOptions{Temperature: defaultTemperature, NumPredict: defaultMaxTokens},
	})
	if err != nil {
		return "", fmt.Errorf("ollama marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama call: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("ollama read: %w", err)
	}
	var out ollamaResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil && resp.StatusCode < 300 {
			return "", fmt.Errorf("ollama decode: %w", err)
		}
	}
	if resp.StatusCode >= 300 {
		if out.Error != "" {
			return "", fmt.Errorf("ollama status %d: %s", resp.StatusCode, out.Error)
		}
		return "", fmt.Errorf("ollama status %d", resp.StatusCode)
	}
	text := strings.TrimSpace(out.Response)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
