package plan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// GeneratorConfig holds text-generation settings sourced from the environment.
// Any OpenAI-compatible chat completions endpoint works.
type GeneratorConfig struct {
	APIKey      string        `env:"AI_API_KEY,required"`
	APIURL      string        `env:"AI_API_URL" envDefault:"https://api.kimi.com/coding/v1/chat/completions"`
	Model       string        `env:"AI_MODEL" envDefault:"kimi-for-coding"`
	Temperature float64       `env:"AI_TEMPERATURE" envDefault:"0.7"`
	Timeout     time.Duration `env:"AI_TIMEOUT" envDefault:"60s"`
}

// CompletionClient is the seam between the plan service and the hosted model.
type CompletionClient interface {
	// Complete sends the prompt and returns the model's text response.
	// Single attempt, no retry; the caller has a fallback for failures.
	Complete(ctx context.Context, prompt string) (string, error)
}

var errEmptyCompletion = errors.New("completion response contained no choices")

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *chatFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// ChatClient implements CompletionClient over an OpenAI-compatible HTTP API.
// The request asks for a direct-JSON response; whether the model honors that
// is handled downstream.
type ChatClient struct {
	cfg    GeneratorConfig
	client *http.Client
}

// NewChatClient creates a completion client with a bounded request deadline.
func NewChatClient(cfg GeneratorConfig) *ChatClient {
	return &ChatClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *ChatClient) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:          c.cfg.Model,
		Messages:       []chatMessage{{Role: "user", Content: prompt}},
		Temperature:    c.cfg.Temperature,
		ResponseFormat: &chatFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion request: unexpected status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", errEmptyCompletion
	}

	return parsed.Choices[0].Message.Content, nil
}
