package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Completer turns a user prompt into the model's raw text reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config holds chat-completion configuration parameters.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// SystemPrompt establishes the assistant persona for every request.
const SystemPrompt = "You are an AI food-label copilot that explains ingredient trade-offs clearly and honestly."

// maxErrorBody bounds how much of an upstream error body is retained.
const maxErrorBody = 8 << 10

// Client implements Completer against an OpenAI-compatible chat completions API.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
}

// NewClient constructs a Client. A missing API key is not an error here; it is
// reported by Complete so that a misconfigured deployment still serves
// short-circuit responses.
func NewClient(cfg Config) *Client {
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = "llama-3.1-8b-instant"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai/v1"
	}
	temp := cfg.Temperature
	if temp <= 0 {
		temp = 0.7
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 400
	}
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       cfg.Model,
		baseURL:     cfg.BaseURL,
		temperature: temp,
		maxTokens:   cfg.MaxTokens,
	}
}

// Configured reports whether the client holds a credential.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Model returns the model identifier sent upstream.
func (c *Client) Model() string {
	return c.model
}

// Complete sends prompt as the user turn of a two-message exchange and returns
// the first choice's content. It makes exactly one attempt.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", ErrMissingAPIKey
	}

	body, err := json.Marshal(c.buildPayload(prompt))
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var decoded chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrMalformedResponse, err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}
	content := decoded.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: empty content", ErrMalformedResponse)
	}
	return content, nil
}

func (c *Client) buildPayload(prompt string) chatCompletionRequest {
	return chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
}

var (
	// ErrMissingAPIKey means no credential was configured; no request was sent.
	ErrMissingAPIKey = errors.New("ai: completion api key not configured")
	// ErrMalformedResponse means the upstream call succeeded but the reply
	// did not carry a usable first choice.
	ErrMalformedResponse = errors.New("ai: malformed completion response")
)

// UpstreamError reports a non-success HTTP status from the completion API.
// Body holds the raw upstream response for server-side diagnostics.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("completion api status %d: %s", e.StatusCode, e.Body)
}
