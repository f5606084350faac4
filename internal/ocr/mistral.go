package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	MistralBaseURL = "https://api.mistral.ai/v1"
	MistralModel   = "mistral-ocr-latest"
)

// ErrMissingMistralKey is returned when the Mistral backend has no credential.
var ErrMissingMistralKey = errors.New("ocr: mistral api key not configured")

// MistralConfig holds configuration for the Mistral OCR client.
type MistralConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// MistralClient recognizes text through the Mistral OCR API.
type MistralClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewMistralClient fills unset fields with the public API defaults.
func NewMistralClient(cfg MistralConfig) *MistralClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = MistralBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = MistralModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &MistralClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// Recognize sends the image as a data URI and returns the first page's markdown.
func (c *MistralClient) Recognize(ctx context.Context, image []byte, mimeType string) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingMistralKey
	}
	if mimeType == "" {
		mimeType = "image/png"
	}

	reqBody := mistralOCRRequest{
		Model: c.model,
		Document: mistralDocument{
			Type:     "image_url",
			ImageURL: "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image),
		},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal ocr request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ocr", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create ocr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read ocr response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var errResp mistralErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Message() != "" {
			return "", fmt.Errorf("mistral ocr error (status %d): %s", resp.StatusCode, errResp.Message())
		}
		return "", fmt.Errorf("mistral ocr error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var ocrResp mistralOCRResponse
	if err := json.Unmarshal(respBody, &ocrResp); err != nil {
		return "", fmt.Errorf("decode ocr response: %w", err)
	}
	if len(ocrResp.Pages) == 0 {
		return "", ErrNoText
	}
	text := strings.TrimSpace(ocrResp.Pages[0].Markdown)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

type mistralOCRRequest struct {
	Model    string          `json:"model"`
	Document mistralDocument `json:"document"`
}

type mistralDocument struct {
	Type     string `json:"type"`
	ImageURL string `json:"image_url"`
}

type mistralOCRResponse struct {
	Model string           `json:"model"`
	Pages []mistralOCRPage `json:"pages"`
}

type mistralOCRPage struct {
	Index    int    `json:"index"`
	Markdown string `json:"markdown"`
}

type mistralErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail string `json:"detail"`
}

func (e mistralErrorResponse) Message() string {
	if e.Error.Message != "" {
		return e.Error.Message
	}
	return e.Detail
}
