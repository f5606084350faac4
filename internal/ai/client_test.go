package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url, key string) *Client {
	return NewClient(Config{APIKey: key, BaseURL: url, Model: "test-model", Temperature: 0.7, MaxTokens: 400})
}

func TestCompleteSendsTwoMessageExchange(t *testing.T) {
	var got chatCompletionRequest
	var auth, path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"SUMMARY:\nFine"}}]}`))
	}))
	defer server.Close()

	reply, err := newTestClient(server.URL, "gsk-test").Complete(context.Background(), "user prompt")
	require.NoError(t, err)

	assert.Equal(t, "SUMMARY:\nFine", reply)
	assert.Equal(t, "Bearer gsk-test", auth)
	assert.Equal(t, "/chat/completions", path)
	assert.Equal(t, "test-model", got.Model)
	assert.InDelta(t, 0.7, got.Temperature, 1e-9)
	assert.Equal(t, 400, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, chatMessage{Role: "system", Content: SystemPrompt}, got.Messages[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "user prompt"}, got.Messages[1])
}

func TestCompleteWithoutKeyMakesNoCall(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	client := newTestClient(server.URL, "  ")
	assert.False(t, client.Configured())

	_, err := client.Complete(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestCompleteUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, "gsk-test").Complete(context.Background(), "prompt")
	require.Error(t, err)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusTooManyRequests, upstream.StatusCode)
	assert.Contains(t, upstream.Body, "rate limited")
}

func TestCompleteMalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no choices", `{"choices":[]}`},
		{"empty content", `{"choices":[{"message":{"content":"  "}}]}`},
		{"not json", `<html>gateway</html>`},
		{"missing choices", `{"id":"cmpl-1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL, "gsk-test").Complete(context.Background(), "prompt")
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(Config{APIKey: "k", BaseURL: "https://example.test/v1/"})
	assert.Equal(t, "llama-3.1-8b-instant", client.Model())
	assert.Equal(t, "https://example.test/v1", client.baseURL)
	assert.InDelta(t, 0.7, client.temperature, 1e-9)
	assert.Equal(t, 400, client.maxTokens)
}
