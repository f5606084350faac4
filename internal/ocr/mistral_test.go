package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMistralRecognize(t *testing.T) {
	image := []byte("fake-jpeg-bytes")
	var got mistralOCRRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ocr", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"mistral-ocr-latest","pages":[{"index":0,"markdown":"  INGREDIENTS: oats, honey\n"}]}`))
	}))
	defer srv.Close()

	client := NewMistralClient(MistralConfig{APIKey: "secret", BaseURL: srv.URL + "/"})
	text, err := client.Recognize(context.Background(), image, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "INGREDIENTS: oats, honey", text)

	assert.Equal(t, MistralModel, got.Model)
	assert.Equal(t, "image_url", got.Document.Type)
	assert.Equal(t, "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString(image), got.Document.ImageURL)
}

func TestMistralRecognizeErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{"no pages", http.StatusOK, `{"pages":[]}`, ErrNoText, ""},
		{"blank page", http.StatusOK, `{"pages":[{"markdown":"   "}]}`, ErrNoText, ""},
		{"api error", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, nil, "bad key"},
		{"raw error", http.StatusBadGateway, `upstream down`, nil, "upstream down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewMistralClient(MistralConfig{APIKey: "k", BaseURL: srv.URL}).Recognize(context.Background(), []byte("x"), "image/png")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.True(t, strings.Contains(err.Error(), tt.wantMsg), err.Error())
			}
		})
	}
}

func TestMistralRequiresKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	defer srv.Close()

	_, err := NewMistralClient(MistralConfig{BaseURL: srv.URL}).Recognize(context.Background(), []byte("x"), "")
	assert.ErrorIs(t, err, ErrMissingMistralKey)
	assert.False(t, called)
}

func TestDisabled(t *testing.T) {
	var r Recognizer = Disabled{}
	_, err := r.Recognize(context.Background(), []byte("x"), "image/png")
	assert.ErrorIs(t, err, ErrDisabled)
}
