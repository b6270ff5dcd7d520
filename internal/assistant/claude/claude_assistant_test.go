package claude_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terroir/internal/assistant"
	"terroir/internal/assistant/claude"
	"terroir/internal/config"
	"terroir/internal/port"
)

func TestDraft_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		body, _ := io.ReadAll(r.Body)
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "claude-test", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Contains(t, req.Messages[0].Content, `"Drôme valley"`)

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"dimensions\":"},{"type":"tool_use"},{"type":"text","text":"{}}"}],"stop_reason":"end_turn"}`))
	}))
	defer srv.Close()

	a := claude.NewWithEndpoint(&config.AssistantProviderConfig{APIKey: "test-key", DefaultModel: "claude-test"}, srv.URL)
	out, err := a.Draft(context.Background(), port.DraftInput{Territory: "Drôme valley"})
	require.NoError(t, err)
	assert.Equal(t, `{"dimensions":{}}`, out.Text)
	assert.Equal(t, "claude-test", out.ModelUsed)
	assert.NotEmpty(t, out.PromptUsed)
}

func TestDraft_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "42")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error"}}`))
	}))
	defer srv.Close()

	a := claude.NewWithEndpoint(&config.AssistantProviderConfig{APIKey: "k"}, srv.URL)
	_, err := a.Draft(context.Background(), port.DraftInput{Territory: "x"})

	var rle *assistant.RateLimitError
	require.True(t, errors.As(err, &rle))
	assert.Equal(t, "claude", rle.Provider)
	assert.Equal(t, 42*time.Second, rle.RetryAfter)
}

func TestDraft_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"server_error", http.StatusInternalServerError, `oops`, "status 500"},
		{"truncated", http.StatusOK, `{"content":[{"type":"text","text":"{"}],"stop_reason":"max_tokens"}`, "max_tokens"},
		{"empty", http.StatusOK, `{"content":[],"stop_reason":"end_turn"}`, "empty response"},
		{"garbage", http.StatusOK, `not json`, "unmarshaling response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			a := claude.NewWithEndpoint(&config.AssistantProviderConfig{APIKey: "k"}, srv.URL)
			_, err := a.Draft(context.Background(), port.DraftInput{Territory: "x"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
