package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"terroir/internal/assistant"
	"terroir/internal/config"
	"terroir/internal/port"
)

const (
	apiURL = "https://api.openai.com/v1/chat/completions"
)

// Assistant implements port.DossierAssistant using the OpenAI Chat Completions API.
type Assistant struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// New creates an OpenAI-based dossier assistant from a provider config.
func New(cfg *config.AssistantProviderConfig) *Assistant {
	return newAssistant(cfg, apiURL)
}

// NewWithEndpoint creates an assistant pointing at a custom API endpoint (for testing).
func NewWithEndpoint(cfg *config.AssistantProviderConfig, endpoint string) *Assistant {
	return newAssistant(cfg, endpoint)
}

func newAssistant(cfg *config.AssistantProviderConfig, endpoint string) *Assistant {
	model := cfg.DefaultModel
	if model == "" {
		model = "gpt-4o"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Assistant{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (a *Assistant) Draft(ctx context.Context, input port.DraftInput) (*port.DraftOutput, error) {
	prompt := assistant.BuildDossierPrompt(input.Territory, input.Notes)

	reqBody := map[string]interface{}{
		"model":                 a.model,
		"max_completion_tokens": 16384,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"response_format": map[string]interface{}{
			"type": "json_object",
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling openai API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("openai API error (status %d): %s", resp.StatusCode, truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := assistant.ParseRetryAfterHeader(resp.Header.Get("Retry-After"), time.Now())
			return nil, assistant.NewRateLimitError("openai", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return parseResponse(respBody, a.model, prompt)
}

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, model, prompt string) (*port.DraftOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}

	if resp.Choices[0].FinishReason == "length" {
		return nil, fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit")
	}

	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty response from API: blank content")
	}

	return &port.DraftOutput{
		Text:       text,
		ModelUsed:  model,
		PromptUsed: prompt,
	}, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
