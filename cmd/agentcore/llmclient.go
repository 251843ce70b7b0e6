package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/cklxx-labs/agentcore/internal/llm"
)

// httpClient is the CLI's one real LLMClient transport: a minimal
// OpenAI-compatible chat-completions caller. Vendor transports are
// explicitly out of internal/llm's scope (see client.go); this lives in
// the CLI wrapper instead, grounded on the teacher's
// internal/infra/llm/openai_client.go request shape (POST
// <base_url>/chat/completions with a bearer key, messages array,
// choices[0].message.content read back) trimmed to this module's
// single-turn, non-streaming, non-tool-calling Complete contract.
type httpClient struct {
	model      string
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func newHTTPClient(spec llm.ProviderSpec) (llm.LLMClient, error) {
	baseURL := os.Getenv("LLM_BASE_URL")
	if baseURL == "" {
		baseURL = spec.BaseURL
	}
	apiKey := os.Getenv("LLM_API_KEY")
	if apiKey == "" && spec.APIKeyEnv != "" {
		apiKey = os.Getenv(spec.APIKeyEnv)
	}
	if baseURL == "" {
		return nil, fmt.Errorf("no base_url configured for provider %s", spec.Name)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("no API key configured for provider %s (set %s or LLM_API_KEY)", spec.Name, spec.APIKeyEnv)
	}
	return &httpClient{
		model:      spec.Model,
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *httpClient) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	body, err := json.Marshal(chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat completion call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("chat completion returned status %d", resp.StatusCode)
	}

	var decoded chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return &llm.CompletionResponse{Text: ""}, nil
	}
	return &llm.CompletionResponse{Text: decoded.Choices[0].Message.Content}, nil
}

func (c *httpClient) Model() string { return c.model }
