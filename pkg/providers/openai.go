package providers

import (
	"context"
	"fmt"
	"time"
)

const defaultOpenAIBaseURL = "https://api.openai.com"

// OpenAIClient calls OpenAI's Chat Completions API and extracts the content
// of the first choice's message.
type OpenAIClient struct {
	http   *httpClient
	apiKey string
}

// openAIRequest is the Chat Completions wire format.
type openAIRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	Messages    []Message `json:"messages"`
}

// openAIResponse is the subset of the Chat Completions response we consume.
type openAIResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// NewOpenAIClient creates an OpenAI client. baseURL overrides the
// production endpoint when non-empty (used by tests).
func NewOpenAIClient(apiKey, baseURL string, timeout time.Duration) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, &ConfigError{Provider: "openai", Field: "api_key", Message: "API key is required"}
	}
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAIClient{
		http:   newHTTPClient("openai", baseURL, timeout),
		apiKey: apiKey,
	}, nil
}

// Complete implements Client.
func (c *OpenAIClient) Complete(ctx context.Context, req *CompletionRequest) (string, error) {
	wireReq := openAIRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Messages:    req.Messages,
	}

	headers := map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}

	var resp openAIResponse
	if err := c.http.doJSON(ctx, "/v1/chat/completions", headers, wireReq, &resp); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", &ParseError{Provider: "openai", Cause: fmt.Errorf("response has no choices")}
	}
	return resp.Choices[0].Message.Content, nil
}

// Name implements Client.
func (c *OpenAIClient) Name() string {
	return "openai"
}
