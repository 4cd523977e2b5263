package providers

import (
	"context"
	"fmt"
	"time"
)

const (
	// anthropicVersion is the Messages API version header value.
	anthropicVersion = "2023-06-01"

	defaultAnthropicBaseURL = "https://api.anthropic.com"
)

// AnthropicClient calls Anthropic's Messages API and extracts the text of
// the first content block.
type AnthropicClient struct {
	http   *httpClient
	apiKey string
}

// anthropicRequest is the Messages API wire format.
type anthropicRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature,omitempty"`
	Messages    []Message `json:"messages"`
}

// anthropicResponse is the subset of the Messages API response we consume.
type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// NewAnthropicClient creates an Anthropic client. baseURL overrides the
// production endpoint when non-empty (used by tests).
func NewAnthropicClient(apiKey, baseURL string, timeout time.Duration) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, &ConfigError{Provider: "anthropic", Field: "api_key", Message: "API key is required"}
	}
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	return &AnthropicClient{
		http:   newHTTPClient("anthropic", baseURL, timeout),
		apiKey: apiKey,
	}, nil
}

// Complete implements Client.
func (c *AnthropicClient) Complete(ctx context.Context, req *CompletionRequest) (string, error) {
	wireReq := anthropicRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Messages:    req.Messages,
	}

	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": anthropicVersion,
	}

	var resp anthropicResponse
	if err := c.http.doJSON(ctx, "/v1/messages", headers, wireReq, &resp); err != nil {
		return "", err
	}

	if len(resp.Content) == 0 {
		return "", &ParseError{Provider: "anthropic", Cause: fmt.Errorf("response has no content blocks")}
	}
	return resp.Content[0].Text, nil
}

// Name implements Client.
func (c *AnthropicClient) Name() string {
	return "anthropic"
}
