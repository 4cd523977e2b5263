package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxErrorBodyBytes bounds how much of an error response body is read for
// the error message.
const maxErrorBodyBytes = 4096

// httpClient is the shared HTTP plumbing for provider adapters.
type httpClient struct {
	client  *http.Client
	baseURL string
	name    string
}

func newHTTPClient(name, baseURL string, timeout time.Duration) *httpClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &httpClient{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL: baseURL,
		name:    name,
	}
}

// doJSON POSTs a JSON body and decodes the JSON response into out.
// Non-2xx responses become an *APIError carrying a bounded excerpt of the
// body; decode failures become a *ParseError.
func (h *httpClient) doJSON(ctx context.Context, path string, headers map[string]string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", h.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return &APIError{
			Provider:   h.name,
			StatusCode: resp.StatusCode,
			Message:    string(excerpt),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ParseError{Provider: h.name, Cause: err}
	}
	return nil
}
