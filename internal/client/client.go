// Package client talks to the Poppit model server over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Client is an HTTP client for the model server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the given base URL. The request timeout can be
// configured via POPPIT_CLIENT_TIMEOUT (default 2m, generation is slow on
// small machines).
func New(baseURL string) *Client {
	timeout := 2 * time.Minute
	if t := os.Getenv("POPPIT_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// chatRequest is the payload for the /chat endpoint.
type chatRequest struct {
	Message string `json:"message"`
}

// chatResponse is the reply from the /chat endpoint.
type chatResponse struct {
	Response string `json:"response"`
}

// likeRequest is the payload for the /like endpoint.
type likeRequest struct {
	Instruction string `json:"instruction"`
	Response    string `json:"response"`
}

// Ask sends a query to the model server and returns its answer.
func (c *Client) Ask(ctx context.Context, message string) (string, error) {
	var resp chatResponse
	if err := c.post(ctx, "/chat", chatRequest{Message: message}, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

// SendFeedback reports a liked instruction/response pair.
func (c *Client) SendFeedback(ctx context.Context, instruction, response string) error {
	return c.post(ctx, "/like", likeRequest{Instruction: instruction, Response: response}, nil)
}

// post sends a JSON request and decodes the JSON response into result.
func (c *Client) post(ctx context.Context, path string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server error: %s - %s", resp.Status, string(raw))
	}

	if result != nil {
		if err := json.Unmarshal(raw, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
