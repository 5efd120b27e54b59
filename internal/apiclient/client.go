// Package apiclient is the generic JSON request helper used to call the
// backend from non-core flows. It is the network collaborator: callers get
// a decoded value or an *APIError carrying the status and message.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api request failed with status %d: %s", e.Status, e.Message)
}

// TokenFunc supplies the current auth token, or "" when unauthenticated
// (e.g. outside a browser-like runtime).
type TokenFunc func() string

// Client wraps an HTTP client with a base URL and the auth collaborator.
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenFunc
}

// New creates a Client. token may be nil for anonymous-only use.
func New(baseURL string, token TokenFunc) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		token:   token,
	}
}

// Do sends a JSON request and decodes the 2xx response body into T.
// A non-2xx response is returned as *APIError; the message is taken from an
// {"error": "..."} body when present, otherwise the raw body text.
func Do[T any](ctx context.Context, c *Client, method, path string, body interface{}, requiresAuth bool) (T, error) {
	var zero T

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return zero, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if requiresAuth {
		token := ""
		if c.token != nil {
			token = c.token()
		}
		if token == "" {
			return zero, &APIError{Status: http.StatusUnauthorized, Message: "no auth token available"}
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return zero, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return zero, &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
	}

	if len(data) == 0 {
		return zero, nil
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return out, nil
}

func errorMessage(body []byte) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	return strings.TrimSpace(string(body))
}
