// Package signal talks to the external confidence-scoring service. The
// service is consumed as an opaque collaborator: it answers a query with a
// response text, a confidence signal and an optional escalation flag. A
// transport failure here must never be mistaken for an escalation signal;
// callers receive a nil result and decide on a generic retry message.
package signal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

type ChatRequest struct {
	Query     string `json:"query"`
	UserID    string `json:"userId"`
	SessionID string `json:"sessionId"`
	Language  string `json:"language"`
}

type ChatResult struct {
	Response        string  `json:"response"`
	Escalated       bool    `json:"escalated"`
	ConfidenceScore float64 `json:"confidenceScore"`
	ConfidenceLevel string  `json:"confidenceLevel"`
	Reason          string  `json:"reason,omitempty"`
	RiskType        string  `json:"riskType,omitempty"`
	QueryID         string  `json:"queryId"`
	Timestamp       string  `json:"timestamp"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// NewClientWithHTTP is used by tests to inject a client pointed at a test server.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	var result ChatResult
	if err := c.post(ctx, "/api/v1/chat", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ClearSessionMemory asks the upstream service to drop any residual context
// keyed by the given session identifier.
func (c *Client) ClearSessionMemory(ctx context.Context, sessionID string) error {
	payload := struct {
		SessionID string `json:"sessionId"`
	}{SessionID: sessionID}
	return c.post(ctx, "/api/v1/clear-session", payload, nil)
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("signal client: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("signal client: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("signal client: %s: %w", path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("signal client: %s: unexpected status %d", path, res.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return fmt.Errorf("signal client: decode response: %w", err)
		}
	}
	return nil
}
