// Package translate wraps the external message-translation collaborator used
// by the live-chat relay. Callers fail open on any error: the untranslated
// original is displayed instead of dropping the message.
package translate

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

// Translator is what the relay depends on; tests substitute fakes.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang, serviceRequestID string) (string, error)
}

type request struct {
	Message          string `json:"message"`
	SourceLang       string `json:"sourceLang"`
	TargetLang       string `json:"targetLang"`
	ServiceRequestID string `json:"serviceRequestId"`
}

type response struct {
	Success           bool   `json:"success"`
	TranslatedMessage string `json:"translatedMessage"`
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

func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang, serviceRequestID string) (string, error) {
	body, err := json.Marshal(request{
		Message:          text,
		SourceLang:       sourceLang,
		TargetLang:       targetLang,
		ServiceRequestID: serviceRequestID,
	})
	if err != nil {
		return "", fmt.Errorf("translate client: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/translate-message", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("translate client: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("translate client: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", fmt.Errorf("translate client: unexpected status %d", res.StatusCode)
	}

	var decoded response
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("translate client: decode response: %w", err)
	}
	if !decoded.Success || decoded.TranslatedMessage == "" {
		return "", fmt.Errorf("translate client: translation unavailable")
	}
	return decoded.TranslatedMessage, nil
}
