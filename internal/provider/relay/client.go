// Package relay talks to a running fitbuddy API as a completion provider,
// so terminal clients can own their transcript locally.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"fitbuddy/app/internal/domain"
)

const maxBody = 1 << 20

// Client posts transcripts to /api/v1/assistant and fetches speech from
// /api/v1/assistant/speech.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// New creates a relay client authenticated with a bearer token.
func New(baseURL, token string, httpClient *http.Client) (*Client, error) {
	if httpClient == nil {
		return nil, errors.New("http client must not be nil")
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		return nil, errors.New("base url must not be empty")
	}
	return &Client{baseURL: baseURL, token: token, client: httpClient}, nil
}

type turnRequest struct {
	Messages []domain.ChatMessage `json:"messages"`
	Message  string               `json:"message"`
}

// Complete sends all but the last message as history and the last one as
// the new user message. The raw response body is returned on success.
func (c *Client) Complete(ctx context.Context, messages []domain.ChatMessage) ([]byte, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages: %w", domain.ErrInvalidInput)
	}
	last := messages[len(messages)-1]
	payload := turnRequest{Messages: messages[:len(messages)-1], Message: last.Content}

	resp, err := c.post(ctx, "/api/v1/assistant", payload)
	if err != nil {
		return nil, &domain.ProviderError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &domain.ProviderError{StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode >= 400 {
		perr := &domain.ProviderError{StatusCode: resp.StatusCode, Payload: data}
		if resp.StatusCode == http.StatusForbidden {
			perr.Err = domain.ErrNotEntitled
		}
		return nil, perr
	}
	return data, nil
}

// Synthesize asks the API to speak text and returns the audio stream.
func (c *Client) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	resp, err := c.post(ctx, "/api/v1/assistant/speech", map[string]string{"text": text})
	if err != nil {
		return nil, &domain.SynthesisError{Err: err}
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		details, _ := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		return nil, &domain.SynthesisError{StatusCode: resp.StatusCode, Details: string(details)}
	}
	return resp.Body, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("construct request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relay request to %s failed: %w", path, err)
	}
	return resp, nil
}
