// Package openai is a minimal chat completions client.
package openai

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

const (
	contentTypeJSON = "application/json"
	userAgent       = "fitbuddy/1.0"
	maxErrorBody    = 64 << 10
)

// Options selects the model and sampling parameters of a client.
type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int // zero leaves the provider default
}

// Client calls the chat completions endpoint with fixed Options.
type Client struct {
	opts    Options
	client  *http.Client
	chatURL string
}

// New creates a client. httpClient must not be nil.
func New(opts Options, httpClient *http.Client) (*Client, error) {
	if httpClient == nil {
		return nil, errors.New("http client must not be nil")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("base url must not be empty")
	}
	if opts.Model == "" {
		return nil, errors.New("model must not be empty")
	}
	return &Client{
		opts:    opts,
		client:  httpClient,
		chatURL: baseURL + "/chat/completions",
	}, nil
}

type chatPayload struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Complete sends messages and returns the raw response body on success.
// Any status >= 400 becomes a *domain.ProviderError carrying the body.
func (c *Client) Complete(ctx context.Context, messages []domain.ChatMessage) ([]byte, error) {
	payload := chatPayload{
		Model:       c.opts.Model,
		Messages:    make([]openAIMessage, 0, len(messages)),
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	}
	for _, m := range messages {
		payload.Messages = append(payload.Messages, openAIMessage{Role: string(m.Role), Content: m.Content})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.chatURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("construct request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &domain.ProviderError{Err: fmt.Errorf("openai chat request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.ProviderError{StatusCode: resp.StatusCode, Payload: data}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ProviderError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if !json.Valid(data) {
		return nil, &domain.ProviderError{StatusCode: resp.StatusCode, Payload: data, Err: errors.New("response is not valid JSON")}
	}
	return data, nil
}
