// Package elevenlabs streams text-to-speech audio.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"fitbuddy/app/internal/domain"
)

const maxErrorBody = 16 << 10

// Options configures the voice and model used for synthesis.
type Options struct {
	BaseURL         string
	APIKey          string
	VoiceID         string
	ModelID         string
	Stability       float64
	SimilarityBoost float64
}

// Client calls the streaming text-to-speech endpoint.
type Client struct {
	opts      Options
	client    *http.Client
	streamURL string
}

// New creates a client for the configured voice.
func New(opts Options, httpClient *http.Client) (*Client, error) {
	if httpClient == nil {
		return nil, errors.New("http client must not be nil")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("base url must not be empty")
	}
	if opts.VoiceID == "" {
		return nil, errors.New("voice id must not be empty")
	}
	return &Client{
		opts:      opts,
		client:    httpClient,
		streamURL: baseURL + "/v1/text-to-speech/" + url.PathEscape(opts.VoiceID) + "/stream",
	}, nil
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type ttsPayload struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// Synthesize starts a streaming synthesis of text. The caller owns the
// returned body and must close it; cancelling ctx aborts the stream.
func (c *Client) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	body, err := json.Marshal(ttsPayload{
		Text:    text,
		ModelID: c.opts.ModelID,
		VoiceSettings: voiceSettings{
			Stability:       c.opts.Stability,
			SimilarityBoost: c.opts.SimilarityBoost,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.streamURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("construct request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", c.opts.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &domain.SynthesisError{Err: fmt.Errorf("tts request failed: %w", err)}
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		details, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.SynthesisError{StatusCode: resp.StatusCode, Details: string(details)}
	}
	return resp.Body, nil
}
