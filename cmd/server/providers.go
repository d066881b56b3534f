package main

import (
	"context"
	"errors"
	"fitbuddy/app/internal/assistant"
	"fitbuddy/app/internal/config"
	"fitbuddy/app/internal/domain"
	"fitbuddy/app/internal/provider/elevenlabs"
	"fitbuddy/app/internal/provider/openai"
	"log"
	"net/http"
)

// newCompletionProviders builds the chat and workout clients. Both are nil
// when no API key is configured.
func newCompletionProviders(cfg config.OpenAIConfig) (chat, workout assistant.CompletionProvider) {
	if cfg.APIKey == "" {
		log.Println("WARN: openai.api_key is empty; the assistant and workout generator are disabled.")
		return nil, nil
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}

	chatClient, err := openai.New(openai.Options{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.ChatModel,
		Temperature: cfg.ChatTemperature,
	}, httpClient)
	if err != nil {
		log.Fatalf("FATAL: Invalid chat completion settings: %v", err)
	}
	workoutClient, err := openai.New(openai.Options{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.WorkoutModel,
		Temperature: cfg.WorkoutTemperature,
		MaxTokens:   cfg.WorkoutMaxTokens,
	}, httpClient)
	if err != nil {
		log.Fatalf("FATAL: Invalid workout completion settings: %v", err)
	}
	return chatClient, workoutClient
}

// newSynthesizer returns nil when speech is not configured.
func newSynthesizer(cfg config.ElevenLabsConfig) assistant.Synthesizer {
	if cfg.APIKey == "" || cfg.VoiceID == "" {
		log.Println("WARN: ElevenLabs is not configured; speech is disabled.")
		return nil
	}
	// No client timeout: the audio body is streamed for as long as it plays.
	client, err := elevenlabs.New(elevenlabs.Options{
		BaseURL:         cfg.BaseURL,
		APIKey:          cfg.APIKey,
		VoiceID:         cfg.VoiceID,
		ModelID:         cfg.ModelID,
		Stability:       cfg.Stability,
		SimilarityBoost: cfg.SimilarityBoost,
	}, &http.Client{})
	if err != nil {
		log.Fatalf("FATAL: Invalid ElevenLabs settings: %v", err)
	}
	return client
}

var errAssistantDisabled = errors.New("the assistant is not configured")

// unconfiguredProvider answers every turn with a provider error.
type unconfiguredProvider struct{}

func (unconfiguredProvider) Complete(context.Context, []domain.ChatMessage) ([]byte, error) {
	return nil, &domain.ProviderError{Err: errAssistantDisabled}
}
