// Package assistant sequences chat turns against a completion provider and
// owns the speech playback that may follow a reply.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"fitbuddy/app/internal/domain"
)

// CompletionProvider submits a transcript and returns the raw success payload.
// Non-success responses must be reported as *domain.ProviderError.
type CompletionProvider interface {
	Complete(ctx context.Context, messages []domain.ChatMessage) ([]byte, error)
}

// EntitlementChecker resolves whether owner may use the assistant.
type EntitlementChecker interface {
	Entitled(ctx context.Context, ownerID string) (bool, error)
}

// EntitlementFunc adapts a function to EntitlementChecker.
type EntitlementFunc func(ctx context.Context, ownerID string) (bool, error)

func (f EntitlementFunc) Entitled(ctx context.Context, ownerID string) (bool, error) {
	return f(ctx, ownerID)
}

// AlwaysEntitled grants access to everyone; used by local tooling.
var AlwaysEntitled = EntitlementFunc(func(context.Context, string) (bool, error) { return true, nil })

// Orchestrator runs one chat turn at a time. It keeps no state between calls.
type Orchestrator struct {
	provider     CompletionProvider
	entitlements EntitlementChecker
	strategies   []Strategy
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStrategies replaces the reply extraction order.
func WithStrategies(s ...Strategy) Option {
	return func(o *Orchestrator) { o.strategies = s }
}

// NewOrchestrator wires a provider and entitlement collaborator.
func NewOrchestrator(provider CompletionProvider, entitlements EntitlementChecker, opts ...Option) *Orchestrator {
	if entitlements == nil {
		entitlements = AlwaysEntitled
	}
	o := &Orchestrator{
		provider:     provider,
		entitlements: entitlements,
		strategies:   DefaultStrategies,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SendTurn appends userText to a copy of transcript, asks the provider for a
// reply and returns the extended copy with the assistant message appended.
//
// On ErrInvalidInput and ErrNotEntitled the returned transcript equals the
// input. On a provider failure it holds the user message and no reply.
// The caller's slice is never modified.
func (o *Orchestrator) SendTurn(ctx context.Context, ownerID string, transcript domain.Transcript, userText string) (domain.Transcript, string, error) {
	text := strings.TrimSpace(userText)
	if text == "" {
		return transcript.Clone(), "", fmt.Errorf("message is empty: %w", domain.ErrInvalidInput)
	}

	ok, err := o.entitlements.Entitled(ctx, ownerID)
	if err != nil {
		return transcript.Clone(), "", fmt.Errorf("check entitlement: %w", err)
	}
	if !ok {
		return transcript.Clone(), "", domain.ErrNotEntitled
	}

	working := transcript.Append(domain.ChatMessage{Role: domain.RoleUser, Content: text})

	payload, err := o.provider.Complete(ctx, working)
	if err != nil {
		log.Printf("ERROR: completion failed for %s after %d messages: %v", ownerID, len(working), err)
		if !errors.Is(err, domain.ErrProvider) {
			err = &domain.ProviderError{Err: err}
		}
		return working, "", err
	}

	reply := ExtractReply(payload, o.strategies)
	working = working.Append(domain.ChatMessage{Role: domain.RoleAssistant, Content: reply})
	return working, reply, nil
}
