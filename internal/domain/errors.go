package domain

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	// ErrInvalidInput is returned before any network call when user input is empty or malformed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotEntitled is returned when the caller has no active subscription.
	ErrNotEntitled = errors.New("an active subscription is required")

	// Category sentinels, matched through errors.Is on the typed errors below.
	ErrProvider    = errors.New("provider error")
	ErrSynthesis   = errors.New("speech synthesis error")
	ErrPersistence = errors.New("persistence error")
)

// ProviderError reports a non-success or malformed response from the completion provider.
// Payload holds the upstream body for diagnostics.
type ProviderError struct {
	StatusCode int
	Payload    []byte
	Err        error
}

func (e *ProviderError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("completion provider returned status %d: %v", e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("completion provider: %v", e.Err)
	default:
		return fmt.Sprintf("completion provider returned status %d: %s", e.StatusCode, truncate(e.Payload, 512))
	}
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

// SynthesisError reports a failed text-to-speech call.
type SynthesisError struct {
	StatusCode int
	Details    string
	Err        error
}

func (e *SynthesisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("speech synthesis failed: %v", e.Err)
	}
	return fmt.Sprintf("speech synthesis returned status %d: %s", e.StatusCode, truncate([]byte(e.Details), 512))
}

func (e *SynthesisError) Unwrap() error { return e.Err }

func (e *SynthesisError) Is(target error) bool { return target == ErrSynthesis }

// PersistenceError wraps a failed save/update/delete against the store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// truncate cuts b to at most n bytes without splitting a UTF-8 sequence.
func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(b[cut]) {
		cut--
	}
	return string(b[:cut]) + "..."
}
