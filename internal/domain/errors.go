package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrNotConnected      = errors.New("not connected")
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrPollTimeout means the polling attempt budget was exhausted without a
	// terminal state. Distinct from GenerationError: the remote job may still
	// complete server-side.
	ErrPollTimeout = errors.New("poll timeout")
)

// ProviderError carries a provider's non-success response back to the caller.
// Never retried automatically.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("provider error %d", e.Status)
	}
	return fmt.Sprintf("provider error %d: %s", e.Status, e.Message)
}

// GenerationError means an asynchronous job reported failure, or reported
// success without a usable media URL. Terminal.
type GenerationError struct {
	Reason string
}

func (e *GenerationError) Error() string {
	return "generation failed: " + e.Reason
}

// MalformedResponseError means a strict-mode parse could not extract the
// structured payload a provider was instructed to return. The operator
// retries manually; the content is never guessed.
type MalformedResponseError struct {
	Snippet string
}

func (e *MalformedResponseError) Error() string {
	return "malformed provider response: " + e.Snippet
}
