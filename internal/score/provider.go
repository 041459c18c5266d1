package score

import (
	"context"
	"errors"
)

// Provider turns a prompt into free-form model text. The production adapters
// live in the copilot and openrouter subpackages; tests use stubs.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrUnavailable means the provider cannot be reached at all (binary not
// installed, no API key). Callers treat it like any other completion failure.
var ErrUnavailable = errors.New("completion provider unavailable")
