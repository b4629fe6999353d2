package ai

import (
	"context"
	"time"
)

// Options control a single completion call.
type Options struct {
	// Temperature steers the model between deterministic (low) and creative
	// (high) output. Extraction uses a low value, question generation a
	// moderate one.
	Temperature float32
	// MaxOutputTokens bounds the response length. Zero means provider default.
	MaxOutputTokens int32
	// Timeout bounds the whole call. Zero means no additional deadline beyond
	// the caller's context.
	Timeout time.Duration
}

// Completer is the language-model contract used by the extraction engine and
// the question generator. Implementations own credentials and transport;
// callers own prompts and fallback behavior.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
}
