// Package llm adapts external generative models to the gateway.
package llm

import "context"

// Options tunes a single generation call.
type Options struct {
	Temperature float32
	// ResponseMIMEType asks the model for a specific output format, e.g. "application/json".
	ResponseMIMEType string
}

// Model produces text for a prompt.
type Model interface {
	// Ready reports whether the model is usable without contacting it.
	// It returns types.ErrMissingCredential when no credential is configured.
	Ready() error

	// Generate runs one attempt. Implementations do not retry.
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}
