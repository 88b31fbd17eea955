package port

import "context"

// ReasoningProvider abstracts a best-effort text-generation provider. The
// returned string is raw provider text; callers must not assume it is valid
// JSON, complete, or even related to the prompt.
type ReasoningProvider interface {
	// Name identifies the provider in logs and analysis metadata.
	Name() string
	// Complete sends a prompt and returns the provider's raw text output.
	Complete(ctx context.Context, prompt string) (string, error)
}
