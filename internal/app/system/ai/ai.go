// internal/app/system/ai/ai.go

// Package ai wraps the external model capabilities the assistant consumes.
// The rest of the app treats these as opaque: text in, vector or text out.
// Failures are ordinary errors; callers decide whether they are fatal.
package ai

import "context"

// Embedder converts text into a fixed-dimension vector. An empty vector
// with a nil error is treated by callers the same as a failure.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces text from a system instruction plus user text. Used
// both for grounded answer synthesis and as the intent-classifier fallback.
type Generator interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
