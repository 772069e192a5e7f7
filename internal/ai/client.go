// Package ai defines the language-model collaborator boundary. The engine
// only ever needs two calls: text completion for summaries, confirmations
// and advisory answers, and text embedding for the semantic retrieval
// index. Transport, retries and rate limits live behind this interface.
package ai

import "context"

// Client is the language-model collaborator consumed by the engine.
type Client interface {
	// Complete sends a prompt and returns the model's text answer.
	// Implementations must honor the context deadline and surface timeouts
	// as *enginerr.ModelTimeoutError.
	Complete(ctx context.Context, prompt string) (string, error)

	// Embed returns a fixed-dimension vector representation of text.
	Embed(ctx context.Context, text string) ([]float32, error)
}
