package ai

import (
	"context"
	"hash/fnv"
	"math"
)

// FakeClient is a deterministic in-process Client used by tests and by the
// CLI when no API key is configured. Completions echo a canned answer and
// embeddings are derived from token hashes, so equal texts always map to
// equal vectors and similar token sets land close together.
type FakeClient struct {
	Dimension int

	// CompleteFunc, when set, overrides the canned completion. Tests use it
	// to simulate summarizer failures and timeouts.
	CompleteFunc func(ctx context.Context, prompt string) (string, error)
	// EmbedFunc, when set, overrides the hash embedding.
	EmbedFunc func(ctx context.Context, text string) ([]float32, error)

	Completions []string
}

// NewFakeClient creates a fake client producing vectors of the given
// dimension.
func NewFakeClient(dimension int) *FakeClient {
	return &FakeClient{Dimension: dimension}
}

// Complete returns the canned completion or delegates to CompleteFunc.
func (f *FakeClient) Complete(ctx context.Context, prompt string) (string, error) {
	if f.CompleteFunc != nil {
		return f.CompleteFunc(ctx, prompt)
	}
	f.Completions = append(f.Completions, prompt)
	return "ok", nil
}

// Embed maps each whitespace token onto a hashed bucket and normalizes the
// resulting vector to unit length.
func (f *FakeClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.EmbedFunc != nil {
		return f.EmbedFunc(ctx, text)
	}

	vec := make([]float32, f.Dimension)
	start := 0
	addToken := func(tok string) {
		if tok == "" {
			return
		}
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[int(h.Sum32())%f.Dimension] += 1
	}
	for i := 0; i <= len(text); i++ {
		if i == len(text) || text[i] == ' ' || text[i] == '\n' || text[i] == '\t' {
			addToken(text[start:i])
			start = i + 1
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}
