package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"financeos/engine/internal/enginerr"
	"financeos/engine/internal/logging"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient implements Client on top of the Google Gemini API.
type GeminiClient struct {
	client         *genai.Client
	model          *genai.GenerativeModel
	embeddingModel *genai.EmbeddingModel
	timeout        time.Duration
	log            logging.Logger
}

// NewGeminiClient creates a Gemini-backed client. The model names and the
// per-call timeout come from configuration.
func NewGeminiClient(ctx context.Context, apiKey, model, embeddingModel string, timeout time.Duration, logger logging.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is empty")
	}
	if logger == nil {
		logger = logging.GetLogger()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:         client,
		model:          client.GenerativeModel(model),
		embeddingModel: client.EmbeddingModel(embeddingModel),
		timeout:        timeout,
		log:            logger,
	}, nil
}

// Complete sends a prompt to the generative model and returns the
// concatenated text parts of the first candidate.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &enginerr.ModelTimeoutError{Operation: "complete", Err: err}
		}
		return "", fmt.Errorf("gemini completion failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	c.log.WithField(logging.FieldOperation, "complete").Debug("Gemini completion succeeded")
	return b.String(), nil
}

// Embed returns the embedding vector for a text.
func (c *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.embeddingModel.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &enginerr.ModelTimeoutError{Operation: "embed", Err: err}
		}
		return nil, fmt.Errorf("gemini embedding failed: %w", err)
	}
	if resp.Embedding == nil {
		return nil, fmt.Errorf("gemini returned no embedding")
	}
	return resp.Embedding.Values, nil
}

// Close releases the underlying API client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}
