// Package retrieval maintains the user-scoped semantic index over past
// transactions and conversation snippets. Records are embedded on write and
// ranked by cosine similarity on read; a query never sees records owned by
// another user, because scoping happens before ranking.
package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"financeos/engine/internal/ai"
	"financeos/engine/internal/enginerr"
	"financeos/engine/internal/logging"
	"financeos/engine/internal/models"
	"financeos/engine/internal/store"
)

// Index embeds and retrieves user-owned text snippets.
type Index struct {
	embeddings store.EmbeddingStore
	client     ai.Client
	k          int
	threshold  float64
	log        logging.Logger
}

// NewIndex creates an Index returning at most k results per query, with
// similarities at or below threshold excluded.
func NewIndex(embeddings store.EmbeddingStore, client ai.Client, k int, threshold float64, log logging.Logger) *Index {
	return &Index{
		embeddings: embeddings,
		client:     client,
		k:          k,
		threshold:  threshold,
		log:        log,
	}
}

// Add embeds the record's content and appends it to the user's index. An
// already populated vector is stored as-is, which lets imports batch their
// embedding calls elsewhere.
func (ix *Index) Add(ctx context.Context, rec models.EmbeddingRecord) (models.EmbeddingRecord, error) {
	if rec.UserID == "" {
		return models.EmbeddingRecord{}, fmt.Errorf("embedding record requires a user id")
	}
	if strings.TrimSpace(rec.Content) == "" {
		return models.EmbeddingRecord{}, fmt.Errorf("embedding record requires content")
	}

	if len(rec.Vector) == 0 {
		vector, err := ix.client.Embed(ctx, rec.Content)
		if err != nil {
			return models.EmbeddingRecord{}, &enginerr.RetrievalError{UserID: rec.UserID, Err: err}
		}
		rec.Vector = vector
	}
	return ix.embeddings.AppendEmbedding(ctx, rec)
}

// Query returns the user's closest records for the query text, most similar
// first, ties broken by recency. Results below or at the similarity
// threshold are dropped even if fewer than k records remain.
func (ix *Index) Query(ctx context.Context, userID, query string) ([]models.ScoredRecord, error) {
	queryVec, err := ix.client.Embed(ctx, query)
	if err != nil {
		return nil, &enginerr.RetrievalError{UserID: userID, Err: err}
	}

	records, err := ix.embeddings.ListEmbeddings(ctx, userID)
	if err != nil {
		return nil, &enginerr.RetrievalError{UserID: userID, Err: err}
	}

	var scored []models.ScoredRecord
	for _, rec := range records {
		similarity := CosineSimilarity(queryVec, rec.Vector)
		if similarity <= ix.threshold {
			continue
		}
		scored = append(scored, models.ScoredRecord{Record: rec, Similarity: similarity})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		return scored[i].Record.Created.After(scored[j].Record.Created)
	})
	if len(scored) > ix.k {
		scored = scored[:ix.k]
	}

	ix.log.Debug("retrieval query served",
		logging.Field{Key: logging.FieldUserID, Value: userID},
		logging.Field{Key: logging.FieldCount, Value: len(scored)},
	)
	return scored, nil
}

// CosineSimilarity computes 1 minus the cosine distance of two vectors in
// float64 precision. Mismatched dimensions and zero vectors score 0, which
// keeps them below any positive threshold.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
