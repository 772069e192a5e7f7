package models

import "time"

// EmbeddingRecord is one append-only entry in the semantic retrieval index:
// a fixed-dimension vector for a piece of user-owned text, optionally linked
// to the transaction or conversation turn it was derived from. Records are
// immutable once written; superseding information is represented by new
// records, never by mutation.
type EmbeddingRecord struct {
	ID            string            `json:"id"`
	UserID        string            `json:"user_id"`
	Content       string            `json:"content"`
	Vector        []float32         `json:"vector"`
	TransactionID string            `json:"transaction_id,omitempty"`
	TurnID        string            `json:"turn_id,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Created       time.Time         `json:"created"`
}

// ScoredRecord pairs a record with its similarity to a query vector.
// Similarity is cosine similarity (1 - cosine distance); higher is closer.
type ScoredRecord struct {
	Record     EmbeddingRecord
	Similarity float64
}
