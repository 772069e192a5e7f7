// Package store defines the repository collaborator boundary. The engine
// owns in-memory transformation logic only; finished entities are handed to
// a Repository for durable storage, and every read is scoped by user id.
//
// The narrow sub-interfaces exist so each component can declare exactly the
// access it needs; Repository composes them for wiring convenience.
package store

import (
	"context"
	"time"

	"financeos/engine/internal/models"
)

// TransactionStore persists transaction candidates and serves the reads the
// reconciler needs for deduplication.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, c models.TransactionCandidate) (models.TransactionCandidate, error)

	// TransactionsBetween returns the user's transactions whose date falls
	// inside [from, to], inclusive. Used by the dedup window.
	TransactionsBetween(ctx context.Context, userID string, from, to time.Time) ([]models.TransactionCandidate, error)
}

// CategoryStore serves the global and per-user category sets.
type CategoryStore interface {
	// ListCategories returns the global categories plus the user's own.
	ListCategories(ctx context.Context, userID string) ([]models.Category, error)
}

// ConversationStore persists the bounded dialogue window.
type ConversationStore interface {
	AppendTurn(ctx context.Context, turn models.ConversationTurn) (models.ConversationTurn, error)

	// ListTurns returns the user's retained turns in creation order.
	ListTurns(ctx context.Context, userID string) ([]models.ConversationTurn, error)

	// ReplaceTurns atomically removes the turns with the given ids and
	// inserts the summary in their place, preserving window order.
	ReplaceTurns(ctx context.Context, userID string, removedIDs []string, summary models.ConversationTurn) error
}

// EmbeddingStore is the append-only log behind the retrieval index.
type EmbeddingStore interface {
	AppendEmbedding(ctx context.Context, rec models.EmbeddingRecord) (models.EmbeddingRecord, error)
	ListEmbeddings(ctx context.Context, userID string) ([]models.EmbeddingRecord, error)
}

// AggregateStore serves the precomputed views the composer grounds its
// prompts on.
type AggregateStore interface {
	MonthlyBalance(ctx context.Context, userID string) (models.MonthlyBalance, error)
	TopCategories(ctx context.Context, userID string, limit int) ([]models.CategoryTotal, error)
	SpendingTrends(ctx context.Context, userID string, months int) ([]models.TrendPoint, error)
	ActiveGoals(ctx context.Context, userID string) ([]models.Goal, error)
	Profile(ctx context.Context, userID string) (models.UserProfile, error)
}

// Repository is the full persistence surface consumed by the engine.
type Repository interface {
	TransactionStore
	CategoryStore
	ConversationStore
	EmbeddingStore
	AggregateStore
}
