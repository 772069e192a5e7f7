// Package engine composes the processing stages into user-facing
// operations: free-text capture, statement import and grounded advisory
// answers. Each stage is an independently testable component; the engine
// only sequences them and enforces per-user serialization.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"financeos/engine/internal/classifier"
	"financeos/engine/internal/composer"
	"financeos/engine/internal/enginerr"
	"financeos/engine/internal/logging"
	"financeos/engine/internal/memory"
	"financeos/engine/internal/models"
	"financeos/engine/internal/normalizer"
	"financeos/engine/internal/reconciler"
	"financeos/engine/internal/retrieval"
	"financeos/engine/internal/store"
)

// Outcome is the result of capturing one utterance. Exactly one of the
// following holds: NeedsClarification is set and nothing was persisted, or
// Candidate was persisted (possibly flagged for confirmation).
type Outcome struct {
	Candidate models.TransactionCandidate
	Category  classifier.Match
	Duplicate *enginerr.DuplicateCandidateWarning

	// Ambiguity describes why a persisted candidate fell below the
	// confidence floor. Nil for confident captures and duplicate suspects.
	Ambiguity *enginerr.AmbiguousAmountError

	// NeedsClarification signals that the text did not parse into an
	// amount; Clarification carries the question to relay to the user.
	NeedsClarification bool
	Clarification      string

	// Confirmation is set when the candidate was persisted but withheld
	// from statistics pending user approval (low confidence or duplicate
	// suspect).
	Confirmation string
}

// Engine is the orchestrator. All fields are set at construction and never
// mutated afterwards.
type Engine struct {
	repo       store.Repository
	normalizer *normalizer.Normalizer
	classifier *classifier.Classifier
	learned    *classifier.LearnedStrategy
	reconciler *reconciler.Reconciler
	memory     *memory.Manager
	index      *retrieval.Index
	composer   *composer.Composer
	log        logging.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New wires an Engine from its components. learned and index may be nil.
func New(repo store.Repository, norm *normalizer.Normalizer, cls *classifier.Classifier,
	learned *classifier.LearnedStrategy, rec *reconciler.Reconciler, mem *memory.Manager,
	index *retrieval.Index, comp *composer.Composer, log logging.Logger) *Engine {
	return &Engine{
		repo:       repo,
		normalizer: norm,
		classifier: cls,
		learned:    learned,
		reconciler: rec,
		memory:     mem,
		index:      index,
		composer:   comp,
		log:        log,
		locks:      make(map[string]*sync.Mutex),
	}
}

// userLock serializes candidate persistence per user so two utterances from
// one user cannot interleave their dedup check and write.
func (e *Engine) userLock(userID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[userID] = lock
	}
	return lock
}

// RecordUtterance captures one free-text money statement: normalize,
// classify, dedup-check, persist, index. Ambiguity never fails the call;
// it comes back as a clarification or confirmation request.
func (e *Engine) RecordUtterance(ctx context.Context, userID, text string) (Outcome, error) {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	candidate, err := e.normalizer.Normalize(userID, text)
	if err != nil {
		var parseErr *enginerr.ParseError
		if errors.As(err, &parseErr) {
			e.log.Debug("utterance did not parse",
				logging.Field{Key: logging.FieldUserID, Value: userID},
				logging.Field{Key: logging.FieldReason, Value: parseErr.Reason})
			return Outcome{
				NeedsClarification: true,
				Clarification:      "Не зміг розпізнати суму. Напишіть, будь ласка, суму й на що, наприклад: «250 грн на каву».",
			}, nil
		}
		return Outcome{}, err
	}

	categories, err := e.repo.ListCategories(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	match := e.classifier.Classify(classifier.Request{
		UserID:     userID,
		Text:       candidate.Description,
		Direction:  candidate.Direction,
		Categories: categories,
	})
	candidate.CategoryID = match.CategoryID

	duplicate, err := e.reconciler.FindDuplicate(ctx, candidate)
	if err != nil {
		return Outcome{}, err
	}
	if duplicate != nil {
		candidate.NeedsConfirmation = true
	}

	stored, err := e.repo.CreateTransaction(ctx, candidate)
	if err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{Candidate: stored, Category: match, Duplicate: duplicate}
	switch {
	case duplicate != nil:
		outcome.Confirmation = fmt.Sprintf(
			"Схожа операція вже є (%d дн. тому). Це нова витрата чи повтор?", duplicate.DayDelta)
	case stored.NeedsConfirmation:
		outcome.Ambiguity = &enginerr.AmbiguousAmountError{
			Text:       text,
			Confidence: stored.Confidence,
			Floor:      e.normalizer.Floor(),
		}
		outcome.Confirmation = fmt.Sprintf(
			"Записав %s як «%s», але не впевнений. Все правильно?",
			stored.Amount.StringFixed(2), match.Category)
	default:
		// confident captures feed the learned strategy
		if e.learned != nil {
			e.learned.Train(stored.Description, stored.CategoryID)
		}
	}

	e.indexCandidate(ctx, stored, match)

	e.log.Info("utterance captured",
		logging.Field{Key: logging.FieldUserID, Value: userID},
		logging.Field{Key: logging.FieldCandidate, Value: stored.ID},
		logging.Field{Key: logging.FieldCategory, Value: match.Category},
		logging.Field{Key: logging.FieldStrategy, Value: match.Strategy},
	)
	return outcome, nil
}

// indexCandidate appends the candidate to the retrieval index. Indexing is
// best-effort: a failure is logged and the capture still succeeds.
func (e *Engine) indexCandidate(ctx context.Context, c models.TransactionCandidate, match classifier.Match) {
	if e.index == nil {
		return
	}
	content := c.RawText
	if content == "" {
		content = c.Description
	}
	_, err := e.index.Add(ctx, models.EmbeddingRecord{
		UserID:        c.UserID,
		Content:       content,
		TransactionID: c.ID,
		Metadata: map[string]string{
			"category":  match.Category,
			"direction": string(c.Direction),
			"date":      c.Date.Format("2006-01-02"),
		},
	})
	if err != nil {
		e.log.WithError(err).Warn("failed to index candidate",
			logging.Field{Key: logging.FieldUserID, Value: c.UserID},
			logging.Field{Key: logging.FieldCandidate, Value: c.ID})
	}
}

// ImportStatement runs the reconciler over a CSV stream, feeds accepted
// candidates to the learned strategy and indexes them.
func (e *Engine) ImportStatement(ctx context.Context, userID string, src io.Reader) (reconciler.Result, error) {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	result, err := e.reconciler.ImportCSV(ctx, userID, src)
	if err != nil {
		return result, err
	}

	categories, err := e.repo.ListCategories(ctx, userID)
	if err != nil {
		return result, err
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	for _, candidate := range result.Candidates {
		if _, dup := result.Duplicates[candidate.ID]; dup {
			continue
		}
		if e.learned != nil {
			e.learned.Train(candidate.Description, candidate.CategoryID)
		}
		e.indexCandidate(ctx, candidate, classifier.Match{
			CategoryID: candidate.CategoryID,
			Category:   names[candidate.CategoryID],
		})
	}
	return result, nil
}

// Ask relays an advisory question to the composer.
func (e *Engine) Ask(ctx context.Context, userID, question string) (string, error) {
	return e.composer.Ask(ctx, userID, question)
}

// WeeklyDigest relays digest generation to the composer. The scheduling
// cadence belongs to the caller.
func (e *Engine) WeeklyDigest(ctx context.Context, userID string) (string, error) {
	return e.composer.WeeklyDigest(ctx, userID)
}
