// Package memory maintains the bounded per-user conversation window. Every
// append is followed by a budget check; when the window exceeds its token
// ceiling the oldest contiguous block of turns is condensed into a single
// summary turn until the window fits the target ratio again.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"financeos/engine/internal/ai"
	"financeos/engine/internal/enginerr"
	"financeos/engine/internal/logging"
	"financeos/engine/internal/models"
	"financeos/engine/internal/store"
	"financeos/engine/internal/textutils"
)

// summaryPrompt frames the compaction request. The model receives the block
// to condense verbatim and must answer with the summary text only.
const summaryPrompt = `Стисни наведений фрагмент фінансової розмови до кількох речень.
Збережи всі суми, категорії та рішення користувача. Відповідай лише текстом підсумку.

%s`

// Manager owns the conversation windows. All operations on one user are
// serialized through a per-user lock so concurrent appends cannot interleave
// a compaction.
type Manager struct {
	turns        store.ConversationStore
	client       ai.Client
	tokenCeiling int
	targetRatio  float64
	log          logging.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a memory manager. tokenCeiling bounds the window;
// compaction shrinks it to targetRatio × tokenCeiling.
func NewManager(turns store.ConversationStore, client ai.Client, tokenCeiling int,
	targetRatio float64, log logging.Logger) *Manager {
	return &Manager{
		turns:        turns,
		client:       client,
		tokenCeiling: tokenCeiling,
		targetRatio:  targetRatio,
		log:          log,
		locks:        make(map[string]*sync.Mutex),
	}
}

func (m *Manager) userLock(userID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[userID] = lock
	}
	return lock
}

// Append stores one turn and compacts the window if it went over budget.
// The turn is always stored; a failed compaction is reported as a
// *enginerr.SummarizationError but leaves the window intact, and the next
// append retries.
func (m *Manager) Append(ctx context.Context, userID string, role models.Role, content string) (models.ConversationTurn, error) {
	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	turn, err := m.turns.AppendTurn(ctx, models.ConversationTurn{
		UserID:  userID,
		Role:    role,
		Content: content,
		Tokens:  textutils.EstimateTokens(content),
	})
	if err != nil {
		return models.ConversationTurn{}, err
	}

	if err := m.compactLocked(ctx, userID); err != nil {
		return turn, err
	}
	return turn, nil
}

// Window returns the user's retained turns, oldest first. Summary turns
// appear in place of the blocks they condensed.
func (m *Manager) Window(ctx context.Context, userID string) ([]models.ConversationTurn, error) {
	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	return m.turns.ListTurns(ctx, userID)
}

// State reports whether the user's window currently fits its budget.
func (m *Manager) State(ctx context.Context, userID string) (models.MemoryState, error) {
	lock := m.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	window, err := m.turns.ListTurns(ctx, userID)
	if err != nil {
		return "", err
	}
	if windowTokens(window) > m.tokenCeiling {
		return models.MemoryOverBudget, nil
	}
	return models.MemoryActive, nil
}

// maxCompactionPasses bounds repeated compaction within one append. A
// second pass only happens when the fresh summary itself overflows the
// budget.
const maxCompactionPasses = 3

// compactLocked condenses the oldest turns while the window is over budget.
// The newest turn is never part of a condensed block, so the latest
// exchange always survives verbatim.
func (m *Manager) compactLocked(ctx context.Context, userID string) error {
	for pass := 0; pass < maxCompactionPasses; pass++ {
		done, err := m.compactOnce(ctx, userID)
		if err != nil || done {
			return err
		}
	}
	return nil
}

func (m *Manager) compactOnce(ctx context.Context, userID string) (bool, error) {
	window, err := m.turns.ListTurns(ctx, userID)
	if err != nil {
		return false, err
	}

	total := windowTokens(window)
	if total <= m.tokenCeiling {
		return true, nil
	}
	target := int(float64(m.tokenCeiling) * m.targetRatio)

	m.log.Info("conversation window over budget",
		logging.Field{Key: logging.FieldUserID, Value: userID},
		logging.Field{Key: logging.FieldTokens, Value: total},
	)

	block, blockTokens := compactionBlock(window, total, target)
	if len(block) == 0 {
		return true, nil
	}

	summaryText, err := m.summarize(ctx, block)
	if err != nil {
		m.log.WithError(err).Warn("compaction failed, window left intact",
			logging.Field{Key: logging.FieldUserID, Value: userID})
		return false, &enginerr.SummarizationError{UserID: userID, Err: err}
	}

	removedIDs := make([]string, len(block))
	for i, turn := range block {
		removedIDs[i] = turn.ID
	}
	summary := models.ConversationTurn{
		UserID:         userID,
		Role:           models.RoleSummary,
		Content:        summaryText,
		Tokens:         textutils.EstimateTokens(summaryText),
		ReplacedTokens: blockTokens,
	}
	if err := m.turns.ReplaceTurns(ctx, userID, removedIDs, summary); err != nil {
		return false, &enginerr.SummarizationError{UserID: userID, Err: err}
	}

	m.log.Info("conversation window compacted",
		logging.Field{Key: logging.FieldUserID, Value: userID},
		logging.Field{Key: logging.FieldCount, Value: len(block)},
		logging.Field{Key: logging.FieldTokens, Value: blockTokens},
	)
	return false, nil
}

// compactionBlock selects the oldest contiguous turns whose removal brings
// the window down to the target. The newest turn is excluded no matter how
// large it is.
func compactionBlock(window []models.ConversationTurn, total, target int) ([]models.ConversationTurn, int) {
	if len(window) < 2 {
		return nil, 0
	}

	blockTokens := 0
	end := 0
	for end < len(window)-1 && total-blockTokens > target {
		blockTokens += window[end].Tokens
		end++
	}
	if end == 0 {
		return nil, 0
	}
	return window[:end], blockTokens
}

func (m *Manager) summarize(ctx context.Context, block []models.ConversationTurn) (string, error) {
	var b strings.Builder
	for _, turn := range block {
		fmt.Fprintf(&b, "[%s] %s\n", turn.Role, turn.Content)
	}

	summary, err := m.client.Complete(ctx, fmt.Sprintf(summaryPrompt, b.String()))
	if err != nil {
		return "", err
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", fmt.Errorf("model returned an empty summary")
	}
	return summary, nil
}

func windowTokens(window []models.ConversationTurn) int {
	total := 0
	for _, turn := range window {
		total += turn.Tokens
	}
	return total
}
