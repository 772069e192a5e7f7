package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"financeos/engine/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InMemory is a Repository implementation backed by process memory. It is
// the reference store for tests and the CLI; production deployments plug a
// database-backed Repository in its place. Aggregates are computed on read
// from the stored transactions, mirroring the views a real store would
// maintain.
type InMemory struct {
	mu           sync.RWMutex
	transactions map[string][]models.TransactionCandidate
	categories   []models.Category
	turns        map[string][]models.ConversationTurn
	embeddings   map[string][]models.EmbeddingRecord
	goals        map[string][]models.Goal
	profiles     map[string]models.UserProfile

	// now is swappable so tests can pin the current month.
	now func() time.Time
}

// NewInMemory creates an empty in-memory repository seeded with the given
// global categories.
func NewInMemory(categories []models.Category) *InMemory {
	return &InMemory{
		transactions: make(map[string][]models.TransactionCandidate),
		categories:   append([]models.Category(nil), categories...),
		turns:        make(map[string][]models.ConversationTurn),
		embeddings:   make(map[string][]models.EmbeddingRecord),
		goals:        make(map[string][]models.Goal),
		profiles:     make(map[string]models.UserProfile),
		now:          time.Now,
	}
}

// SetClock pins the repository's notion of "now". Tests only.
func (s *InMemory) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// CreateTransaction stores a candidate, assigning an id when missing.
func (s *InMemory) CreateTransaction(ctx context.Context, c models.TransactionCandidate) (models.TransactionCandidate, error) {
	if err := c.Validate(); err != nil {
		return models.TransactionCandidate{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	s.transactions[c.UserID] = append(s.transactions[c.UserID], c)
	return c, nil
}

// TransactionsBetween returns the user's transactions dated inside
// [from, to], inclusive.
func (s *InMemory) TransactionsBetween(ctx context.Context, userID string, from, to time.Time) ([]models.TransactionCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.TransactionCandidate
	for _, tx := range s.transactions[userID] {
		if tx.Date.Before(from) || tx.Date.After(to) {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

// AddCategory registers a user or global category. (scope, name) must be
// unique.
func (s *InMemory) AddCategory(c models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.categories {
		if existing.UserID == c.UserID && existing.Name == c.Name {
			return fmt.Errorf("category %q already exists in this scope", c.Name)
		}
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	s.categories = append(s.categories, c)
	return nil
}

// ListCategories returns the global categories plus the user's own.
func (s *InMemory) ListCategories(ctx context.Context, userID string) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Category
	for _, c := range s.categories {
		if c.IsGlobal() || c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

// AppendTurn stores one conversation turn at the end of the user's window.
func (s *InMemory) AppendTurn(ctx context.Context, turn models.ConversationTurn) (models.ConversationTurn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if turn.ID == "" {
		turn.ID = uuid.New().String()
	}
	if turn.Created.IsZero() {
		turn.Created = s.now()
	}
	s.turns[turn.UserID] = append(s.turns[turn.UserID], turn)
	return turn, nil
}

// ListTurns returns the user's retained turns in creation order.
func (s *InMemory) ListTurns(ctx context.Context, userID string) ([]models.ConversationTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ConversationTurn(nil), s.turns[userID]...), nil
}

// ReplaceTurns removes the given turns and inserts the summary where the
// removed prefix began.
func (s *InMemory) ReplaceTurns(ctx context.Context, userID string, removedIDs []string, summary models.ConversationTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := make(map[string]bool, len(removedIDs))
	for _, id := range removedIDs {
		removed[id] = true
	}

	window := s.turns[userID]
	out := make([]models.ConversationTurn, 0, len(window))
	inserted := false
	for _, turn := range window {
		if removed[turn.ID] {
			if !inserted {
				if summary.ID == "" {
					summary.ID = uuid.New().String()
				}
				out = append(out, summary)
				inserted = true
			}
			continue
		}
		out = append(out, turn)
	}
	if !inserted {
		return fmt.Errorf("none of the %d turns to replace were found", len(removedIDs))
	}
	s.turns[userID] = out
	return nil
}

// AppendEmbedding stores an immutable embedding record.
func (s *InMemory) AppendEmbedding(ctx context.Context, rec models.EmbeddingRecord) (models.EmbeddingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Created.IsZero() {
		rec.Created = s.now()
	}
	s.embeddings[rec.UserID] = append(s.embeddings[rec.UserID], rec)
	return rec, nil
}

// ListEmbeddings returns all embedding records owned by the user.
func (s *InMemory) ListEmbeddings(ctx context.Context, userID string) ([]models.EmbeddingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.EmbeddingRecord(nil), s.embeddings[userID]...), nil
}

// statsEligible reports whether a transaction counts toward aggregates.
// Unconfirmed and explicitly ignored candidates stay out of statistics.
func statsEligible(tx models.TransactionCandidate) bool {
	return !tx.NeedsConfirmation && !tx.IgnoreInStats
}

// MonthlyBalance sums the user's confirmed income and expenses for the
// current calendar month.
func (s *InMemory) MonthlyBalance(ctx context.Context, userID string) (models.MonthlyBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	balance := models.MonthlyBalance{UserID: userID}
	for _, tx := range s.transactions[userID] {
		if !statsEligible(tx) || !sameMonth(tx.Date, now) {
			continue
		}
		switch tx.Direction {
		case models.DirectionIncome:
			balance.TotalIncome = balance.TotalIncome.Add(tx.RoundedAmount())
		case models.DirectionExpense:
			balance.TotalExpenses = balance.TotalExpenses.Add(tx.RoundedAmount())
		}
	}
	return balance, nil
}

// TopCategories returns the user's expense categories for the current
// month, largest first, at most limit entries.
func (s *InMemory) TopCategories(ctx context.Context, userID string, limit int) ([]models.CategoryTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	names := make(map[string]string) // category id -> name
	icons := make(map[string]string)
	for _, c := range s.categories {
		names[c.ID] = c.Name
		icons[c.ID] = c.Icon
	}

	totals := make(map[string]decimal.Decimal)
	for _, tx := range s.transactions[userID] {
		if !statsEligible(tx) || tx.Direction != models.DirectionExpense || !sameMonth(tx.Date, now) {
			continue
		}
		name := names[tx.CategoryID]
		if name == "" {
			name = models.CategoryFallbackExpense
		}
		totals[name] = totals[name].Add(tx.RoundedAmount())
	}

	out := make([]models.CategoryTotal, 0, len(totals))
	for name, total := range totals {
		out = append(out, models.CategoryTotal{UserID: userID, Name: name, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		for id, name := range names {
			if name == out[i].Name && icons[id] != "" {
				out[i].Icon = icons[id]
				break
			}
		}
	}
	return out, nil
}

// SpendingTrends returns per-month income/expense history for the last
// months calendar months, oldest first.
func (s *InMemory) SpendingTrends(ctx context.Context, userID string, months int) ([]models.TrendPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byMonth := make(map[string]*models.TrendPoint)
	cutoff := s.now().AddDate(0, -months, 0)
	for _, tx := range s.transactions[userID] {
		if !statsEligible(tx) || tx.Date.Before(cutoff) {
			continue
		}
		key := tx.Date.Format("2006-01")
		point, ok := byMonth[key]
		if !ok {
			point = &models.TrendPoint{UserID: userID, Month: key}
			byMonth[key] = point
		}
		switch tx.Direction {
		case models.DirectionIncome:
			point.Income = point.Income.Add(tx.RoundedAmount())
		case models.DirectionExpense:
			point.Expenses = point.Expenses.Add(tx.RoundedAmount())
		}
	}

	out := make([]models.TrendPoint, 0, len(byMonth))
	for _, point := range byMonth {
		out = append(out, *point)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

// SetGoals replaces the user's goal list. The engine never mutates goals.
func (s *InMemory) SetGoals(userID string, goals []models.Goal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals[userID] = append([]models.Goal(nil), goals...)
}

// ActiveGoals returns the user's goals.
func (s *InMemory) ActiveGoals(ctx context.Context, userID string) ([]models.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Goal(nil), s.goals[userID]...), nil
}

// SetProfile stores a user profile.
func (s *InMemory) SetProfile(p models.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = p
}

// Profile returns the user's profile, defaulting to a balanced UAH profile
// for unknown users.
func (s *InMemory) Profile(ctx context.Context, userID string) (models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.profiles[userID]; ok {
		return p, nil
	}
	return models.UserProfile{
		UserID:   userID,
		Currency: "UAH",
		Style:    models.StyleBalanced,
	}, nil
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
