package store

import (
	"context"
	"testing"
	"time"

	"financeos/engine/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.June, 20, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *InMemory {
	t.Helper()
	s := NewInMemory(DefaultCategories())
	s.SetClock(func() time.Time { return testNow })
	return s
}

func storeTx(t *testing.T, s *InMemory, userID string, amount string, dir models.Direction, date time.Time, opts ...func(*models.TransactionCandidate)) models.TransactionCandidate {
	t.Helper()
	amt, err := decimal.NewFromString(amount)
	require.NoError(t, err)
	c := models.TransactionCandidate{
		UserID:     userID,
		Amount:     amt,
		Direction:  dir,
		Date:       date,
		Source:     models.SourceManual,
		Confidence: 0.9,
	}
	for _, opt := range opts {
		opt(&c)
	}
	stored, err := s.CreateTransaction(context.Background(), c)
	require.NoError(t, err)
	return stored
}

func TestCreateTransaction(t *testing.T) {
	s := newTestStore(t)

	stored := storeTx(t, s, "u1", "250", models.DirectionExpense, testNow)
	assert.NotEmpty(t, stored.ID)

	t.Run("rejects invalid candidates", func(t *testing.T) {
		_, err := s.CreateTransaction(context.Background(), models.TransactionCandidate{
			UserID:    "u1",
			Amount:    decimal.NewFromInt(-5),
			Direction: models.DirectionExpense,
		})
		assert.Error(t, err)

		_, err = s.CreateTransaction(context.Background(), models.TransactionCandidate{
			UserID:    "u1",
			Amount:    decimal.NewFromInt(5),
			Direction: models.Direction("sideways"),
		})
		assert.Error(t, err)
	})
}

func TestTransactionsBetween(t *testing.T) {
	s := newTestStore(t)
	storeTx(t, s, "u1", "100", models.DirectionExpense, testNow.AddDate(0, 0, -3))
	inside := storeTx(t, s, "u1", "200", models.DirectionExpense, testNow.AddDate(0, 0, -1))
	storeTx(t, s, "u2", "300", models.DirectionExpense, testNow.AddDate(0, 0, -1))

	got, err := s.TransactionsBetween(context.Background(), "u1", testNow.AddDate(0, 0, -2), testNow)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, inside.ID, got[0].ID)
}

func TestAddCategoryScopeUniqueness(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AddCategory(models.Category{
		Name: "Котики", Type: models.DirectionExpense, UserID: "u1",
	}))

	t.Run("duplicate name in same scope rejected", func(t *testing.T) {
		err := s.AddCategory(models.Category{
			Name: "Котики", Type: models.DirectionExpense, UserID: "u1",
		})
		assert.Error(t, err)
	})

	t.Run("same name allowed in another scope", func(t *testing.T) {
		assert.NoError(t, s.AddCategory(models.Category{
			Name: "Котики", Type: models.DirectionExpense, UserID: "u2",
		}))
	})

	t.Run("user category may shadow a global name", func(t *testing.T) {
		assert.NoError(t, s.AddCategory(models.Category{
			Name: "Супермаркети", Type: models.DirectionExpense, UserID: "u1",
		}))
	})
}

func TestListCategoriesScoping(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddCategory(models.Category{
		Name: "Котики", Type: models.DirectionExpense, UserID: "u1",
	}))

	forU1, err := s.ListCategories(context.Background(), "u1")
	require.NoError(t, err)
	forU2, err := s.ListCategories(context.Background(), "u2")
	require.NoError(t, err)

	assert.Len(t, forU1, len(DefaultCategories())+1)
	assert.Len(t, forU2, len(DefaultCategories()))
}

func TestReplaceTurns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var ids []string
	for _, content := range []string{"перший", "другий", "третій"} {
		turn, err := s.AppendTurn(ctx, models.ConversationTurn{
			UserID: "u1", Role: models.RoleUser, Content: content, Tokens: 2,
		})
		require.NoError(t, err)
		ids = append(ids, turn.ID)
	}

	summary := models.ConversationTurn{
		UserID: "u1", Role: models.RoleSummary, Content: "підсумок", Tokens: 2, ReplacedTokens: 4,
	}
	require.NoError(t, s.ReplaceTurns(ctx, "u1", ids[:2], summary))

	window, err := s.ListTurns(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, window, 2)
	assert.True(t, window[0].IsSummary())
	assert.Equal(t, "підсумок", window[0].Content)
	assert.Equal(t, "третій", window[1].Content)

	t.Run("unknown ids rejected", func(t *testing.T) {
		err := s.ReplaceTurns(ctx, "u1", []string{"missing"}, summary)
		assert.Error(t, err)
	})
}

func TestMonthlyBalanceSkipsUnconfirmedAndIgnored(t *testing.T) {
	s := newTestStore(t)
	storeTx(t, s, "u1", "40000", models.DirectionIncome, testNow)
	storeTx(t, s, "u1", "250.505", models.DirectionExpense, testNow)
	storeTx(t, s, "u1", "1000", models.DirectionExpense, testNow, func(c *models.TransactionCandidate) {
		c.NeedsConfirmation = true
	})
	storeTx(t, s, "u1", "2000", models.DirectionExpense, testNow, func(c *models.TransactionCandidate) {
		c.IgnoreInStats = true
	})
	// previous month stays out
	storeTx(t, s, "u1", "500", models.DirectionExpense, testNow.AddDate(0, -1, 0))
	// transfers move money without affecting the balance
	storeTx(t, s, "u1", "3000", models.DirectionTransfer, testNow)

	balance, err := s.MonthlyBalance(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "40000.00", balance.TotalIncome.StringFixed(2))
	assert.Equal(t, "250.51", balance.TotalExpenses.StringFixed(2))
}

func TestTopCategories(t *testing.T) {
	s := newTestStore(t)
	cats, err := s.ListCategories(context.Background(), "u1")
	require.NoError(t, err)
	byName := make(map[string]string, len(cats))
	for _, c := range cats {
		byName[c.Name] = c.ID
	}

	withCategory := func(name string) func(*models.TransactionCandidate) {
		return func(c *models.TransactionCandidate) { c.CategoryID = byName[name] }
	}
	storeTx(t, s, "u1", "800", models.DirectionExpense, testNow, withCategory("Супермаркети"))
	storeTx(t, s, "u1", "300", models.DirectionExpense, testNow, withCategory("Супермаркети"))
	storeTx(t, s, "u1", "500", models.DirectionExpense, testNow, withCategory("Таксі/Громадський"))
	storeTx(t, s, "u1", "150", models.DirectionExpense, testNow) // no category -> fallback

	top, err := s.TopCategories(context.Background(), "u1", 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Супермаркети", top[0].Name)
	assert.Equal(t, "1100.00", top[0].Total.StringFixed(2))
	assert.Equal(t, "Таксі/Громадський", top[1].Name)
	assert.Equal(t, "🛒", top[0].Icon)
}

func TestSpendingTrends(t *testing.T) {
	s := newTestStore(t)
	storeTx(t, s, "u1", "100", models.DirectionExpense, testNow.AddDate(0, -2, 0))
	storeTx(t, s, "u1", "200", models.DirectionExpense, testNow.AddDate(0, -1, 0))
	storeTx(t, s, "u1", "40000", models.DirectionIncome, testNow)
	storeTx(t, s, "u1", "300", models.DirectionExpense, testNow)

	trends, err := s.SpendingTrends(context.Background(), "u1", 6)
	require.NoError(t, err)
	require.Len(t, trends, 3)
	assert.Equal(t, "2025-04", trends[0].Month)
	assert.Equal(t, "2025-06", trends[2].Month)
	assert.Equal(t, "40000.00", trends[2].Income.StringFixed(2))
	assert.Equal(t, "300.00", trends[2].Expenses.StringFixed(2))
}

func TestProfileDefaults(t *testing.T) {
	s := newTestStore(t)

	p, err := s.Profile(context.Background(), "stranger")
	require.NoError(t, err)
	assert.Equal(t, "UAH", p.Currency)
	assert.Equal(t, models.StyleBalanced, p.Style)

	s.SetProfile(models.UserProfile{UserID: "u1", Name: "Олена", Currency: "UAH", Style: models.StyleFormal})
	p, err = s.Profile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Олена", p.Name)
	assert.Equal(t, models.StyleFormal, p.Style)
}
