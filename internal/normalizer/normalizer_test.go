package normalizer

import (
	"testing"
	"time"

	"financeos/engine/internal/enginerr"
	"financeos/engine/internal/logging"
	"financeos/engine/internal/models"
	"financeos/engine/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNormalizer() *Normalizer {
	n := New(0.6, store.DefaultCategories(), &logging.MockLogger{})
	n.SetClock(func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) })
	return n
}

func TestNormalizeAmounts(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantAmount string
		wantDir    models.Direction
	}{
		{
			name:       "plain digits with currency",
			text:       "витратив 250 грн на каву",
			wantAmount: "250",
			wantDir:    models.DirectionExpense,
		},
		{
			name:       "attached thousand suffix",
			text:       "25к",
			wantAmount: "25000",
			wantDir:    models.DirectionExpense,
		},
		{
			name:       "latin thousand suffix with decimal",
			text:       "1.5k на подарунок",
			wantAmount: "1500",
			wantDir:    models.DirectionExpense,
		},
		{
			name:       "detached thousand marker",
			text:       "відклав 25 к на банку",
			wantAmount: "25000",
			wantDir:    models.DirectionTransfer,
		},
		{
			name:       "half a million",
			text:       "пів мільйона",
			wantAmount: "500000",
			wantDir:    models.DirectionExpense,
		},
		{
			name:       "spelled number with magnitude",
			text:       "двадцять тисяч грн",
			wantAmount: "20000",
			wantDir:    models.DirectionExpense,
		},
		{
			name:       "composed spelled number",
			text:       "двісті сорок грн за таксі",
			wantAmount: "240",
			wantDir:    models.DirectionExpense,
		},
		{
			name:       "decimal comma",
			text:       "100,50 грн за обід",
			wantAmount: "100.5",
			wantDir:    models.DirectionExpense,
		},
		{
			name:       "income verb",
			text:       "отримав зп 40000 грн",
			wantAmount: "40000",
			wantDir:    models.DirectionIncome,
		},
		{
			name:       "transfer verb",
			text:       "переказав 500 мамі",
			wantAmount: "500",
			wantDir:    models.DirectionTransfer,
		},
		{
			name:       "one and a half thousand",
			text:       "півтори тисячі на ліки",
			wantAmount: "1500",
			wantDir:    models.DirectionExpense,
		},
	}

	n := newTestNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := n.Normalize("u1", tt.text)
			require.NoError(t, err)
			assert.True(t, c.Amount.Equal(mustDecimal(t, tt.wantAmount)),
				"amount = %s, want %s", c.Amount, tt.wantAmount)
			assert.Equal(t, tt.wantDir, c.Direction)
			assert.Equal(t, "u1", c.UserID)
			assert.Equal(t, models.SourceManual, c.Source)
			assert.NoError(t, c.Validate())
		})
	}
}

func TestNormalizeRejectsNonAmounts(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "whitespace only", text: "   "},
		{name: "no numerals english", text: "hello"},
		{name: "no numerals ukrainian", text: "привіт як справи"},
		{name: "over the plausibility bound", text: "витратив 50 млн"},
	}

	n := newTestNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize("u1", tt.text)
			require.Error(t, err)
			var parseErr *enginerr.ParseError
			require.ErrorAs(t, err, &parseErr)
		})
	}
}

func TestNormalizeConfidence(t *testing.T) {
	n := newTestNormalizer()

	t.Run("multiple cues clear the floor", func(t *testing.T) {
		c, err := n.Normalize("u1", "витратив 250 грн на каву")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, c.Confidence, 0.6)
		assert.False(t, c.NeedsConfirmation)
	})

	t.Run("bare amount needs confirmation", func(t *testing.T) {
		c, err := n.Normalize("u1", "25к")
		require.NoError(t, err)
		assert.Less(t, c.Confidence, 0.6)
		assert.True(t, c.NeedsConfirmation)
	})

	t.Run("currency disambiguates competing numerals", func(t *testing.T) {
		c, err := n.Normalize("u1", "2 кави по 80 грн")
		require.NoError(t, err)
		assert.True(t, c.Amount.Equal(mustDecimal(t, "80")))
		assert.False(t, c.NeedsConfirmation)
	})

	t.Run("competing numerals without cues are ambiguous", func(t *testing.T) {
		c, err := n.Normalize("u1", "5 і 10")
		require.NoError(t, err)
		assert.True(t, c.NeedsConfirmation)
		assert.True(t, c.Amount.Equal(mustDecimal(t, "5")))
	})

	t.Run("deterministic", func(t *testing.T) {
		a, err := n.Normalize("u1", "отримав зп 40000 грн")
		require.NoError(t, err)
		b, err := n.Normalize("u1", "отримав зп 40000 грн")
		require.NoError(t, err)
		assert.Equal(t, a.Amount.String(), b.Amount.String())
		assert.Equal(t, a.Confidence, b.Confidence)
		assert.Equal(t, a.Direction, b.Direction)
	})
}

func TestNormalizeDescription(t *testing.T) {
	n := newTestNormalizer()

	c, err := n.Normalize("u1", "витратив 250 грн на каву")
	require.NoError(t, err)
	assert.Equal(t, "каву", c.Description)
	assert.Equal(t, "витратив 250 грн на каву", c.RawText)
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}
