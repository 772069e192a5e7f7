package store

import (
	"os"
	"path/filepath"
	"testing"

	"financeos/engine/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadCategoriesFile(t *testing.T) {
	path := writeSeedFile(t, `categories:
  - name: Супермаркети
    type: expense
    icon: "🛒"
    keywords: [сільпо, атб]
  - id: fixed-id
    name: Зарплата
    type: income
`)

	cats, err := LoadCategoriesFile(path)
	require.NoError(t, err)
	require.Len(t, cats, 2)

	assert.Equal(t, "Супермаркети", cats[0].Name)
	assert.Equal(t, models.DirectionExpense, cats[0].Type)
	assert.Equal(t, []string{"сільпо", "атб"}, cats[0].Keywords)
	assert.NotEmpty(t, cats[0].ID, "missing ids are generated")
	assert.Equal(t, "fixed-id", cats[1].ID, "explicit ids are kept")
}

func TestLoadCategoriesFileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadCategoriesFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := LoadCategoriesFile(writeSeedFile(t, "categories: [unclosed"))
		assert.Error(t, err)
	})

	t.Run("unknown direction", func(t *testing.T) {
		_, err := LoadCategoriesFile(writeSeedFile(t, `categories:
  - name: Дивна
    type: sideways
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown type")
	})
}

func TestDefaultCategories(t *testing.T) {
	cats := DefaultCategories()

	ids := make(map[string]bool, len(cats))
	fallbacks := make(map[models.Direction]bool)
	for _, c := range cats {
		assert.True(t, c.IsGlobal(), "seed categories are global")
		assert.True(t, c.Type.Valid())
		assert.False(t, ids[c.ID], "ids are unique")
		ids[c.ID] = true

		switch c.Name {
		case models.CategoryFallbackExpense, models.CategoryFallbackIncome, models.CategoryFallbackTransfer:
			fallbacks[c.Type] = true
		}
	}

	assert.True(t, fallbacks[models.DirectionExpense])
	assert.True(t, fallbacks[models.DirectionIncome])
	assert.True(t, fallbacks[models.DirectionTransfer])
}
