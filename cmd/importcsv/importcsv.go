// Package importcsv handles the statement import command
package importcsv

import (
	"context"
	"fmt"
	"os"

	"financeos/engine/cmd/root"
	"financeos/engine/internal/logging"
	"financeos/engine/internal/models"
	"financeos/engine/internal/reconciler"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"
)

// Cmd represents the import command
var Cmd = &cobra.Command{
	Use:   "import",
	Short: "Import a bank statement CSV export",
	Long: `Import a statement export, classify and deduplicate its rows, and
optionally write the accepted transactions to a CSV file.`,
	RunE: importFunc,
}

func init() {
	Cmd.Flags().StringVarP(&root.Input, "input", "i", "", "Statement CSV file")
	Cmd.Flags().StringVarP(&root.Output, "output", "o", "", "Write accepted transactions to this CSV file")
	_ = Cmd.MarkFlagRequired("input")
}

// exportRow is the CSV shape of one accepted transaction.
type exportRow struct {
	Date        string `csv:"date"`
	Amount      string `csv:"amount"`
	Direction   string `csv:"direction"`
	Description string `csv:"description"`
	Category    string `csv:"category"`
	Source      string `csv:"source"`
}

func importFunc(cmd *cobra.Command, args []string) error {
	file, err := os.Open(root.Input)
	if err != nil {
		return fmt.Errorf("failed to open statement file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			root.Log.WithError(err).Warn("failed to close statement file")
		}
	}()

	result, err := root.App.GetEngine().ImportStatement(cmd.Context(), root.UserID, file)
	if err != nil {
		return err
	}

	fmt.Printf("Прийнято: %d, дублікатів: %d, помилок у рядках: %d\n",
		result.Accepted(), len(result.Duplicates), len(result.RowErrors))
	for _, rowErr := range result.RowErrors {
		fmt.Printf("  %v\n", rowErr)
	}

	if root.Output == "" {
		return nil
	}
	return exportAccepted(cmd.Context(), result, root.Output)
}

// exportAccepted writes the non-duplicate candidates to a CSV file.
func exportAccepted(ctx context.Context, result reconciler.Result, path string) error {
	categories, err := root.App.GetRepository().ListCategories(ctx, root.UserID)
	if err != nil {
		return err
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	var rows []exportRow
	for _, candidate := range result.Candidates {
		if _, dup := result.Duplicates[candidate.ID]; dup {
			continue
		}
		name := names[candidate.CategoryID]
		if name == "" {
			name = models.FallbackCategory(candidate.Direction).Name
		}
		rows = append(rows, exportRow{
			Date:        candidate.Date.Format("02.01.2006"),
			Amount:      candidate.Amount.StringFixed(2),
			Direction:   string(candidate.Direction),
			Description: candidate.Description,
			Category:    name,
			Source:      string(candidate.Source),
		})
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if err := out.Close(); err != nil {
			root.Log.WithError(err).Warn("failed to close output file")
		}
	}()

	if err := gocsv.MarshalFile(&rows, out); err != nil {
		return fmt.Errorf("failed to write accepted transactions: %w", err)
	}
	root.Log.Info("accepted transactions exported",
		logging.Field{Key: logging.FieldCount, Value: len(rows)},
		logging.Field{Key: "file", Value: path})
	return nil
}
