// Package parse handles the free-text capture command
package parse

import (
	"fmt"
	"strings"

	"financeos/engine/cmd/root"

	"github.com/spf13/cobra"
)

// Cmd represents the parse command
var Cmd = &cobra.Command{
	Use:   "parse [text]",
	Short: "Capture a free-text money message as a transaction",
	Long: `Parse a message like "витратив 250 грн на каву" into a structured
transaction candidate, classify it and store it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: parseFunc,
}

func parseFunc(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	outcome, err := root.App.GetEngine().RecordUtterance(cmd.Context(), root.UserID, text)
	if err != nil {
		return err
	}

	if outcome.NeedsClarification {
		fmt.Println(outcome.Clarification)
		return nil
	}

	fmt.Printf("%s %s → %s (впевненість %.2f)\n",
		outcome.Candidate.Amount.StringFixed(2),
		outcome.Candidate.Direction,
		outcome.Category.Category,
		outcome.Candidate.Confidence)
	if outcome.Confirmation != "" {
		fmt.Println(outcome.Confirmation)
	}
	return nil
}
