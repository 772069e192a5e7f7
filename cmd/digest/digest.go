// Package digest handles the weekly digest command
package digest

import (
	"fmt"

	"financeos/engine/cmd/root"

	"github.com/spf13/cobra"
)

// Cmd represents the digest command
var Cmd = &cobra.Command{
	Use:   "digest",
	Short: "Print the weekly activity digest",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := root.App.GetEngine().WeeklyDigest(cmd.Context(), root.UserID)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	},
}
