// Package ask handles the advisory question command
package ask

import (
	"fmt"
	"strings"

	"financeos/engine/cmd/root"

	"github.com/spf13/cobra"
)

// Cmd represents the ask command
var Cmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask an advisory question grounded in your data",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		answer, err := root.App.GetEngine().Ask(cmd.Context(), root.UserID, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Println(answer)
		return nil
	},
}
