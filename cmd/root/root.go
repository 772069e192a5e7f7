// Package root contains the root command for the application
package root

import (
	"context"
	"fmt"

	"financeos/engine/internal/config"
	"financeos/engine/internal/container"
	"financeos/engine/internal/logging"

	"github.com/spf13/cobra"
)

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.GetLogger()

	// App is the wired dependency container, built in PersistentPreRunE
	App *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "finos",
		Short: "A conversational transaction intelligence engine for personal finance.",
		Long: `finos turns free-text money messages and bank statement exports into
structured transactions, and answers advisory questions grounded in them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			Log.Info("Welcome to finos!")
			Log.Info("Use --help to see available commands")
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()

			cfg, err := config.InitializeConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			App, err = container.NewContainer(context.Background(), cfg)
			if err != nil {
				return fmt.Errorf("failed to wire dependencies: %w", err)
			}
			Log = App.GetLogger()
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if App != nil {
				if err := App.Close(); err != nil {
					Log.WithError(err).Warn("failed to close container")
				}
			}
		},
	}

	// UserID is the acting user for all commands
	UserID string

	// Input and Output are the file flags shared by import/export commands
	Input  string
	Output string
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&UserID, "user", "u", "demo", "Acting user id")
}
