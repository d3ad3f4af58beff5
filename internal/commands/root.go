package commands

import (
	"github.com/spf13/cobra"

	"github.com/kopolinfo/budget/internal/buildinfo"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "budget",
		Short:   "Bank statement import ledger",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "budget.yaml", "path to the config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newInitCommand(opts),
		newImportCommand(opts),
		newReverseCommand(opts),
		newRecategorizeCommand(opts),
		newImportsCommand(opts),
		newServeCommand(opts),
	)

	return rootCmd
}
