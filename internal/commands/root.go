package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/stmtimport/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "stmtimport",
		Short:   "Import bank statements into a transaction ledger",
		Version: buildinfo.Summary(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newBanksCommand())
	rootCmd.AddCommand(newHistoryCommand())
	rootCmd.AddCommand(newTransactionsCommand())
	rootCmd.AddCommand(newCategoriesCommand())

	return rootCmd
}
