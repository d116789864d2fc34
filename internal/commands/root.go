package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/folio-dev/folio/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "folio",
		Short:   "Plain-file double-entry ledger with scheduled projections",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringP("dir", "d", ".", "ledger directory")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newShowCommand())
	rootCmd.AddCommand(newAccountsCommand())
	rootCmd.AddCommand(newGenerateCommand())
	rootCmd.AddCommand(newReconcileCommand())
	rootCmd.AddCommand(newAuditCommand())

	return rootCmd
}
