package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/folio-dev/folio/internal/auditlog"
)

func newGenerateCommand() *cobra.Command {
	var until string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Project scheduled transactions into the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}

			end := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, w.Config.Generate.HorizonDays)
			if until != "" {
				if end, err = parseFlagDate(until); err != nil {
					return err
				}
			}

			created := w.Ledger.Generate(end)
			if err := w.save(fmt.Sprintf("generate: %d transactions through %s", len(created), end.Format(flagDateFormat))); err != nil {
				return err
			}
			if err := auditlog.Record(w.Dir, "generate", "ledger", "", fmt.Sprintf("%d transactions through %s", len(created), end.Format(flagDateFormat))); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Generated %d transactions through %s\n", len(created), end.Format(flagDateFormat))
			return nil
		},
	}

	cmd.Flags().StringVar(&until, "until", "", "generate through this date (YYYY-MM-DD), default horizon_days from today")

	return cmd
}
