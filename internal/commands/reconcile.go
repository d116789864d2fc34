package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/folio-dev/folio/internal/auditlog"
	"github.com/folio-dev/folio/internal/id"
	"github.com/folio-dev/folio/internal/importer"
	"github.com/folio-dev/folio/internal/model"
)

func newReconcileCommand() *cobra.Command {
	var accountName string
	var file string
	var format string
	var commit bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Match a bank statement CSV against an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			if file != "" {
				return runReconcile(cmd, w, accountName, file, format, commit)
			}

			files, err := importer.Scan(w.Dir)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no statement files in %s", filepath.Join(w.Dir, "import"))
			}
			for _, f := range files {
				fmt.Fprintf(cmd.OutOrStdout(), "== %s (%d bytes)\n", f.Name, f.Size)
				if err := runReconcile(cmd, w, accountName, f.Path, format, commit); err != nil {
					return fmt.Errorf("%s: %w", f.Name, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&accountName, "account", "", "account name (required)")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().StringVar(&file, "file", "", "statement CSV file (default: every CSV in import/)")
	cmd.Flags().StringVar(&format, "format", "generic", "statement format")
	cmd.Flags().BoolVar(&commit, "commit", false, "commit a reconciliation cutoff at the last exact match")

	return cmd
}

func runReconcile(cmd *cobra.Command, w *workspace, accountName, file, format string, commit bool) error {
	parser := importer.DefaultRegistry().Get(format)
	if parser == nil {
		return fmt.Errorf("unknown statement format %q", format)
	}

	l := w.Ledger
	account, ok := l.AccountByName(accountName)
	if !ok {
		return fmt.Errorf("unknown account %q", accountName)
	}

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()

	rows, err := parser.Parse(f)
	if err != nil {
		return fmt.Errorf("parsing statement: %w", err)
	}

	statement := importer.ToStatement(rows, account)
	results, err := l.Reconcile(account.ID, statement)
	if err != nil {
		return err
	}

	printResults(cmd, account, results)

	if !commit {
		return nil
	}

	last := lastMatched(results)
	if last == nil {
		return fmt.Errorf("no exact match to commit a cutoff at")
	}
	if err := l.ReconcileAccount(account.ID, *last.MatchedID); err != nil {
		return err
	}

	if err := w.save(fmt.Sprintf("reconcile: %s through %s", account.Name, lastEntryDate(last).Format(flagDateFormat))); err != nil {
		return err
	}
	if err := auditlog.Record(w.Dir, "reconcile_account", "account", id.Short(account.ID), account.Name); err != nil {
		return err
	}
	if err := markStatementProcessed(w.Dir, file); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Reconciled %s through %s\n", account.Name, lastEntryDate(last).Format(flagDateFormat))
	return nil
}

func printResults(cmd *cobra.Command, account model.Account, results []model.MatchResult) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDESCRIPTION\tAMOUNT\tSTATUS\tLEDGER TXN")
	for _, r := range results {
		entry := r.Transaction.EntryForAccount(account.ID)
		if entry == nil {
			continue
		}
		matched := ""
		if r.MatchedID != nil {
			matched = id.Short(*r.MatchedID)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			entry.Date.Format(flagDateFormat), entry.Description, entry.Amount, r.Status, matched)
	}
	tw.Flush()
}

// lastMatched returns the last exact match carrying a ledger transaction, or
// nil when the statement produced none.
func lastMatched(results []model.MatchResult) *model.MatchResult {
	for i := len(results) - 1; i >= 0; i-- {
		if results[i].Status == model.MatchStatusMatched && results[i].MatchedID != nil {
			return &results[i]
		}
	}
	return nil
}

func lastEntryDate(r *model.MatchResult) (d time.Time) {
	if len(r.Transaction.Entries) > 0 {
		d = r.Transaction.Entries[0].Date
	}
	return d
}

// markStatementProcessed moves the statement into import/processed when it
// was picked up from the import directory; files elsewhere stay put.
func markStatementProcessed(dir, file string) error {
	abs, err := filepath.Abs(file)
	if err != nil {
		return err
	}
	if filepath.Dir(abs) != filepath.Join(dir, "import") {
		return nil
	}
	return importer.MarkProcessed(dir, filepath.Base(abs))
}
