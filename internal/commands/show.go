package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/folio-dev/folio/internal/id"
)

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [account]",
		Short: "Show the ledger summary, or one account's entries with running balances",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return runShowSummary(cmd, w)
			}
			return runShowAccount(cmd, w, args[0])
		},
	}
}

func runShowSummary(cmd *cobra.Command, w *workspace) error {
	l := w.Ledger
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Ledger:       %s\n", l.Name())
	fmt.Fprintf(out, "Accounts:     %d\n", len(l.Accounts()))
	fmt.Fprintf(out, "Transactions: %d\n", len(l.Transactions()))
	fmt.Fprintf(out, "Schedules:    %d\n", len(l.Schedules()))
	if h := l.Horizon(); h != nil {
		fmt.Fprintf(out, "Generated to: %s\n", h.Format(flagDateFormat))
	}
	return nil
}

func runShowAccount(cmd *cobra.Command, w *workspace, name string) error {
	l := w.Ledger
	account, ok := l.AccountByName(name)
	if !ok {
		return fmt.Errorf("unknown account %q", name)
	}

	entries, err := l.AccountEntries(account.ID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s), starting balance %s\n\n", account.Name, account.Type, account.StartingBalance)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDESCRIPTION\tSIDE\tAMOUNT\tBALANCE\tTXN")
	for _, e := range entries {
		marker := ""
		if e.Reconciled {
			marker = " *"
		}
		balance := ""
		if e.Balance != nil {
			balance = e.Balance.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s%s\n",
			e.Date.Format(flagDateFormat), e.Description, e.Side, e.Amount, balance, id.Short(e.TransactionID), marker)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if cutoff := account.Cutoff; cutoff != nil {
		fmt.Fprintf(out, "\nReconciled through %s at balance %s\n", cutoff.Date.Format(flagDateFormat), cutoff.Balance)
	}
	return nil
}
