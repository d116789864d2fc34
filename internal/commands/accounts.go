package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/folio-dev/folio/internal/auditlog"
	"github.com/folio-dev/folio/internal/id"
	"github.com/folio-dev/folio/internal/model"
)

func newAccountsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List accounts with their current balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			return runAccountsList(cmd, w)
		},
	}

	cmd.AddCommand(newAccountsAddCommand())
	return cmd
}

func runAccountsList(cmd *cobra.Command, w *workspace) error {
	l := w.Ledger

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tBALANCE")
	for _, a := range l.Accounts() {
		balance, err := l.AccountBalance(a.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", id.Short(a.ID), a.Name, a.Type, balance)
	}
	return tw.Flush()
}

func newAccountsAddCommand() *cobra.Command {
	var name string
	var accountType string
	var balance string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(cmd)
			if err != nil {
				return err
			}

			starting := decimal.Zero
			if balance != "" {
				if starting, err = decimal.NewFromString(balance); err != nil {
					return fmt.Errorf("invalid balance %q: %w", balance, err)
				}
			}

			at := model.AccountType(accountType)
			switch at {
			case model.AccountTypeAsset, model.AccountTypeLiability, model.AccountTypeRevenue, model.AccountTypeExpense, model.AccountTypeEquity:
			default:
				return fmt.Errorf("unknown account type %q", accountType)
			}

			account := model.NewAccount(name, at)
			account.StartingBalance = starting
			w.Ledger.AddAccount(account)

			if err := w.save("accounts: add " + name); err != nil {
				return err
			}
			if err := auditlog.Record(w.Dir, "add_account", "account", id.Short(account.ID), name); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added %s account %q (%s)\n", at, name, id.Short(account.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "account name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&accountType, "type", "asset", "account type (asset, liability, revenue, expense, equity)")
	cmd.Flags().StringVar(&balance, "balance", "", "starting balance")

	return cmd
}
