package ledger

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/folio-dev/folio/internal/model"
)

// AccountTransactions returns copies of the transactions involving the
// account, ordered by the account-specific entry's date with insertion order
// breaking ties, each entry for the account annotated with the running
// balance. The fold starts from the account's starting balance and adds the
// amount when the entry's side matches the account's normal balance side,
// subtracting otherwise. Source transactions are never mutated by this read.
func (l *Ledger) AccountTransactions(accountID uuid.UUID) ([]model.Transaction, error) {
	account, ok := l.accounts[accountID]
	if !ok {
		return nil, Errorf("account not found: %s", accountID)
	}

	var txns []model.Transaction
	for _, t := range l.transactions {
		if t.InvolvesAccount(accountID) {
			txns = append(txns, t.Clone())
		}
	}

	// Stable: same-day transactions keep insertion order. Sorting by date
	// alone would leave same-day ordering to the comparator's whim.
	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].EntryForAccount(accountID).Date.Before(txns[j].EntryForAccount(accountID).Date)
	})

	balance := account.StartingBalance
	for i := range txns {
		for j := range txns[i].Entries {
			e := &txns[i].Entries[j]
			if e.AccountID != accountID {
				continue
			}
			if e.Side == account.NormalBalance() {
				balance = balance.Add(e.Amount)
			} else {
				balance = balance.Sub(e.Amount)
			}
			b := balance
			e.Balance = &b
		}
	}

	return txns, nil
}

// AccountEntries returns the account's balance-annotated entries in the same
// order AccountTransactions produces them.
func (l *Ledger) AccountEntries(accountID uuid.UUID) ([]model.Entry, error) {
	txns, err := l.AccountTransactions(accountID)
	if err != nil {
		return nil, err
	}
	var entries []model.Entry
	for _, t := range txns {
		entries = append(entries, t.AccountEntries(accountID)...)
	}
	return entries, nil
}

// AccountBalance returns the account's balance after its last entry, or the
// starting balance if it has none.
func (l *Ledger) AccountBalance(accountID uuid.UUID) (decimal.Decimal, error) {
	entries, err := l.AccountEntries(accountID)
	if err != nil {
		return decimal.Zero, err
	}
	if len(entries) == 0 {
		return l.accounts[accountID].StartingBalance, nil
	}
	return *entries[len(entries)-1].Balance, nil
}
