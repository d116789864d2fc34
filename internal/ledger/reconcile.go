package ledger

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/folio-dev/folio/internal/model"
)

// Reconcile classifies a batch of externally supplied transactions (a bank
// statement) against the ledger's transactions for one account.
//
// Candidates are consumed in tiers: an exact match on date, amount, side and
// running balance; then a fuzzy match where at least two of {date within one
// day, amount equal, description equal} hold, classified Mismatch when the
// balances disagree and PartialMatch otherwise. A statement transaction with
// no qualifying candidate is Unmatched and consumes nothing.
//
// A post-pass promotes each run of consecutive Mismatch results to
// PartialMatch once a Matched or PartialMatch follows it: a later
// realignment retroactively excuses earlier balance drift. An Unmatched
// result clears the pending run; drift across a genuine gap stays Mismatch.
func (l *Ledger) Reconcile(accountID uuid.UUID, external []model.Transaction) ([]model.MatchResult, error) {
	candidates, err := l.AccountTransactions(accountID)
	if err != nil {
		return nil, err
	}

	var statement []model.Transaction
	for _, t := range external {
		if t.InvolvesAccount(accountID) {
			statement = append(statement, t.Clone())
		}
	}
	sort.SliceStable(statement, func(i, j int) bool {
		return statement[i].EntryForAccount(accountID).Date.Before(statement[j].EntryForAccount(accountID).Date)
	})

	consumed := make([]bool, len(candidates))
	results := make([]model.MatchResult, 0, len(statement))
	for _, ext := range statement {
		results = append(results, l.matchOne(accountID, ext, candidates, consumed))
	}

	promoteMismatchRuns(results)
	return results, nil
}

func (l *Ledger) matchOne(accountID uuid.UUID, ext model.Transaction, candidates []model.Transaction, consumed []bool) model.MatchResult {
	extEntry := ext.EntryForAccount(accountID)

	for i, cand := range candidates {
		if consumed[i] {
			continue
		}
		candEntry := cand.EntryForAccount(accountID)
		if extEntry.Date.Equal(candEntry.Date) &&
			extEntry.Amount.Equal(candEntry.Amount) &&
			extEntry.Side == candEntry.Side &&
			extEntry.Balance != nil && candEntry.Balance != nil &&
			extEntry.Balance.Equal(*candEntry.Balance) {
			consumed[i] = true
			matchedID := cand.ID
			return model.MatchResult{
				Transaction:     ext,
				Status:          model.MatchStatusMatched,
				MatchedID:       &matchedID,
				ExpectedBalance: candEntry.Balance,
			}
		}
	}

	for i, cand := range candidates {
		if consumed[i] {
			continue
		}
		candEntry := cand.EntryForAccount(accountID)

		score := 0
		if withinOneDay(extEntry.Date, candEntry.Date) {
			score++
		}
		if extEntry.Amount.Equal(candEntry.Amount) {
			score++
		}
		if extEntry.Description == candEntry.Description {
			score++
		}
		if score < 2 {
			continue
		}

		consumed[i] = true
		matchedID := cand.ID
		status := model.MatchStatusPartial
		if extEntry.Balance != nil && candEntry.Balance != nil && !extEntry.Balance.Equal(*candEntry.Balance) {
			status = model.MatchStatusMismatch
		}
		return model.MatchResult{
			Transaction:     ext,
			Status:          status,
			MatchedID:       &matchedID,
			ExpectedBalance: candEntry.Balance,
		}
	}

	return model.MatchResult{Transaction: ext, Status: model.MatchStatusUnmatched}
}

func withinOneDay(a, b time.Time) bool {
	return !a.After(b.AddDate(0, 0, 1)) && !b.After(a.AddDate(0, 0, 1))
}

func promoteMismatchRuns(results []model.MatchResult) {
	var pending []int
	for i := range results {
		switch results[i].Status {
		case model.MatchStatusMismatch:
			pending = append(pending, i)
		case model.MatchStatusMatched, model.MatchStatusPartial:
			for _, j := range pending {
				results[j].Status = model.MatchStatusPartial
			}
			pending = pending[:0]
		case model.MatchStatusUnmatched:
			pending = pending[:0]
		}
	}
}

// ReconcileAccount commits a reconciliation cutoff at the given transaction
// and marks every entry for the account up to and including it as
// reconciled. Cutoffs only move forward: committing at or before the current
// cutoff position is a no-op, so the call is idempotent.
func (l *Ledger) ReconcileAccount(accountID, transactionID uuid.UUID) error {
	ordered, err := l.AccountTransactions(accountID)
	if err != nil {
		return err
	}

	idx := positionOf(ordered, transactionID)
	if idx < 0 {
		return Errorf("transaction %s not found for account %s", transactionID, accountID)
	}
	entry := ordered[idx].EntryForAccount(accountID)
	if entry == nil || entry.Balance == nil {
		return Errorf("transaction %s has no computed balance for account %s", transactionID, accountID)
	}

	account := l.accounts[accountID]
	if account.Cutoff != nil {
		if cur := positionOf(ordered, account.Cutoff.TransactionID); cur >= idx {
			return nil
		}
	}

	account.Cutoff = &model.Cutoff{
		Date:          entry.Date,
		Balance:       *entry.Balance,
		TransactionID: transactionID,
	}
	l.accounts[accountID] = account

	included := make(map[uuid.UUID]bool, idx+1)
	for _, t := range ordered[:idx+1] {
		included[t.ID] = true
	}
	for i := range l.transactions {
		if !included[l.transactions[i].ID] {
			continue
		}
		for j := range l.transactions[i].Entries {
			if l.transactions[i].Entries[j].AccountID == accountID {
				l.transactions[i].Entries[j].Reconciled = true
			}
		}
	}
	return nil
}

func positionOf(txns []model.Transaction, transactionID uuid.UUID) int {
	for i, t := range txns {
		if t.ID == transactionID {
			return i
		}
	}
	return -1
}
