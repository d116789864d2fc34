package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-dev/folio/internal/id"
	"github.com/folio-dev/folio/internal/model"
)

// statementTransaction builds an externally supplied transaction as a bank
// statement import would: one entry for the account, optionally carrying the
// statement's claimed running balance.
func statementTransaction(accountID uuid.UUID, day time.Time, description string, amount decimal.Decimal, side model.Side, balance *decimal.Decimal) model.Transaction {
	txnID := id.New()
	return model.Transaction{
		ID:     txnID,
		Status: model.StatusRecorded,
		Entries: []model.Entry{{
			ID:            id.New(),
			TransactionID: txnID,
			Date:          day,
			Description:   description,
			AccountID:     accountID,
			Side:          side,
			Amount:        amount,
			Balance:       balance,
		}},
	}
}

func balPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestReconcileExactMatch(t *testing.T) {
	l, a1, a2 := setupLedger(t)
	txn := buildTransaction(a1.ID, a2.ID, date(2022, 6, 4), dec("100"))
	require.NoError(t, l.AddTransaction(txn))

	ext := statementTransaction(a1.ID, date(2022, 6, 4), "received moneys", dec("100"), model.Debit, balPtr("100"))
	results, err := l.Reconcile(a1.ID, []model.Transaction{ext})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, model.MatchStatusMatched, results[0].Status)
	require.NotNil(t, results[0].MatchedID)
	assert.Equal(t, txn.ID, *results[0].MatchedID)
	require.NotNil(t, results[0].ExpectedBalance)
	assert.True(t, dec("100").Equal(*results[0].ExpectedBalance))
}

func TestReconcilePartialMatchTwoOfThree(t *testing.T) {
	l, a1, a2 := setupLedger(t)
	txn := buildTransaction(a1.ID, a2.ID, date(2022, 6, 4), dec("100"))
	require.NoError(t, l.AddTransaction(txn))

	// Date one day off, amount equal, description different: 2 of 3.
	ext := statementTransaction(a1.ID, date(2022, 6, 5), "POS PURCHASE", dec("100"), model.Debit, nil)
	results, err := l.Reconcile(a1.ID, []model.Transaction{ext})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, model.MatchStatusPartial, results[0].Status)
	require.NotNil(t, results[0].MatchedID)
	assert.Equal(t, txn.ID, *results[0].MatchedID)
}

func TestReconcileUnmatched(t *testing.T) {
	l, a1, a2 := setupLedger(t)
	require.NoError(t, l.AddTransaction(buildTransaction(a1.ID, a2.ID, date(2022, 6, 4), dec("100"))))

	// Date far off and amount different: at most 1 of 3 holds.
	ext := statementTransaction(a1.ID, date(2022, 8, 1), "POS PURCHASE", dec("55"), model.Debit, nil)
	results, err := l.Reconcile(a1.ID, []model.Transaction{ext})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, model.MatchStatusUnmatched, results[0].Status)
	assert.Nil(t, results[0].MatchedID)

	// Nothing was consumed: the candidate is still available.
	again, err := l.Reconcile(a1.ID, []model.Transaction{
		statementTransaction(a1.ID, date(2022, 6, 4), "received moneys", dec("100"), model.Debit, balPtr("100")),
	})
	require.NoError(t, err)
	assert.Equal(t, model.MatchStatusMatched, again[0].Status)
}

// A balance mismatch followed by a clean match is retroactively promoted:
// the later realignment excuses the earlier drift.
func TestReconcileMismatchPromotion(t *testing.T) {
	l, a1, a2 := setupLedger(t)
	t1 := buildTransaction(a1.ID, a2.ID, date(2022, 6, 4), dec("100"))
	t2 := buildTransaction(a1.ID, a2.ID, date(2022, 6, 5), dec("50"))
	require.NoError(t, l.AddTransaction(t1))
	require.NoError(t, l.AddTransaction(t2))

	batch := []model.Transaction{
		// Ledger balance after t1 is 100; the statement claims 90.
		statementTransaction(a1.ID, date(2022, 6, 4), "received moneys", dec("100"), model.Debit, balPtr("90")),
		// Ledger balance after t2 is 150; the statement agrees.
		statementTransaction(a1.ID, date(2022, 6, 5), "received moneys", dec("50"), model.Debit, balPtr("150")),
	}

	results, err := l.Reconcile(a1.ID, batch)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, model.MatchStatusPartial, results[0].Status)
	assert.Equal(t, model.MatchStatusMatched, results[1].Status)
}

// An Unmatched result breaks the pending mismatch run: drift across a
// genuine gap earns no retroactive credit.
func TestReconcileUnmatchedClearsPromotionRun(t *testing.T) {
	l, a1, a2 := setupLedger(t)
	t1 := buildTransaction(a1.ID, a2.ID, date(2022, 6, 4), dec("100"))
	t2 := buildTransaction(a1.ID, a2.ID, date(2022, 6, 10), dec("50"))
	require.NoError(t, l.AddTransaction(t1))
	require.NoError(t, l.AddTransaction(t2))

	batch := []model.Transaction{
		statementTransaction(a1.ID, date(2022, 6, 4), "received moneys", dec("100"), model.Debit, balPtr("90")),
		statementTransaction(a1.ID, date(2022, 6, 6), "UNKNOWN FEE", dec("7"), model.Debit, nil),
		statementTransaction(a1.ID, date(2022, 6, 10), "received moneys", dec("50"), model.Debit, balPtr("150")),
	}

	results, err := l.Reconcile(a1.ID, batch)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, model.MatchStatusMismatch, results[0].Status)
	assert.Equal(t, model.MatchStatusUnmatched, results[1].Status)
	assert.Equal(t, model.MatchStatusMatched, results[2].Status)
}

func TestReconcileIgnoresOtherAccounts(t *testing.T) {
	l, a1, a2 := setupLedger(t)
	require.NoError(t, l.AddTransaction(buildTransaction(a1.ID, a2.ID, date(2022, 6, 4), dec("100"))))

	other := statementTransaction(a2.ID, date(2022, 6, 4), "received moneys", dec("100"), model.Credit, nil)
	results, err := l.Reconcile(a1.ID, []model.Transaction{other})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestReconcileAccountCommitsCutoff(t *testing.T) {
	l, a1, a2 := setupLedger(t)
	t1 := buildTransaction(a1.ID, a2.ID, date(2022, 6, 4), dec("100"))
	t2 := buildTransaction(a1.ID, a2.ID, date(2022, 6, 5), dec("50"))
	require.NoError(t, l.AddTransaction(t1))
	require.NoError(t, l.AddTransaction(t2))

	require.NoError(t, l.ReconcileAccount(a1.ID, t1.ID))

	account, _ := l.Account(a1.ID)
	require.NotNil(t, account.Cutoff)
	assert.Equal(t, t1.ID, account.Cutoff.TransactionID)
	assert.Equal(t, date(2022, 6, 4), account.Cutoff.Date)
	assert.True(t, dec("100").Equal(account.Cutoff.Balance))

	// Entries up to the cutoff are reconciled for this account only.
	stored1, _ := l.Transaction(t1.ID)
	assert.True(t, stored1.EntryForAccount(a1.ID).Reconciled)
	assert.False(t, stored1.EntryForAccount(a2.ID).Reconciled)
	stored2, _ := l.Transaction(t2.ID)
	assert.False(t, stored2.EntryForAccount(a1.ID).Reconciled)
}

func TestReconcileAccountCutoffMonotonicity(t *testing.T) {
	l, a1, a2 := setupLedger(t)
	var txns []model.Transaction
	for d := 1; d <= 4; d++ {
		txn := buildTransaction(a1.ID, a2.ID, date(2022, 6, d), dec("10"))
		require.NoError(t, l.AddTransaction(txn))
		txns = append(txns, txn)
	}

	require.NoError(t, l.ReconcileAccount(a1.ID, txns[3].ID))
	// Committing at an earlier position is a no-op.
	require.NoError(t, l.ReconcileAccount(a1.ID, txns[1].ID))

	account, _ := l.Account(a1.ID)
	assert.Equal(t, txns[3].ID, account.Cutoff.TransactionID)

	// Repeating the same commit is also a no-op.
	require.NoError(t, l.ReconcileAccount(a1.ID, txns[3].ID))
	account, _ = l.Account(a1.ID)
	assert.Equal(t, txns[3].ID, account.Cutoff.TransactionID)
	assert.True(t, dec("40").Equal(account.Cutoff.Balance))
}

func TestReconcileAccountUnknownTransaction(t *testing.T) {
	l, a1, _ := setupLedger(t)
	err := l.ReconcileAccount(a1.ID, uuid.New())
	assert.ErrorContains(t, err, "not found")
}

func TestReconcileAccountUnknownAccount(t *testing.T) {
	l, _, _ := setupLedger(t)
	err := l.ReconcileAccount(uuid.New(), uuid.New())
	assert.ErrorContains(t, err, "not found")
}
