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

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func setupLedger(t *testing.T) (*Ledger, model.Account, model.Account) {
	t.Helper()
	l := New("test books")
	a1 := model.NewAccount("Savings Account 1", model.AccountTypeAsset)
	a2 := model.NewAccount("Savings Account 2", model.AccountTypeAsset)
	l.AddAccount(a1)
	l.AddAccount(a2)
	return l, a1, a2
}

func buildTransaction(debitAccount, creditAccount uuid.UUID, day time.Time, amount decimal.Decimal) model.Transaction {
	txnID := id.New()
	return model.Transaction{
		ID:     txnID,
		Status: model.StatusRecorded,
		Entries: []model.Entry{
			{
				ID:            id.New(),
				TransactionID: txnID,
				Date:          day,
				Description:   "received moneys",
				AccountID:     debitAccount,
				Side:          model.Debit,
				Amount:        amount,
			},
			{
				ID:            id.New(),
				TransactionID: txnID,
				Date:          day,
				Description:   "received moneys",
				AccountID:     creditAccount,
				Side:          model.Credit,
				Amount:        amount,
			},
		},
	}
}

func TestAddAccountScrubsCutoff(t *testing.T) {
	l := New("books")
	a := model.NewAccount("Checking", model.AccountTypeAsset)
	a.Cutoff = &model.Cutoff{Date: date(2023, 1, 1), Balance: dec("10"), TransactionID: id.New()}

	l.AddAccount(a)

	stored, ok := l.Account(a.ID)
	require.True(t, ok)
	assert.Nil(t, stored.Cutoff)
}

func TestAddAccountDuplicateIsNoOp(t *testing.T) {
	l := New("books")
	a := model.NewAccount("Checking", model.AccountTypeAsset)
	l.AddAccount(a)

	dupe := a
	dupe.Name = "Renamed"
	l.AddAccount(dupe)

	stored, _ := l.Account(a.ID)
	assert.Equal(t, "Checking", stored.Name)
	assert.Len(t, l.Accounts(), 1)
}

func TestUpdateAccount(t *testing.T) {
	l, a1, _ := setupLedger(t)

	a1.Name = "Renamed Savings"
	require.NoError(t, l.UpdateAccount(a1))
	stored, _ := l.Account(a1.ID)
	assert.Equal(t, "Renamed Savings", stored.Name)
}

func TestUpdateAccountUnknown(t *testing.T) {
	l, _, _ := setupLedger(t)
	err := l.UpdateAccount(model.NewAccount("ghost", model.AccountTypeAsset))
	assert.ErrorContains(t, err, "not found")
}

func TestUpdateAccountRejectsCutoffChange(t *testing.T) {
	l, a1, _ := setupLedger(t)

	a1.Cutoff = &model.Cutoff{Date: date(2023, 1, 1), Balance: dec("10"), TransactionID: id.New()}
	err := l.UpdateAccount(a1)
	assert.ErrorContains(t, err, "cutoff")
}

func TestUpdateAccountRejectsTypeChangeWithTransactions(t *testing.T) {
	l, a1, a2 := setupLedger(t)
	require.NoError(t, l.AddTransaction(buildTransaction(a1.ID, a2.ID, date(2022, 6, 4), dec("100"))))

	a1.Type = model.AccountTypeLiability
	err := l.UpdateAccount(a1)
	assert.ErrorContains(t, err, "type cannot change")

	// Without transactions the type is still mutable.
	a3 := model.NewAccount("Empty", model.AccountTypeAsset)
	l.AddAccount(a3)
	a3.Type = model.AccountTypeExpense
	assert.NoError(t, l.UpdateAccount(a3))
}

func TestUpdateAccountRejectsStartingBalanceChangeAfterCutoff(t *testing.T) {
	l, a1, a2 := setupLedger(t)
	txn := buildTransaction(a1.ID, a2.ID, date(2022, 6, 4), dec("100"))
	require.NoError(t, l.AddTransaction(txn))
	require.NoError(t, l.ReconcileAccount(a1.ID, txn.ID))

	stored, _ := l.Account(a1.ID)
	stored.StartingBalance = dec("500")
	err := l.UpdateAccount(stored)
	assert.ErrorContains(t, err, "starting balance")
}

func TestDeleteAccount(t *testing.T) {
	l, a1, a2 := setupLedger(t)
	require.NoError(t, l.AddTransaction(buildTransaction(a1.ID, a2.ID, date(2022, 6, 4), dec("100"))))

	err := l.DeleteAccount(a1.ID)
	assert.ErrorContains(t, err, "cannot be deleted")

	a3 := model.NewAccount("Unused", model.AccountTypeExpense)
	l.AddAccount(a3)
	assert.NoError(t, l.DeleteAccount(a3.ID))
	assert.ErrorContains(t, l.DeleteAccount(a3.ID), "not found")
}

func TestAddTransaction(t *testing.T) {
	l, a1, a2 := setupLedger(t)
	txn := buildTransaction(a1.ID, a2.ID, date(2022, 6, 4), dec("10000"))

	require.NoError(t, l.AddTransaction(txn))

	stored, ok := l.Transaction(txn.ID)
	require.True(t, ok)
	assert.Equal(t, txn.ID, stored.ID)
	assert.Len(t, l.Transactions(), 1)
}

func TestAddTransactionUnknownAccount(t *testing.T) {
	l, a1, _ := setupLedger(t)
	txn := buildTransaction(a1.ID, uuid.New(), date(2022, 6, 4), dec("100"))

	err := l.AddTransaction(txn)
	assert.ErrorContains(t, err, "unknown account")
	assert.Empty(t, l.Transactions())
}

func TestAddTransactionDoubleEntryGate(t *testing.T) {
	l, a1, _ := setupLedger(t)
	l.SetSettings(model.Settings{RequireDoubleEntry: true})

	txnID := id.New()
	single := model.Transaction{
		ID:     txnID,
		Status: model.StatusRecorded,
		Entries: []model.Entry{{
			ID:            id.New(),
			TransactionID: txnID,
			Date:          date(2022, 6, 4),
			AccountID:     a1.ID,
			Side:          model.Debit,
			Amount:        dec("100"),
		}},
	}

	err := l.AddTransaction(single)
	require.ErrorContains(t, err, "at least 2 entries")
	assert.Empty(t, l.Transactions())

	// The single-entry floor applies without the setting.
	l.SetSettings(model.Settings{})
	assert.NoError(t, l.AddTransaction(single))
	assert.ErrorContains(t, l.AddTransaction(model.Transaction{ID: id.New()}), "at least 1")
}

func TestAddTransactionNegativeAmount(t *testing.T) {
	l, a1, a2 := setupLedger(t)
	txn := buildTransaction(a1.ID, a2.ID, date(2022, 6, 4), dec("-5"))

	err := l.AddTransaction(txn)
	assert.ErrorContains(t, err, "negative")
}

func TestAddTransactionRejectsReconciledFlag(t *testing.T) {
	l, a1, a2 := setupLedger(t)
	txn := buildTransaction(a1.ID, a2.ID, date(2022, 6, 4), dec("5"))
	txn.Entries[0].Reconciled = true

	err := l.AddTransaction(txn)
	assert.ErrorContains(t, err, "reconciled")
	assert.Empty(t, l.Transactions())
}

func TestAddTransactionBeforeCutoff(t *testing.T) {
	l, a1, a2 := setupLedger(t)
	txn := buildTransaction(a1.ID, a2.ID, date(2022, 6, 4), dec("100"))
	require.NoError(t, l.AddTransaction(txn))
	require.NoError(t, l.ReconcileAccount(a1.ID, txn.ID))

	backdated := buildTransaction(a1.ID, a2.ID, date(2022, 6, 3), dec("50"))
	err := l.AddTransaction(backdated)
	assert.ErrorContains(t, err, "precedes the reconciliation cutoff")

	// Dated exactly on the cutoff is allowed.
	onCutoff := buildTransaction(a2.ID, a1.ID, date(2022, 6, 4), dec("50"))
	assert.NoError(t, l.AddTransaction(onCutoff))
}

func TestUpdateTransaction(t *testing.T) {
	l, a1, a2 := setupLedger(t)
	txn := buildTransaction(a1.ID, a2.ID, date(2022, 6, 4), dec("100"))
	require.NoError(t, l.AddTransaction(txn))

	txn.Entries[0].Description = "corrected"
	require.NoError(t, l.UpdateTransaction(txn))
	stored, _ := l.Transaction(txn.ID)
	assert.Equal(t, "corrected", stored.Entries[0].Description)

	assert.ErrorContains(t, l.UpdateTransaction(buildTransaction(a1.ID, a2.ID, date(2022, 6, 4), dec("1"))), "not found")
}

func TestUpdateTransactionReconciledIsImmutable(t *testing.T) {
	l, a1, a2 := setupLedger(t)
	txn := buildTransaction(a1.ID, a2.ID, date(2022, 6, 4), dec("100"))
	require.NoError(t, l.AddTransaction(txn))
	require.NoError(t, l.ReconcileAccount(a1.ID, txn.ID))

	txn.Entries[0].Description = "tampered"
	err := l.UpdateTransaction(txn)
	assert.ErrorContains(t, err, "reconciled entries")

	assert.ErrorContains(t, l.DeleteTransaction(txn.ID), "reconciled entries")
}

func TestDeleteTransaction(t *testing.T) {
	l, a1, a2 := setupLedger(t)
	txn := buildTransaction(a1.ID, a2.ID, date(2022, 6, 4), dec("100"))
	require.NoError(t, l.AddTransaction(txn))

	require.NoError(t, l.DeleteTransaction(txn.ID))
	assert.Empty(t, l.Transactions())
	assert.ErrorContains(t, l.DeleteTransaction(txn.ID), "not found")
}

func buildSchedule(a1, a2 uuid.UUID) model.Schedule {
	s := model.Schedule{
		ID:        id.New(),
		Name:      "rent",
		Period:    model.PeriodMonths,
		Frequency: 1,
		StartDate: date(2022, 3, 11),
	}
	s.Entries = append(s.Entries,
		model.ScheduleEntry{ScheduleID: s.ID, Description: "rent", AccountID: a1, Side: model.Debit, Amount: dec("100")},
		model.ScheduleEntry{ScheduleID: s.ID, Description: "rent", AccountID: a2, Side: model.Credit, Amount: dec("100")},
	)
	return s
}

func TestAddScheduleValidation(t *testing.T) {
	l, a1, a2 := setupLedger(t)

	empty := model.Schedule{ID: id.New(), Name: "empty", Period: model.PeriodMonths, Frequency: 1, StartDate: date(2022, 1, 1)}
	assert.ErrorContains(t, l.AddSchedule(empty), "at least one entry")

	bad := buildSchedule(a1.ID, uuid.New())
	assert.ErrorContains(t, l.AddSchedule(bad), "unknown account")

	unbound := buildSchedule(a1.ID, a2.ID)
	unbound.ModifierBindings = []model.ModifierBinding{{ModifierID: uuid.New()}}
	assert.ErrorContains(t, l.AddSchedule(unbound), "unknown modifier")

	good := buildSchedule(a1.ID, a2.ID)
	require.NoError(t, l.AddSchedule(good))
	_, ok := l.Schedule(good.ID)
	assert.True(t, ok)
}

// A misspelled period must be rejected up front: if it slipped through,
// date advancement could never move past the start date and generation
// would loop on the same occurrence forever.
func TestAddScheduleRejectsUnknownPeriod(t *testing.T) {
	l, a1, a2 := setupLedger(t)

	s := buildSchedule(a1.ID, a2.ID)
	s.Period = model.Period("monthly")
	assert.ErrorContains(t, l.AddSchedule(s), `unknown schedule period "monthly"`)
	assert.Empty(t, l.Schedules())

	txns := l.Generate(date(2023, 2, 1))
	assert.Empty(t, txns)
}

func TestUpdateScheduleRejectsUnknownPeriod(t *testing.T) {
	l, a1, a2 := setupLedger(t)
	s := buildSchedule(a1.ID, a2.ID)
	require.NoError(t, l.AddSchedule(s))

	s.Period = model.Period("fortnights")
	assert.ErrorContains(t, l.UpdateSchedule(s), "unknown schedule period")

	got, ok := l.Schedule(s.ID)
	require.True(t, ok)
	assert.Equal(t, model.PeriodMonths, got.Period)
}

func TestPutModifierValidation(t *testing.T) {
	l, _, _ := setupLedger(t)

	m := model.Modifier{ID: id.New(), Name: "bump", Period: model.Period("yearly"), Frequency: 1, StartDate: date(2022, 1, 1)}
	assert.ErrorContains(t, l.PutModifier(m), `unknown modifier period "yearly"`)

	m.Period = model.PeriodYears
	m.Frequency = 0
	assert.ErrorContains(t, l.PutModifier(m), "frequency must be positive")

	m.Frequency = 1
	require.NoError(t, l.PutModifier(m))
	_, ok := l.Modifier(m.ID)
	assert.True(t, ok)
}

func TestUpdateScheduleUnknown(t *testing.T) {
	l, a1, a2 := setupLedger(t)
	s := buildSchedule(a1.ID, a2.ID)
	assert.ErrorContains(t, l.UpdateSchedule(s), "not found")
}

func TestDeleteScheduleWithTransactions(t *testing.T) {
	l, a1, a2 := setupLedger(t)
	s := buildSchedule(a1.ID, a2.ID)
	require.NoError(t, l.AddSchedule(s))
	l.Generate(date(2022, 3, 11))

	assert.ErrorContains(t, l.DeleteSchedule(s.ID), "cannot be deleted")
}

func TestGenerateRecordsProjectedTransactions(t *testing.T) {
	l, a1, a2 := setupLedger(t)
	require.NoError(t, l.AddSchedule(buildSchedule(a1.ID, a2.ID)))

	txns := l.Generate(date(2022, 5, 11))

	require.Len(t, txns, 3) // 3/11, 4/11, 5/11
	assert.Equal(t, model.StatusProjected, txns[0].Status)
	assert.Len(t, l.Transactions(), 3)
	h := l.Horizon()
	require.NotNil(t, h)
	assert.Equal(t, date(2022, 5, 11), *h)
}

func TestGenerateScheduleUnknown(t *testing.T) {
	l, _, _ := setupLedger(t)
	_, err := l.GenerateSchedule(date(2022, 5, 11), uuid.New())
	assert.ErrorContains(t, err, "not found")
}

func TestDeleteModifier(t *testing.T) {
	l, a1, a2 := setupLedger(t)
	m := model.Modifier{ID: id.New(), Name: "bump", Period: model.PeriodYears, Frequency: 1, StartDate: date(2022, 1, 1)}
	require.NoError(t, l.PutModifier(m))

	s := buildSchedule(a1.ID, a2.ID)
	s.ModifierBindings = []model.ModifierBinding{{ModifierID: m.ID}}
	require.NoError(t, l.AddSchedule(s))

	assert.ErrorContains(t, l.DeleteModifier(m.ID), "bound to a schedule")
	assert.ErrorContains(t, l.DeleteModifier(uuid.New()), "not found")
}
