// Package ledger implements the double-entry book of accounts: account and
// transaction mutation with referential and temporal invariants, running
// balance queries, schedule-driven generation, and statement reconciliation.
package ledger

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/folio-dev/folio/internal/id"
	"github.com/folio-dev/folio/internal/model"
	"github.com/folio-dev/folio/internal/scheduler"
)

// Ledger is the aggregate root. All mutation methods assume a single writer;
// callers serialize concurrent access.
type Ledger struct {
	id           uuid.UUID
	name         string
	accounts     map[uuid.UUID]model.Account
	transactions []model.Transaction
	sched        *scheduler.Scheduler
	settings     model.Settings
}

// New creates an empty ledger.
func New(name string) *Ledger {
	return &Ledger{
		id:       id.New(),
		name:     name,
		accounts: make(map[uuid.UUID]model.Account),
		sched:    scheduler.New(),
	}
}

// Restore rebuilds a ledger exactly as persisted. No validation is applied;
// the snapshot is trusted.
func Restore(ledgerID uuid.UUID, name string, accounts []model.Account, transactions []model.Transaction, sched *scheduler.Scheduler, settings model.Settings) *Ledger {
	l := &Ledger{
		id:       ledgerID,
		name:     name,
		accounts: make(map[uuid.UUID]model.Account, len(accounts)),
		sched:    sched,
		settings: settings,
	}
	for _, a := range accounts {
		l.accounts[a.ID] = a
	}
	for _, t := range transactions {
		l.transactions = append(l.transactions, t.Clone())
	}
	return l
}

// ID returns the ledger's identity.
func (l *Ledger) ID() uuid.UUID { return l.id }

// Name returns the ledger's display name.
func (l *Ledger) Name() string { return l.name }

// Rename sets the ledger's display name.
func (l *Ledger) Rename(name string) { l.name = name }

// Settings returns the ledger settings.
func (l *Ledger) Settings() model.Settings { return l.settings }

// SetSettings replaces the ledger settings.
func (l *Ledger) SetSettings(s model.Settings) { l.settings = s }

// Accounts returns all accounts in chart order: type, then name, then id.
// Listing never depends on map iteration order.
func (l *Ledger) Accounts() []model.Account {
	out := make([]model.Account, 0, len(l.accounts))
	for _, a := range l.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type.Order() != out[j].Type.Order() {
			return out[i].Type.Order() < out[j].Type.Order()
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// Account returns the account with the given id.
func (l *Ledger) Account(accountID uuid.UUID) (model.Account, bool) {
	a, ok := l.accounts[accountID]
	return a, ok
}

// AccountByName returns the first account with the given name, in chart order.
func (l *Ledger) AccountByName(name string) (model.Account, bool) {
	for _, a := range l.Accounts() {
		if a.Name == name {
			return a, true
		}
	}
	return model.Account{}, false
}

// AddAccount inserts an account. Any client-supplied reconciliation cutoff is
// discarded: cutoffs are ledger-derived. Adding an id that already exists is
// a silent no-op (idempotent insert), not an error.
func (l *Ledger) AddAccount(a model.Account) {
	a.Cutoff = nil
	if _, ok := l.accounts[a.ID]; ok {
		return
	}
	l.accounts[a.ID] = a
}

// UpdateAccount replaces an account's mutable fields. The reconciliation
// cutoff must match the stored one; the type is frozen once the account has
// transactions; the starting balance is frozen once a cutoff exists.
func (l *Ledger) UpdateAccount(a model.Account) error {
	stored, ok := l.accounts[a.ID]
	if !ok {
		return Errorf("account not found: %s", a.ID)
	}
	if !a.Cutoff.Equal(stored.Cutoff) {
		return Errorf("account %s: reconciliation cutoff can only be set by reconciliation", a.ID)
	}
	if a.Type != stored.Type && l.accountHasTransactions(a.ID) {
		return Errorf("account %s: type cannot change once transactions exist", a.ID)
	}
	if !a.StartingBalance.Equal(stored.StartingBalance) && stored.Cutoff != nil {
		return Errorf("account %s: starting balance cannot change after reconciliation", a.ID)
	}
	a.Cutoff = stored.Cutoff
	l.accounts[a.ID] = a
	return nil
}

// DeleteAccount removes an account that no transaction references.
func (l *Ledger) DeleteAccount(accountID uuid.UUID) error {
	if _, ok := l.accounts[accountID]; !ok {
		return Errorf("account not found: %s", accountID)
	}
	if l.accountHasTransactions(accountID) {
		return Errorf("account %s has transactions and cannot be deleted", accountID)
	}
	delete(l.accounts, accountID)
	return nil
}

func (l *Ledger) accountHasTransactions(accountID uuid.UUID) bool {
	for _, t := range l.transactions {
		if t.InvolvesAccount(accountID) {
			return true
		}
	}
	return false
}

// Transactions returns copies of all transactions in insertion order.
func (l *Ledger) Transactions() []model.Transaction {
	out := make([]model.Transaction, 0, len(l.transactions))
	for _, t := range l.transactions {
		out = append(out, t.Clone())
	}
	return out
}

// Transaction returns a copy of the transaction with the given id.
func (l *Ledger) Transaction(transactionID uuid.UUID) (model.Transaction, bool) {
	for _, t := range l.transactions {
		if t.ID == transactionID {
			return t.Clone(), true
		}
	}
	return model.Transaction{}, false
}

// AddTransaction validates and records a transaction. Validation runs before
// any state changes; a rejected call leaves the ledger untouched.
func (l *Ledger) AddTransaction(t model.Transaction) error {
	if violations := l.validateTransaction(t); len(violations) > 0 {
		return validationError(violations)
	}
	l.transactions = append(l.transactions, scrub(t))
	return nil
}

// UpdateTransaction replaces a recorded transaction after re-validation.
// A transaction with any reconciled entry is immutable.
func (l *Ledger) UpdateTransaction(t model.Transaction) error {
	idx := -1
	for i := range l.transactions {
		if l.transactions[i].ID == t.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Errorf("transaction not found: %s", t.ID)
	}
	for _, e := range l.transactions[idx].Entries {
		if e.Reconciled {
			return Errorf("transaction %s has reconciled entries and cannot be modified", t.ID)
		}
	}
	if violations := l.validateTransaction(t); len(violations) > 0 {
		return validationError(violations)
	}
	l.transactions[idx] = scrub(t)
	return nil
}

// DeleteTransaction removes a transaction. A transaction with any reconciled
// entry is immutable.
func (l *Ledger) DeleteTransaction(transactionID uuid.UUID) error {
	for i := range l.transactions {
		if l.transactions[i].ID != transactionID {
			continue
		}
		for _, e := range l.transactions[i].Entries {
			if e.Reconciled {
				return Errorf("transaction %s has reconciled entries and cannot be deleted", transactionID)
			}
		}
		l.transactions = append(l.transactions[:i], l.transactions[i+1:]...)
		return nil
	}
	return Errorf("transaction not found: %s", transactionID)
}

// scrub clones a transaction and strips transient state before storage:
// computed balances and reconciled flags are ledger-derived, never
// client-supplied.
func scrub(t model.Transaction) model.Transaction {
	c := t.Clone()
	for i := range c.Entries {
		c.Entries[i].TransactionID = c.ID
		c.Entries[i].Balance = nil
		c.Entries[i].Reconciled = false
	}
	return c
}

// Schedules returns copies of all schedules.
func (l *Ledger) Schedules() []model.Schedule {
	return l.sched.Schedules()
}

// Schedule returns a copy of the schedule with the given id.
func (l *Ledger) Schedule(scheduleID uuid.UUID) (model.Schedule, bool) {
	return l.sched.Schedule(scheduleID)
}

// AddSchedule validates and registers a schedule.
func (l *Ledger) AddSchedule(s model.Schedule) error {
	if violations := l.validateSchedule(s); len(violations) > 0 {
		return validationError(violations)
	}
	l.sched.AddSchedule(s)
	return nil
}

// UpdateSchedule validates and replaces a schedule.
func (l *Ledger) UpdateSchedule(s model.Schedule) error {
	if violations := l.validateSchedule(s); len(violations) > 0 {
		return validationError(violations)
	}
	if !l.sched.UpdateSchedule(s) {
		return Errorf("schedule not found: %s", s.ID)
	}
	return nil
}

// DeleteSchedule removes a schedule that no transaction references.
func (l *Ledger) DeleteSchedule(scheduleID uuid.UUID) error {
	for _, t := range l.transactions {
		if t.ScheduleID != nil && *t.ScheduleID == scheduleID {
			return Errorf("schedule %s has generated transactions and cannot be deleted", scheduleID)
		}
	}
	if !l.sched.DeleteSchedule(scheduleID) {
		return Errorf("schedule not found: %s", scheduleID)
	}
	return nil
}

// ResetSchedule clears a schedule's generation progress. Panics if the
// schedule does not exist; callers must check existence first.
func (l *Ledger) ResetSchedule(scheduleID uuid.UUID) {
	l.sched.ResetSchedule(scheduleID)
}

// Modifiers returns all modifier definitions sorted by name.
func (l *Ledger) Modifiers() []model.Modifier {
	return l.sched.Modifiers()
}

// Modifier returns the modifier definition with the given id.
func (l *Ledger) Modifier(modifierID uuid.UUID) (model.Modifier, bool) {
	return l.sched.Modifier(modifierID)
}

// PutModifier validates and inserts or replaces a shared modifier
// definition.
func (l *Ledger) PutModifier(m model.Modifier) error {
	if violations := validateModifier(m); len(violations) > 0 {
		return validationError(violations)
	}
	l.sched.PutModifier(m)
	return nil
}

// DeleteModifier removes a modifier that no schedule binds.
func (l *Ledger) DeleteModifier(modifierID uuid.UUID) error {
	if _, ok := l.sched.Modifier(modifierID); !ok {
		return Errorf("modifier not found: %s", modifierID)
	}
	if !l.sched.DeleteModifier(modifierID) {
		return Errorf("modifier %s is bound to a schedule and cannot be deleted", modifierID)
	}
	return nil
}

// Horizon returns the end date of the last Generate call, or nil.
func (l *Ledger) Horizon() *time.Time {
	return l.sched.Horizon()
}

// Generate materializes projected transactions from every schedule up to end
// and records them. Returns copies of the new transactions in date order.
func (l *Ledger) Generate(end time.Time) []model.Transaction {
	txns := l.sched.Generate(end)
	l.transactions = append(l.transactions, txns...)
	out := make([]model.Transaction, 0, len(txns))
	for _, t := range txns {
		out = append(out, t.Clone())
	}
	return out
}

// GenerateSchedule regenerates a single schedule up to end without moving
// the scheduler's horizon.
func (l *Ledger) GenerateSchedule(end time.Time, scheduleID uuid.UUID) ([]model.Transaction, error) {
	txns, ok := l.sched.GenerateSchedule(end, scheduleID)
	if !ok {
		return nil, Errorf("schedule not found: %s", scheduleID)
	}
	l.transactions = append(l.transactions, txns...)
	out := make([]model.Transaction, 0, len(txns))
	for _, t := range txns {
		out = append(out, t.Clone())
	}
	return out, nil
}
