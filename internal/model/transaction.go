package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle state of a transaction.
type TransactionStatus string

const (
	StatusProjected TransactionStatus = "projected"
	StatusRecorded  TransactionStatus = "recorded"
)

// Entry is one side of a transaction against a single account.
type Entry struct {
	ID            uuid.UUID
	TransactionID uuid.UUID
	Date          time.Time
	Description   string
	AccountID     uuid.UUID
	Side          Side
	Amount        decimal.Decimal // non-negative

	// Balance is a running balance computed on query reads. It is never
	// persisted; ledger queries attach it to cloned entries only.
	Balance *decimal.Decimal

	// Reconciled entries are immutable from the mutation surface.
	Reconciled bool
}

// Transaction is an ordered list of entries recorded or projected together.
type Transaction struct {
	ID         uuid.UUID
	Entries    []Entry
	Status     TransactionStatus
	ScheduleID *uuid.UUID // set when generated from a schedule
}

// InvolvesAccount reports whether any entry touches the account.
func (t Transaction) InvolvesAccount(accountID uuid.UUID) bool {
	for _, e := range t.Entries {
		if e.AccountID == accountID {
			return true
		}
	}
	return false
}

// EntryForAccount returns the first entry touching the account, or nil.
func (t Transaction) EntryForAccount(accountID uuid.UUID) *Entry {
	for i := range t.Entries {
		if t.Entries[i].AccountID == accountID {
			return &t.Entries[i]
		}
	}
	return nil
}

// AccountEntries returns copies of all entries touching the account.
func (t Transaction) AccountEntries(accountID uuid.UUID) []Entry {
	var entries []Entry
	for _, e := range t.Entries {
		if e.AccountID == accountID {
			entries = append(entries, e)
		}
	}
	return entries
}

// Clone returns a deep copy; the entries slice is not shared.
func (t Transaction) Clone() Transaction {
	c := t
	c.Entries = make([]Entry, len(t.Entries))
	copy(c.Entries, t.Entries)
	if t.ScheduleID != nil {
		sid := *t.ScheduleID
		c.ScheduleID = &sid
	}
	for i := range c.Entries {
		if b := c.Entries[i].Balance; b != nil {
			v := *b
			c.Entries[i].Balance = &v
		}
	}
	return c
}
