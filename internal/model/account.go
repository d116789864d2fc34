package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Side is the debit/credit side of an entry.
type Side string

const (
	Debit  Side = "debit"
	Credit Side = "credit"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Debit {
		return Credit
	}
	return Debit
}

// Valid reports whether s is debit or credit.
func (s Side) Valid() bool {
	return s == Debit || s == Credit
}

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
	AccountTypeEquity    AccountType = "equity"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeRevenue, AccountTypeExpense, AccountTypeEquity:
		return true
	}
	return false
}

// NormalBalance returns the side on which this account type increases.
func (t AccountType) NormalBalance() Side {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return Debit
	default:
		return Credit
	}
}

// Order returns the conventional chart-of-accounts display order.
func (t AccountType) Order() int {
	switch t {
	case AccountTypeAsset:
		return 0
	case AccountTypeLiability:
		return 1
	case AccountTypeRevenue:
		return 2
	case AccountTypeExpense:
		return 3
	default:
		return 4
	}
}

// Cutoff marks the latest reconciled transaction position for an account.
// Entries at or before it are immutable.
type Cutoff struct {
	Date          time.Time
	Balance       decimal.Decimal
	TransactionID uuid.UUID
}

// Equal reports whether two (possibly nil) cutoffs are the same.
func (c *Cutoff) Equal(o *Cutoff) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.Date.Equal(o.Date) && c.Balance.Equal(o.Balance) && c.TransactionID == o.TransactionID
}

// Account is one account in the ledger.
type Account struct {
	ID              uuid.UUID
	Name            string
	Type            AccountType
	StartingBalance decimal.Decimal
	Cutoff          *Cutoff // set only by the reconciliation commit, never by clients
}

// NewAccount creates an account with a zero starting balance and no cutoff.
func NewAccount(name string, accountType AccountType) Account {
	return Account{
		ID:              uuid.New(),
		Name:            name,
		Type:            accountType,
		StartingBalance: decimal.Zero,
	}
}

// NormalBalance returns the side on which this account increases.
func (a Account) NormalBalance() Side {
	return a.Type.NormalBalance()
}
