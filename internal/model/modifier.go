package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MoneyPrecision is the fixed decimal precision for monetary amounts.
const MoneyPrecision = 4

// Modifier is a shared fixed-plus-percentage compounding adjustment with its
// own recurrence. Schedules reference it by id through a ModifierBinding.
type Modifier struct {
	ID         uuid.UUID
	Name       string
	Period     Period
	Frequency  int
	StartDate  time.Time
	EndDate    *time.Time
	Amount     decimal.Decimal // fixed amount added each cycle
	Percentage decimal.Decimal // e.g. 0.05 for 5% per cycle
}

// Apply compounds amount once per cycle: amount + fixed + percentage*amount.
// The result is rounded to MoneyPrecision after the full loop, not per cycle.
func (m Modifier) Apply(amount decimal.Decimal, cycles int) decimal.Decimal {
	for i := 0; i < cycles; i++ {
		amount = amount.Add(m.Amount).Add(m.Percentage.Mul(amount))
	}
	return amount.Round(MoneyPrecision)
}
