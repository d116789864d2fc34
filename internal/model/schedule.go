package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Period is the calendar unit of a recurrence.
type Period string

const (
	PeriodDays   Period = "days"
	PeriodWeeks  Period = "weeks"
	PeriodMonths Period = "months"
	PeriodYears  Period = "years"
)

// Valid reports whether p is one of the known calendar units.
func (p Period) Valid() bool {
	switch p {
	case PeriodDays, PeriodWeeks, PeriodMonths, PeriodYears:
		return true
	}
	return false
}

// ScheduleEntry is the template for one entry of a generated transaction.
type ScheduleEntry struct {
	ScheduleID  uuid.UUID
	Description string
	AccountID   uuid.UUID
	Side        Side
	Amount      decimal.Decimal
}

// ModifierBinding is per-schedule progress state for a shared Modifier.
// It advances on its own recurrence, independent of transaction emission.
type ModifierBinding struct {
	ModifierID uuid.UUID
	CycleCount int
	LastDate   *time.Time
}

// Advance records one modifier cycle ending at next.
func (b *ModifierBinding) Advance(next time.Time) {
	b.CycleCount++
	d := next
	b.LastDate = &d
}

// Schedule is a recurring transaction template.
type Schedule struct {
	ID               uuid.UUID
	Name             string
	Period           Period
	Frequency        int
	StartDate        time.Time
	EndDate          *time.Time
	LastDate         *time.Time // nil until the first occurrence is generated
	Entries          []ScheduleEntry
	ModifierBindings []ModifierBinding
}

// Clone returns a deep copy; slices and optional dates are not shared.
func (s Schedule) Clone() Schedule {
	c := s
	c.Entries = make([]ScheduleEntry, len(s.Entries))
	copy(c.Entries, s.Entries)
	c.ModifierBindings = make([]ModifierBinding, len(s.ModifierBindings))
	copy(c.ModifierBindings, s.ModifierBindings)
	if s.EndDate != nil {
		d := *s.EndDate
		c.EndDate = &d
	}
	if s.LastDate != nil {
		d := *s.LastDate
		c.LastDate = &d
	}
	for i := range c.ModifierBindings {
		if ld := c.ModifierBindings[i].LastDate; ld != nil {
			d := *ld
			c.ModifierBindings[i].LastDate = &d
		}
	}
	return c
}
