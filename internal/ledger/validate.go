package ledger

import (
	"fmt"
	"strings"

	"github.com/folio-dev/folio/internal/model"
)

// validateTransaction collects every invariant violation before any state is
// touched. An empty result means the transaction may be applied.
func (l *Ledger) validateTransaction(t model.Transaction) []string {
	var violations []string

	floor := 1
	if l.settings.RequireDoubleEntry {
		floor = 2
	}
	if len(t.Entries) < floor {
		violations = append(violations,
			fmt.Sprintf("transaction requires at least %d entries, got %d", floor, len(t.Entries)))
	}

	for _, e := range t.Entries {
		account, ok := l.accounts[e.AccountID]
		if !ok {
			violations = append(violations, fmt.Sprintf("entry references unknown account %s", e.AccountID))
			continue
		}
		if e.Amount.IsNegative() {
			violations = append(violations, fmt.Sprintf("entry amount %s is negative", e.Amount))
		}
		if e.Reconciled {
			violations = append(violations, "reconciled entries cannot be added or modified")
		}
		if account.Cutoff != nil && e.Date.Before(account.Cutoff.Date) {
			violations = append(violations,
				fmt.Sprintf("entry dated %s precedes the reconciliation cutoff %s for account %q",
					e.Date.Format("2006-01-02"), account.Cutoff.Date.Format("2006-01-02"), account.Name))
		}
	}

	return violations
}

// validateSchedule checks the schedule's entry templates and references.
func (l *Ledger) validateSchedule(s model.Schedule) []string {
	var violations []string

	if len(s.Entries) == 0 {
		violations = append(violations, "schedule requires at least one entry")
	}
	if !s.Period.Valid() {
		violations = append(violations, fmt.Sprintf("unknown schedule period %q", s.Period))
	}
	if s.Frequency < 1 {
		violations = append(violations, fmt.Sprintf("schedule frequency must be positive, got %d", s.Frequency))
	}
	for _, e := range s.Entries {
		if _, ok := l.accounts[e.AccountID]; !ok {
			violations = append(violations, fmt.Sprintf("schedule entry references unknown account %s", e.AccountID))
		}
	}
	for _, b := range s.ModifierBindings {
		if _, ok := l.sched.Modifier(b.ModifierID); !ok {
			violations = append(violations, fmt.Sprintf("schedule binds unknown modifier %s", b.ModifierID))
		}
	}

	return violations
}

// validateModifier checks a modifier definition's own recurrence.
func validateModifier(m model.Modifier) []string {
	var violations []string

	if !m.Period.Valid() {
		violations = append(violations, fmt.Sprintf("unknown modifier period %q", m.Period))
	}
	if m.Frequency < 1 {
		violations = append(violations, fmt.Sprintf("modifier frequency must be positive, got %d", m.Frequency))
	}

	return violations
}

func validationError(violations []string) *Error {
	return Errorf("validation failed: %s", strings.Join(violations, "; "))
}
