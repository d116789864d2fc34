// Package scheduler materializes projected transactions from recurring
// schedules and their compounding modifiers.
package scheduler

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/folio-dev/folio/internal/id"
	"github.com/folio-dev/folio/internal/model"
	"github.com/folio-dev/folio/internal/recur"
)

// Scheduler owns the recurring schedules, the shared modifier definitions
// they reference by id, and the horizon date generation has reached.
type Scheduler struct {
	schedules []model.Schedule
	modifiers map[uuid.UUID]model.Modifier
	horizon   *time.Time
}

// New creates an empty scheduler.
func New() *Scheduler {
	return &Scheduler{modifiers: make(map[uuid.UUID]model.Modifier)}
}

// Restore rebuilds a scheduler from persisted state.
func Restore(schedules []model.Schedule, modifiers []model.Modifier, horizon *time.Time) *Scheduler {
	s := New()
	for _, sch := range schedules {
		s.schedules = append(s.schedules, sch.Clone())
	}
	for _, m := range modifiers {
		s.modifiers[m.ID] = m
	}
	if horizon != nil {
		h := *horizon
		s.horizon = &h
	}
	return s
}

// Horizon returns the end date of the last Generate call, or nil.
func (s *Scheduler) Horizon() *time.Time {
	if s.horizon == nil {
		return nil
	}
	h := *s.horizon
	return &h
}

// Schedules returns copies of all schedules in insertion order.
func (s *Scheduler) Schedules() []model.Schedule {
	out := make([]model.Schedule, 0, len(s.schedules))
	for _, sch := range s.schedules {
		out = append(out, sch.Clone())
	}
	return out
}

// Schedule returns a copy of the schedule with the given id.
func (s *Scheduler) Schedule(scheduleID uuid.UUID) (model.Schedule, bool) {
	for _, sch := range s.schedules {
		if sch.ID == scheduleID {
			return sch.Clone(), true
		}
	}
	return model.Schedule{}, false
}

// AddSchedule appends a schedule.
func (s *Scheduler) AddSchedule(sch model.Schedule) {
	s.schedules = append(s.schedules, sch.Clone())
}

// UpdateSchedule replaces the schedule with the same id. Returns false if absent.
func (s *Scheduler) UpdateSchedule(sch model.Schedule) bool {
	for i := range s.schedules {
		if s.schedules[i].ID == sch.ID {
			s.schedules[i] = sch.Clone()
			return true
		}
	}
	return false
}

// DeleteSchedule removes the schedule with the given id. Returns false if absent.
func (s *Scheduler) DeleteSchedule(scheduleID uuid.UUID) bool {
	for i := range s.schedules {
		if s.schedules[i].ID == scheduleID {
			s.schedules = append(s.schedules[:i], s.schedules[i+1:]...)
			return true
		}
	}
	return false
}

// ResetSchedule clears a schedule's generation progress: last date and all
// modifier binding cycles. Panics if the schedule does not exist; callers
// must check existence first.
func (s *Scheduler) ResetSchedule(scheduleID uuid.UUID) {
	for i := range s.schedules {
		if s.schedules[i].ID != scheduleID {
			continue
		}
		s.schedules[i].LastDate = nil
		for j := range s.schedules[i].ModifierBindings {
			s.schedules[i].ModifierBindings[j].CycleCount = 0
			s.schedules[i].ModifierBindings[j].LastDate = nil
		}
		return
	}
	panic("scheduler: reset of unknown schedule " + scheduleID.String())
}

// Modifiers returns all modifier definitions sorted by name.
func (s *Scheduler) Modifiers() []model.Modifier {
	out := make([]model.Modifier, 0, len(s.modifiers))
	for _, m := range s.modifiers {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// Modifier returns the modifier definition with the given id.
func (s *Scheduler) Modifier(modifierID uuid.UUID) (model.Modifier, bool) {
	m, ok := s.modifiers[modifierID]
	return m, ok
}

// PutModifier inserts or replaces a modifier definition.
func (s *Scheduler) PutModifier(m model.Modifier) {
	s.modifiers[m.ID] = m
}

// DeleteModifier removes a modifier definition. Returns false if any
// schedule still binds it.
func (s *Scheduler) DeleteModifier(modifierID uuid.UUID) bool {
	for _, sch := range s.schedules {
		for _, b := range sch.ModifierBindings {
			if b.ModifierID == modifierID {
				return false
			}
		}
	}
	delete(s.modifiers, modifierID)
	return true
}

// Generate materializes every due occurrence of every schedule up to and
// including end, records end as the new horizon, and returns the new
// transactions sorted by first-entry date. The sort is stable, so schedules
// earlier in the list keep their relative order on same-day ties.
func (s *Scheduler) Generate(end time.Time) []model.Transaction {
	h := end
	s.horizon = &h

	var out []model.Transaction
	for i := range s.schedules {
		out = append(out, s.run(&s.schedules[i], end)...)
	}
	sortByFirstEntryDate(out)
	return out
}

// GenerateSchedule runs the generation loop for a single schedule without
// moving the scheduler's horizon. Returns false if the schedule is unknown.
func (s *Scheduler) GenerateSchedule(end time.Time, scheduleID uuid.UUID) ([]model.Transaction, bool) {
	for i := range s.schedules {
		if s.schedules[i].ID == scheduleID {
			out := s.run(&s.schedules[i], end)
			sortByFirstEntryDate(out)
			return out, true
		}
	}
	return nil, false
}

// run emits occurrences for one schedule until the next date passes end or
// the schedule's own end date. Binding advancement is driven purely by the
// occurrence date reaching the modifier's boundary, so it fires even on the
// final check that emits nothing.
func (s *Scheduler) run(sch *model.Schedule, end time.Time) []model.Transaction {
	var out []model.Transaction
	for {
		next := s.nextOccurrence(sch)

		for i := range sch.ModifierBindings {
			b := &sch.ModifierBindings[i]
			mod, ok := s.modifiers[b.ModifierID]
			if !ok {
				continue
			}
			prev := mod.StartDate
			if b.LastDate != nil {
				prev = *b.LastDate
			}
			boundary := recur.Next(prev, mod.Period, mod.Frequency, mod.StartDate)
			if !next.Before(boundary) {
				b.Advance(boundary)
			}
		}

		if next.After(end) {
			return out
		}
		if sch.EndDate != nil && next.After(*sch.EndDate) {
			return out
		}

		out = append(out, s.materialize(sch, next))
		d := next
		sch.LastDate = &d
	}
}

// nextOccurrence is the schedule's start date until the first occurrence has
// been generated, then the recurrence step from the last generated date.
func (s *Scheduler) nextOccurrence(sch *model.Schedule) time.Time {
	if sch.LastDate == nil {
		return sch.StartDate
	}
	return recur.Next(*sch.LastDate, sch.Period, sch.Frequency, sch.StartDate)
}

// materialize builds a projected transaction from the schedule's entry
// templates, passing each amount through every bound modifier in binding
// order. Each modifier compounds the output of the previous one.
func (s *Scheduler) materialize(sch *model.Schedule, date time.Time) model.Transaction {
	txnID := id.New()
	scheduleID := sch.ID

	entries := make([]model.Entry, 0, len(sch.Entries))
	for _, tmpl := range sch.Entries {
		amount := tmpl.Amount
		for _, b := range sch.ModifierBindings {
			mod, ok := s.modifiers[b.ModifierID]
			if !ok {
				continue
			}
			amount = mod.Apply(amount, b.CycleCount)
		}
		entries = append(entries, model.Entry{
			ID:            id.New(),
			TransactionID: txnID,
			Date:          date,
			Description:   tmpl.Description,
			AccountID:     tmpl.AccountID,
			Side:          tmpl.Side,
			Amount:        amount,
		})
	}

	return model.Transaction{
		ID:         txnID,
		Entries:    entries,
		Status:     model.StatusProjected,
		ScheduleID: &scheduleID,
	}
}

func sortByFirstEntryDate(txns []model.Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Entries[0].Date.Before(txns[j].Entries[0].Date)
	})
}
