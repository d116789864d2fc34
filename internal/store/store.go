// Package store persists a ledger as a versioned JSON snapshot and loads it
// back, upgrading snapshots written by older schema versions.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/folio-dev/folio/internal/ledger"
	"github.com/folio-dev/folio/internal/model"
	"github.com/folio-dev/folio/internal/scheduler"
)

// CurrentSchemaVersion is the snapshot schema this package writes.
const CurrentSchemaVersion = 2

const dateFormat = "2006-01-02"

// DefaultLedgerName is used when a ledger is created because no snapshot
// exists yet.
const DefaultLedgerName = "books"

type snapshot struct {
	SchemaVersion int               `json:"schema_version"`
	ID            uuid.UUID         `json:"id"`
	Name          string            `json:"name"`
	Accounts      []accountJSON     `json:"accounts"`
	Transactions  []transactionJSON `json:"transactions"`
	Scheduler     schedulerJSON     `json:"scheduler"`
	Settings      settingsJSON      `json:"settings"`
}

type accountJSON struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	StartingBalance decimal.Decimal `json:"starting_balance"`
	Cutoff          *cutoffJSON     `json:"cutoff,omitempty"`
}

type cutoffJSON struct {
	Date          string          `json:"date"`
	Balance       decimal.Decimal `json:"balance"`
	TransactionID uuid.UUID       `json:"transaction_id"`
}

type transactionJSON struct {
	ID         uuid.UUID   `json:"id"`
	Status     string      `json:"status"`
	ScheduleID *uuid.UUID  `json:"schedule_id,omitempty"`
	Entries    []entryJSON `json:"entries"`
}

// entryJSON deliberately has no balance field: computed balances are
// view-only annotations, not ledger truth.
type entryJSON struct {
	ID          uuid.UUID       `json:"id"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	AccountID   uuid.UUID       `json:"account_id"`
	Side        string          `json:"side"`
	Amount      decimal.Decimal `json:"amount"`
	Reconciled  bool            `json:"reconciled,omitempty"`
}

type schedulerJSON struct {
	Schedules []scheduleJSON `json:"schedules"`
	Modifiers []modifierJSON `json:"modifiers"`
	EndDate   *string        `json:"end_date,omitempty"`
}

type scheduleJSON struct {
	ID        uuid.UUID           `json:"id"`
	Name      string              `json:"name"`
	Period    string              `json:"period"`
	Frequency int                 `json:"frequency"`
	StartDate string              `json:"start_date"`
	EndDate   *string             `json:"end_date,omitempty"`
	LastDate  *string             `json:"last_date,omitempty"`
	Entries   []scheduleEntryJSON `json:"entries"`
	Bindings  []bindingJSON       `json:"schedule_modifiers,omitempty"`
}

type scheduleEntryJSON struct {
	Description string          `json:"description"`
	AccountID   uuid.UUID       `json:"account_id"`
	Side        string          `json:"side"`
	Amount      decimal.Decimal `json:"amount"`
}

type bindingJSON struct {
	ModifierID uuid.UUID `json:"modifier_id"`
	CycleCount int       `json:"cycle_count"`
	LastDate   *string   `json:"last_date,omitempty"`
}

type modifierJSON struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Period     string          `json:"period"`
	Frequency  int             `json:"frequency"`
	StartDate  string          `json:"start_date"`
	EndDate    *string         `json:"end_date,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
}

type settingsJSON struct {
	RequireDoubleEntry bool `json:"require_double_entry"`
}

// Load reads a ledger snapshot. A missing file is the first-run case and
// yields a fresh empty ledger; any other failure (unreadable file, malformed
// JSON, unsupported schema version) is an explicit error, never a silently
// empty ledger.
func Load(path string) (*ledger.Ledger, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ledger.New(DefaultLedgerName), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading ledger file: %w", err)
	}

	var probe struct {
		SchemaVersion int `json:"schema_version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parsing ledger file %s: %w", path, err)
	}

	switch probe.SchemaVersion {
	case CurrentSchemaVersion:
		var snap snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("parsing ledger file %s: %w", path, err)
		}
		return decode(snap)
	case 0, 1:
		// Pre-binding schema: each schedule embedded its own modifier copy.
		snap, err := upgradeV1(data)
		if err != nil {
			return nil, fmt.Errorf("upgrading ledger file %s: %w", path, err)
		}
		return decode(snap)
	default:
		return nil, fmt.Errorf("ledger file %s: unsupported schema version %d", path, probe.SchemaVersion)
	}
}

// Save writes the ledger as an indented JSON snapshot at the current schema
// version. Save is a lossless inverse of Load for a freshly loaded ledger.
func Save(path string, l *ledger.Ledger) error {
	data, err := json.MarshalIndent(encode(l), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling ledger: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing ledger file: %w", err)
	}
	return nil
}

func encode(l *ledger.Ledger) snapshot {
	snap := snapshot{
		SchemaVersion: CurrentSchemaVersion,
		ID:            l.ID(),
		Name:          l.Name(),
		Settings:      settingsJSON{RequireDoubleEntry: l.Settings().RequireDoubleEntry},
	}

	for _, a := range l.Accounts() {
		aj := accountJSON{
			ID:              a.ID,
			Name:            a.Name,
			Type:            string(a.Type),
			StartingBalance: a.StartingBalance,
		}
		if a.Cutoff != nil {
			aj.Cutoff = &cutoffJSON{
				Date:          a.Cutoff.Date.Format(dateFormat),
				Balance:       a.Cutoff.Balance,
				TransactionID: a.Cutoff.TransactionID,
			}
		}
		snap.Accounts = append(snap.Accounts, aj)
	}

	for _, t := range l.Transactions() {
		tj := transactionJSON{ID: t.ID, Status: string(t.Status), ScheduleID: t.ScheduleID}
		for _, e := range t.Entries {
			tj.Entries = append(tj.Entries, entryJSON{
				ID:          e.ID,
				Date:        e.Date.Format(dateFormat),
				Description: e.Description,
				AccountID:   e.AccountID,
				Side:        string(e.Side),
				Amount:      e.Amount,
				Reconciled:  e.Reconciled,
			})
		}
		snap.Transactions = append(snap.Transactions, tj)
	}

	for _, s := range l.Schedules() {
		sj := scheduleJSON{
			ID:        s.ID,
			Name:      s.Name,
			Period:    string(s.Period),
			Frequency: s.Frequency,
			StartDate: s.StartDate.Format(dateFormat),
			EndDate:   formatOptionalDate(s.EndDate),
			LastDate:  formatOptionalDate(s.LastDate),
		}
		for _, e := range s.Entries {
			sj.Entries = append(sj.Entries, scheduleEntryJSON{
				Description: e.Description,
				AccountID:   e.AccountID,
				Side:        string(e.Side),
				Amount:      e.Amount,
			})
		}
		for _, b := range s.ModifierBindings {
			sj.Bindings = append(sj.Bindings, bindingJSON{
				ModifierID: b.ModifierID,
				CycleCount: b.CycleCount,
				LastDate:   formatOptionalDate(b.LastDate),
			})
		}
		snap.Scheduler.Schedules = append(snap.Scheduler.Schedules, sj)
	}

	for _, m := range l.Modifiers() {
		snap.Scheduler.Modifiers = append(snap.Scheduler.Modifiers, modifierJSON{
			ID:         m.ID,
			Name:       m.Name,
			Period:     string(m.Period),
			Frequency:  m.Frequency,
			StartDate:  m.StartDate.Format(dateFormat),
			EndDate:    formatOptionalDate(m.EndDate),
			Amount:     m.Amount,
			Percentage: m.Percentage,
		})
	}

	snap.Scheduler.EndDate = formatOptionalDate(l.Horizon())
	return snap
}

func decode(snap snapshot) (*ledger.Ledger, error) {
	var accounts []model.Account
	for _, aj := range snap.Accounts {
		if !model.AccountType(aj.Type).Valid() {
			return nil, fmt.Errorf("account %s: unknown account type %q", aj.ID, aj.Type)
		}
		a := model.Account{
			ID:              aj.ID,
			Name:            aj.Name,
			Type:            model.AccountType(aj.Type),
			StartingBalance: aj.StartingBalance,
		}
		if aj.Cutoff != nil {
			d, err := parseDate(aj.Cutoff.Date)
			if err != nil {
				return nil, fmt.Errorf("account %s cutoff: %w", aj.ID, err)
			}
			a.Cutoff = &model.Cutoff{Date: d, Balance: aj.Cutoff.Balance, TransactionID: aj.Cutoff.TransactionID}
		}
		accounts = append(accounts, a)
	}

	var transactions []model.Transaction
	for _, tj := range snap.Transactions {
		t := model.Transaction{ID: tj.ID, Status: model.TransactionStatus(tj.Status), ScheduleID: tj.ScheduleID}
		for _, ej := range tj.Entries {
			d, err := parseDate(ej.Date)
			if err != nil {
				return nil, fmt.Errorf("transaction %s: %w", tj.ID, err)
			}
			if !model.Side(ej.Side).Valid() {
				return nil, fmt.Errorf("transaction %s: unknown side %q", tj.ID, ej.Side)
			}
			t.Entries = append(t.Entries, model.Entry{
				ID:            ej.ID,
				TransactionID: tj.ID,
				Date:          d,
				Description:   ej.Description,
				AccountID:     ej.AccountID,
				Side:          model.Side(ej.Side),
				Amount:        ej.Amount,
				Reconciled:    ej.Reconciled,
			})
		}
		transactions = append(transactions, t)
	}

	var schedules []model.Schedule
	for _, sj := range snap.Scheduler.Schedules {
		start, err := parseDate(sj.StartDate)
		if err != nil {
			return nil, fmt.Errorf("schedule %s: %w", sj.ID, err)
		}
		if !model.Period(sj.Period).Valid() {
			return nil, fmt.Errorf("schedule %s: unknown period %q", sj.ID, sj.Period)
		}
		if len(sj.Entries) == 0 {
			return nil, fmt.Errorf("schedule %s: no entries", sj.ID)
		}
		s := model.Schedule{
			ID:        sj.ID,
			Name:      sj.Name,
			Period:    model.Period(sj.Period),
			Frequency: sj.Frequency,
			StartDate: start,
		}
		if s.EndDate, err = parseOptionalDate(sj.EndDate); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", sj.ID, err)
		}
		if s.LastDate, err = parseOptionalDate(sj.LastDate); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", sj.ID, err)
		}
		for _, ej := range sj.Entries {
			if !model.Side(ej.Side).Valid() {
				return nil, fmt.Errorf("schedule %s: unknown side %q", sj.ID, ej.Side)
			}
			s.Entries = append(s.Entries, model.ScheduleEntry{
				ScheduleID:  sj.ID,
				Description: ej.Description,
				AccountID:   ej.AccountID,
				Side:        model.Side(ej.Side),
				Amount:      ej.Amount,
			})
		}
		for _, bj := range sj.Bindings {
			last, err := parseOptionalDate(bj.LastDate)
			if err != nil {
				return nil, fmt.Errorf("schedule %s binding: %w", sj.ID, err)
			}
			s.ModifierBindings = append(s.ModifierBindings, model.ModifierBinding{
				ModifierID: bj.ModifierID,
				CycleCount: bj.CycleCount,
				LastDate:   last,
			})
		}
		schedules = append(schedules, s)
	}

	var modifiers []model.Modifier
	for _, mj := range snap.Scheduler.Modifiers {
		start, err := parseDate(mj.StartDate)
		if err != nil {
			return nil, fmt.Errorf("modifier %s: %w", mj.ID, err)
		}
		if !model.Period(mj.Period).Valid() {
			return nil, fmt.Errorf("modifier %s: unknown period %q", mj.ID, mj.Period)
		}
		m := model.Modifier{
			ID:         mj.ID,
			Name:       mj.Name,
			Period:     model.Period(mj.Period),
			Frequency:  mj.Frequency,
			StartDate:  start,
			Amount:     mj.Amount,
			Percentage: mj.Percentage,
		}
		if m.EndDate, err = parseOptionalDate(mj.EndDate); err != nil {
			return nil, fmt.Errorf("modifier %s: %w", mj.ID, err)
		}
		modifiers = append(modifiers, m)
	}

	horizon, err := parseOptionalDate(snap.Scheduler.EndDate)
	if err != nil {
		return nil, fmt.Errorf("scheduler horizon: %w", err)
	}

	sched := scheduler.Restore(schedules, modifiers, horizon)
	settings := model.Settings{RequireDoubleEntry: snap.Settings.RequireDoubleEntry}
	return ledger.Restore(snap.ID, snap.Name, accounts, transactions, sched, settings), nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(dateFormat, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	d, err := parseDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func formatOptionalDate(d *time.Time) *string {
	if d == nil {
		return nil
	}
	s := d.Format(dateFormat)
	return &s
}
