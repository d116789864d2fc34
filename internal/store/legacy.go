package store

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Version 1 snapshots carried the compounding modifier embedded inside each
// schedule, with its progress fields inline. Version 2 hoists modifiers into
// a shared table and leaves a binding on the schedule.

type snapshotV1 struct {
	SchemaVersion int               `json:"schema_version"`
	ID            uuid.UUID         `json:"id"`
	Name          string            `json:"name"`
	Accounts      []accountJSON     `json:"accounts"`
	Transactions  []transactionJSON `json:"transactions"`
	Scheduler     schedulerV1       `json:"scheduler"`
	Settings      settingsJSON      `json:"settings"`
}

type schedulerV1 struct {
	Schedules []scheduleV1 `json:"schedules"`
	EndDate   *string      `json:"end_date,omitempty"`
}

type scheduleV1 struct {
	ID        uuid.UUID           `json:"id"`
	Name      string              `json:"name"`
	Period    string              `json:"period"`
	Frequency int                 `json:"frequency"`
	StartDate string              `json:"start_date"`
	EndDate   *string             `json:"end_date,omitempty"`
	LastDate  *string             `json:"last_date,omitempty"`
	Entries   []scheduleEntryJSON `json:"entries"`
	Modifier  *modifierV1         `json:"modifier,omitempty"`
}

type modifierV1 struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Period     string          `json:"period"`
	Frequency  int             `json:"frequency"`
	StartDate  string          `json:"start_date"`
	EndDate    *string         `json:"end_date,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
	CycleCount int             `json:"cycle_count"`
	NextDate   *string         `json:"next_date,omitempty"`
}

func upgradeV1(data []byte) (snapshot, error) {
	var old snapshotV1
	if err := json.Unmarshal(data, &old); err != nil {
		return snapshot{}, err
	}

	snap := snapshot{
		SchemaVersion: CurrentSchemaVersion,
		ID:            old.ID,
		Name:          old.Name,
		Accounts:      old.Accounts,
		Transactions:  old.Transactions,
		Settings:      old.Settings,
	}
	snap.Scheduler.EndDate = old.Scheduler.EndDate

	seen := map[uuid.UUID]bool{}
	for _, sv := range old.Scheduler.Schedules {
		sj := scheduleJSON{
			ID:        sv.ID,
			Name:      sv.Name,
			Period:    sv.Period,
			Frequency: sv.Frequency,
			StartDate: sv.StartDate,
			EndDate:   sv.EndDate,
			LastDate:  sv.LastDate,
			Entries:   sv.Entries,
		}
		if m := sv.Modifier; m != nil {
			if !seen[m.ID] {
				seen[m.ID] = true
				snap.Scheduler.Modifiers = append(snap.Scheduler.Modifiers, modifierJSON{
					ID:         m.ID,
					Name:       m.Name,
					Period:     m.Period,
					Frequency:  m.Frequency,
					StartDate:  m.StartDate,
					EndDate:    m.EndDate,
					Amount:     m.Amount,
					Percentage: m.Percentage,
				})
			}
			sj.Bindings = append(sj.Bindings, bindingJSON{
				ModifierID: m.ID,
				CycleCount: m.CycleCount,
				LastDate:   m.NextDate,
			})
		}
		snap.Scheduler.Schedules = append(snap.Scheduler.Schedules, sj)
	}
	return snap, nil
}
