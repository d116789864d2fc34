package model

// Settings are ledger-wide behavior switches.
type Settings struct {
	// RequireDoubleEntry raises the per-transaction entry floor from 1 to 2.
	RequireDoubleEntry bool
}
