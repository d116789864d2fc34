package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MatchStatus classifies one statement transaction against the ledger.
type MatchStatus string

const (
	// MatchStatusMatched means date, amount, side and balance all agree.
	MatchStatusMatched MatchStatus = "matched"
	// MatchStatusPartial means the transaction lines up but not exactly
	// (or a later match retroactively excused a balance mismatch).
	MatchStatusPartial MatchStatus = "partial-match"
	// MatchStatusMismatch means the transaction lines up but the running
	// balances disagree.
	MatchStatusMismatch MatchStatus = "mismatch"
	// MatchStatusUnmatched means no ledger transaction qualified.
	MatchStatusUnmatched MatchStatus = "unmatched"
)

// MatchResult is the reconciliation verdict for one statement transaction.
type MatchResult struct {
	Transaction     Transaction
	Status          MatchStatus
	MatchedID       *uuid.UUID       // consumed ledger transaction, if any
	ExpectedBalance *decimal.Decimal // ledger running balance at the match
}
