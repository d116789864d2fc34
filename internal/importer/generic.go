package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// GenericParser parses the plain statement layout:
//
//	date,description,amount[,balance]
//
// with an optional header row and ISO dates. Most banks can export
// something close enough to massage into this shape.
type GenericParser struct{}

const genericDateFormat = "2006-01-02"

// Format returns the parser name.
func (p *GenericParser) Format() string { return "generic" }

// Parse reads a generic CSV and returns statement rows.
func (p *GenericParser) Parse(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	var rows []Row
	for i, rec := range records {
		if i == 0 && isGenericHeader(rec) {
			continue
		}
		row, err := parseGenericRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isGenericHeader(rec []string) bool {
	return len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "date")
}

func parseGenericRow(rec []string) (Row, error) {
	if len(rec) < 3 {
		return Row{}, fmt.Errorf("expected at least 3 fields, got %d", len(rec))
	}

	date, err := time.ParseInLocation(genericDateFormat, strings.TrimSpace(rec[0]), time.UTC)
	if err != nil {
		return Row{}, fmt.Errorf("parsing date %q: %w", rec[0], err)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(rec[2]))
	if err != nil {
		return Row{}, fmt.Errorf("parsing amount %q: %w", rec[2], err)
	}

	row := Row{Date: date, Description: rec[1], Amount: amount}

	if len(rec) >= 4 && strings.TrimSpace(rec[3]) != "" {
		balance, err := decimal.NewFromString(strings.TrimSpace(rec[3]))
		if err != nil {
			return Row{}, fmt.Errorf("parsing balance %q: %w", rec[3], err)
		}
		row.Balance = &balance
	}
	return row, nil
}
