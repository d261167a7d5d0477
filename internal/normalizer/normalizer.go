// Package normalizer coerces raw statement cells into typed candidate
// transactions. It never fails: unusable amounts become zero and
// unusable dates are flagged, leaving the ledger builder to drop them.
package normalizer

import (
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"

	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/models"
)

// Candidate is one data row after cleaning, before filtering.
type Candidate struct {
	Row         int // 1-based data row
	Date        time.Time
	DateOK      bool
	Amount      decimal.Decimal
	Description string
}

// Options tune date interpretation.
type Options struct {
	// DayFirst reads ambiguous dates like 03/04/2024 as 3 April.
	DayFirst bool
}

// Normalizer converts RawTable rows using a resolved role mapping.
type Normalizer struct {
	opts Options
}

func New(opts Options) *Normalizer {
	return &Normalizer{opts: opts}
}

// Normalize returns one Candidate per data row, in table order.
func (n *Normalizer) Normalize(table *models.RawTable, mapping models.RoleMapping) []Candidate {
	dateCol := mapping.Index(models.RoleDate)
	amountCol := mapping.Index(models.RoleAmount)
	descCol := mapping.Index(models.RoleDescription)

	out := make([]Candidate, 0, len(table.Rows))
	for i, row := range table.Rows {
		c := Candidate{
			Row:         i + 1,
			Amount:      CleanAmount(models.Cell(row, amountCol)),
			Description: CleanDescription(models.Cell(row, descCol)),
		}
		c.Date, c.DateOK = n.ParseDate(models.Cell(row, dateCol))
		out = append(out, c)
	}
	return out
}

// ParseDate reads a calendar date in any common layout. The result has
// no time-of-day component and is in UTC.
func (n *Normalizer) ParseDate(cell string) (time.Time, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}, false
	}

	t, err := dateparse.ParseIn(cell, time.UTC,
		dateparse.PreferMonthFirst(!n.opts.DayFirst),
		dateparse.RetryAmbiguousDateWithSwap(true),
	)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}

// CleanAmount extracts the number from a currency cell, dropping symbols,
// thousands separators and letters. Anything unparseable is zero.
//
// A point is kept only when a digit follows it and no letter precedes it,
// so "Rs. 999" and "Rs.999" are 999 while ".50" is 0.5. A minus sign
// before the first digit or surrounding parentheses make it negative.
func CleanAmount(cell string) decimal.Decimal {
	runes := []rune(strings.TrimSpace(cell))

	first := -1
	for i, r := range runes {
		if isDigit(r) {
			first = i
			break
		}
	}
	if first < 0 {
		return decimal.Zero
	}

	var b strings.Builder
	for i, r := range runes {
		switch {
		case isDigit(r):
			b.WriteRune(r)
		case r == '.':
			nextDigit := i+1 < len(runes) && isDigit(runes[i+1])
			afterLetter := i > 0 && unicode.IsLetter(runes[i-1])
			if nextDigit && !afterLetter {
				b.WriteRune(r)
			}
		}
	}

	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero
	}
	if isNegative(runes, first) {
		d = d.Neg()
	}
	return d
}

func isNegative(runes []rune, firstDigit int) bool {
	for _, r := range runes[:firstDigit] {
		if r == '-' || r == '−' {
			return true
		}
	}
	return len(runes) > 1 && runes[0] == '(' && runes[len(runes)-1] == ')'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// CleanDescription trims the text and collapses internal whitespace runs.
func CleanDescription(cell string) string {
	return strings.Join(strings.Fields(cell), " ")
}
