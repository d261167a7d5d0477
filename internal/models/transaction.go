package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used in exports and API responses.
const DateLayout = "2006-01-02"

// Transaction represents a single cleaned ledger entry.
// Year, month number and month label are derived from Date on every call.
type Transaction struct {
	Date        time.Time
	Amount      decimal.Decimal
	Description string
	Row         int // 1-based data row in the source table
}

// Year returns the calendar year of the transaction.
func (t Transaction) Year() int {
	return t.Date.Year()
}

// MonthNumber returns the month of the transaction, 1-12.
func (t Transaction) MonthNumber() int {
	return int(t.Date.Month())
}

// MonthLabel returns the short month name, e.g. "Jan".
func (t Transaction) MonthLabel() string {
	return t.Date.Format("Jan")
}

// MarshalJSON includes the derived time-bucket fields.
func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date        string          `json:"date"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
		Year        int             `json:"year"`
		MonthNumber int             `json:"monthNumber"`
		MonthLabel  string          `json:"monthLabel"`
		Row         int             `json:"row"`
	}{
		Date:        t.Date.Format(DateLayout),
		Amount:      t.Amount,
		Description: t.Description,
		Year:        t.Year(),
		MonthNumber: t.MonthNumber(),
		MonthLabel:  t.MonthLabel(),
		Row:         t.Row,
	})
}

// SourceFormat represents supported statement file formats.
type SourceFormat string

const (
	FormatCSV  SourceFormat = "csv"
	FormatXLSX SourceFormat = "xlsx"
	FormatXLS  SourceFormat = "xls"
	FormatPDF  SourceFormat = "pdf"
)

// RawTable is the untyped table handed from extraction to role resolution.
type RawTable struct {
	Format SourceFormat
	Header []string
	Rows   [][]string
}

// Cell returns row[col], or "" when col is unassigned or the row is short.
func Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}
