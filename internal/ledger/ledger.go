// Package ledger builds the immutable, expenditure-only transaction
// ledger from normalized candidates.
package ledger

import (
	"iter"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/models"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/normalizer"
)

// Drop reasons, also used as metric label values.
const (
	ReasonNonPositiveAmount = "non_positive_amount"
	ReasonBadDate           = "bad_date"
)

// ParseReport counts what happened to each data row of one upload.
type ParseReport struct {
	TotalRows                int `json:"totalRows"`
	Kept                     int `json:"kept"`
	DroppedNonPositiveAmount int `json:"droppedNonPositiveAmount"`
	DroppedBadDate           int `json:"droppedBadDate"`
}

// Dropped returns the number of rows excluded for any reason.
func (r ParseReport) Dropped() int {
	return r.DroppedNonPositiveAmount + r.DroppedBadDate
}

// Ledger is an ordered, read-only sequence of transactions.
// Every transaction has a positive amount and a parsed date.
type Ledger struct {
	txns []models.Transaction
}

// Build keeps candidates with a positive amount and a parsed date, in
// source order. A row failing both checks counts as an amount drop.
func Build(candidates []normalizer.Candidate) (*Ledger, ParseReport) {
	report := ParseReport{TotalRows: len(candidates)}
	txns := make([]models.Transaction, 0, len(candidates))

	for _, c := range candidates {
		if !c.Amount.IsPositive() {
			report.DroppedNonPositiveAmount++
			continue
		}
		if !c.DateOK {
			report.DroppedBadDate++
			continue
		}
		txns = append(txns, models.Transaction{
			Date:        c.Date,
			Amount:      c.Amount,
			Description: c.Description,
			Row:         c.Row,
		})
	}

	report.Kept = len(txns)
	return &Ledger{txns: txns}, report
}

// New returns a Ledger over a copy of txns, without filtering.
func New(txns []models.Transaction) *Ledger {
	return &Ledger{txns: slices.Clone(txns)}
}

// Empty returns a Ledger with no transactions.
func Empty() *Ledger {
	return &Ledger{}
}

func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.txns)
}

// At returns the i-th transaction.
func (l *Ledger) At(i int) models.Transaction {
	return l.txns[i]
}

// Transactions returns a copy of the ledger contents.
func (l *Ledger) Transactions() []models.Transaction {
	if l == nil {
		return nil
	}
	return slices.Clone(l.txns)
}

// All iterates the transactions with their ledger index.
func (l *Ledger) All() iter.Seq2[int, models.Transaction] {
	return func(yield func(int, models.Transaction) bool) {
		for i := 0; i < l.Len(); i++ {
			if !yield(i, l.txns[i]) {
				return
			}
		}
	}
}

// Total sums every amount.
func (l *Ledger) Total() decimal.Decimal {
	total := decimal.Zero
	for _, t := range l.All() {
		total = total.Add(t.Amount)
	}
	return total
}

// Years lists the distinct transaction years, most recent first.
func (l *Ledger) Years() []int {
	seen := make(map[int]struct{})
	var years []int
	for _, t := range l.All() {
		y := t.Year()
		if _, ok := seen[y]; !ok {
			seen[y] = struct{}{}
			years = append(years, y)
		}
	}
	slices.Sort(years)
	slices.Reverse(years)
	return years
}

// Filter returns a new Ledger with the transactions matching keep.
func (l *Ledger) Filter(keep func(models.Transaction) bool) *Ledger {
	var out []models.Transaction
	for _, t := range l.All() {
		if keep(t) {
			out = append(out, t)
		}
	}
	return &Ledger{txns: out}
}

// FilterYear returns the transactions dated in year.
func (l *Ledger) FilterYear(year int) *Ledger {
	return l.Filter(func(t models.Transaction) bool { return t.Year() == year })
}
