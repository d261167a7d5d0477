// Package aggregate builds the summary tables behind the dashboard
// and the report. Every function is a pure read of a Ledger.
package aggregate

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/ledger"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/models"
)

// DefaultTopN is the breakdown and audit table size.
const DefaultTopN = 10

// BudgetClass tags a month bucket against the budget limit.
type BudgetClass string

const (
	OverBudget  BudgetClass = "over-budget"
	UnderBudget BudgetClass = "under-budget"
)

// Color returns the chart color for the class.
func (c BudgetClass) Color() string {
	if c == OverBudget {
		return "#D62728"
	}
	return "#2CA02C"
}

// DescriptionTotal is the summed spend for one description.
type DescriptionTotal struct {
	Description string          `json:"description"`
	Total       decimal.Decimal `json:"total"`
	Count       int             `json:"count"`
}

// MonthBucket is the summed spend for one month of a year.
type MonthBucket struct {
	Year        int             `json:"year"`
	MonthNumber int             `json:"monthNumber"`
	MonthLabel  string          `json:"monthLabel"`
	Total       decimal.Decimal `json:"total"`
	Count       int             `json:"count"`
	Class       BudgetClass     `json:"class"`
	Color       string          `json:"color"`
}

// Total sums the ledger.
func Total(l *ledger.Ledger) decimal.Decimal {
	return l.Total()
}

// ByDescription groups by description, sorts by total descending and
// keeps the first n. Equal totals keep first-appearance order.
func ByDescription(l *ledger.Ledger, n int) []DescriptionTotal {
	index := make(map[string]int)
	var groups []DescriptionTotal
	for _, t := range l.All() {
		i, ok := index[t.Description]
		if !ok {
			i = len(groups)
			index[t.Description] = i
			groups = append(groups, DescriptionTotal{Description: t.Description, Total: decimal.Zero})
		}
		groups[i].Total = groups[i].Total.Add(t.Amount)
		groups[i].Count++
	}

	slices.SortStableFunc(groups, func(a, b DescriptionTotal) int {
		return b.Total.Cmp(a.Total)
	})
	if n >= 0 && len(groups) > n {
		groups = groups[:n]
	}
	return groups
}

// ByMonth sums the transactions of year per month, in month order.
// Months without transactions are absent. A bucket is over budget when
// its total strictly exceeds budget.
func ByMonth(l *ledger.Ledger, year int, budget decimal.Decimal) []MonthBucket {
	var byMonth [13]*MonthBucket
	for _, t := range l.All() {
		if t.Year() != year {
			continue
		}
		m := t.MonthNumber()
		if byMonth[m] == nil {
			byMonth[m] = &MonthBucket{Year: year, MonthNumber: m, MonthLabel: t.MonthLabel(), Total: decimal.Zero}
		}
		byMonth[m].Total = byMonth[m].Total.Add(t.Amount)
		byMonth[m].Count++
	}

	var out []MonthBucket
	for _, b := range byMonth {
		if b == nil {
			continue
		}
		b.Class = UnderBudget
		if b.Total.GreaterThan(budget) {
			b.Class = OverBudget
		}
		b.Color = b.Class.Color()
		out = append(out, *b)
	}
	return out
}

// TopN returns the n largest transactions, ties in ledger order.
func TopN(l *ledger.Ledger, n int) []models.Transaction {
	txns := l.Transactions()
	slices.SortStableFunc(txns, func(a, b models.Transaction) int {
		return b.Amount.Cmp(a.Amount)
	})
	if n >= 0 && len(txns) > n {
		txns = txns[:n]
	}
	return txns
}

// Search keeps transactions whose description contains query, ignoring
// case. An empty query returns l itself.
func Search(l *ledger.Ledger, query string) *ledger.Ledger {
	query = strings.TrimSpace(query)
	if query == "" {
		return l
	}
	fold := cases.Fold()
	needle := fold.String(query)
	return l.Filter(func(t models.Transaction) bool {
		return strings.Contains(fold.String(t.Description), needle)
	})
}
