package aggregate

import (
	"github.com/shopspring/decimal"

	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/ledger"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/models"
)

// Query holds the view parameters of a dashboard.
type Query struct {
	Year   int // 0 selects the most recent year
	Budget decimal.Decimal
	Search string
	TopN   int // 0 means DefaultTopN
}

// Summary is a total with its description breakdown.
type Summary struct {
	Total     decimal.Decimal    `json:"total"`
	Count     int                `json:"count"`
	Breakdown []DescriptionTotal `json:"breakdown"`
}

// YearView is the selected-year part of the dashboard.
type YearView struct {
	Summary
	Year   int                  `json:"year"`
	Months []MonthBucket        `json:"months"`
	Audit  []models.Transaction `json:"audit"`
}

// Dashboard is the lifetime overview plus one year, optionally narrowed
// by a description search. Search never affects the lifetime figures.
type Dashboard struct {
	Years    []int           `json:"years"`
	Budget   decimal.Decimal `json:"budget"`
	Search   string          `json:"search,omitempty"`
	Lifetime Summary         `json:"lifetime"`
	Yearly   YearView        `json:"yearly"`
}

// BuildDashboard computes every table the dashboard and report need.
func BuildDashboard(l *ledger.Ledger, q Query) Dashboard {
	n := q.TopN
	if n <= 0 {
		n = DefaultTopN
	}

	d := Dashboard{
		Years:  l.Years(),
		Budget: q.Budget,
		Search: q.Search,
		Lifetime: Summary{
			Total:     l.Total(),
			Count:     l.Len(),
			Breakdown: ByDescription(l, n),
		},
	}

	year := q.Year
	if year == 0 && len(d.Years) > 0 {
		year = d.Years[0]
	}

	view := Search(l.FilterYear(year), q.Search)
	d.Yearly = YearView{
		Summary: Summary{
			Total:     view.Total(),
			Count:     view.Len(),
			Breakdown: ByDescription(view, n),
		},
		Year:   year,
		Months: ByMonth(view, year, q.Budget),
		Audit:  TopN(view, n),
	}
	return d
}
