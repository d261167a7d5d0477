// Package report produces the two-page spending report: a lifetime
// overview followed by a selected-year analysis with an audit table.
package report

import (
	"fmt"

	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/aggregate"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/ledger"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/models"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/money"
)

// Audit descriptions are cut to this many characters.
const maxDescriptionRunes = 50

// Report is a rendered document ready for download.
type Report struct {
	Filename string
	Year     int
	PDF      []byte
}

// Filename names the report for a year.
func Filename(year int) string {
	return fmt.Sprintf("Finance_Report_%d.pdf", year)
}

// Builder turns a ledger and view parameters into a Report.
type Builder struct {
	charts   ChartRenderer
	composer Composer
	money    money.Formatter
}

func NewBuilder(charts ChartRenderer, composer Composer, f money.Formatter) *Builder {
	return &Builder{charts: charts, composer: composer, money: f}
}

// Default returns a Builder using go-chart and fpdf.
func Default(f money.Formatter) *Builder {
	return NewBuilder(NewGoChart(800, 600), FPDF{}, f)
}

// Build renders the report for the dashboard described by q.
func (b *Builder) Build(l *ledger.Ledger, q aggregate.Query) (*Report, error) {
	d := aggregate.BuildDashboard(l, q)
	pages, err := b.Pages(d)
	if err != nil {
		return nil, err
	}

	pdf, err := b.composer.Compose(pages)
	if err != nil {
		return nil, fmt.Errorf("composing report: %w", err)
	}
	return &Report{Filename: Filename(d.Yearly.Year), Year: d.Yearly.Year, PDF: pdf}, nil
}

// Pages lays out the report content without serializing it.
func (b *Builder) Pages(d aggregate.Dashboard) ([]Page, error) {
	year := d.Yearly.Year

	lifetimePie, err := b.charts.Pie("Lifetime Top 10 Spending", d.Lifetime.Breakdown)
	if err != nil {
		return nil, err
	}
	yearPie, err := b.charts.Pie(fmt.Sprintf("%d Top Spending", year), d.Yearly.Breakdown)
	if err != nil {
		return nil, err
	}
	trend, err := b.charts.Bar(fmt.Sprintf("%d Monthly Trend", year), d.Yearly.Months)
	if err != nil {
		return nil, err
	}

	overview := Page{
		Heading: "Financial Summary: All Years",
		Total:   "Total Lifetime Spending: " + b.money.Format(d.Lifetime.Total),
		Charts: []Image{
			{Name: "lifetime-pie", PNG: lifetimePie, X: 20, Y: 40, W: 170},
		},
	}

	analysis := Page{
		Heading: fmt.Sprintf("Year %d Analysis", year),
		Total:   fmt.Sprintf("Total Spending in %d: %s", year, b.money.Format(d.Yearly.Total)),
		Charts: []Image{
			{Name: "year-pie", PNG: yearPie, X: 10, Y: 40, W: 92},
			{Name: "year-trend", PNG: trend, X: 108, Y: 40, W: 92},
		},
		Table: &Table{
			Title: fmt.Sprintf("Top %d Transactions in %d", len(d.Yearly.Audit), year),
			Y:     120,
			Columns: []Column{
				{Title: "Date", Width: 30, Align: "L"},
				{Title: "Description", Width: 120, Align: "L"},
				{Title: "Amount", Width: 40, Align: "R"},
			},
			Rows: b.auditRows(d.Yearly.Audit),
		},
	}

	return []Page{overview, analysis}, nil
}

func (b *Builder) auditRows(txns []models.Transaction) [][]string {
	rows := make([][]string, 0, len(txns))
	for _, t := range txns {
		rows = append(rows, []string{
			t.Date.Format(models.DateLayout),
			cut(t.Description, maxDescriptionRunes),
			b.money.Plain(t.Amount),
		})
	}
	return rows
}

func cut(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
