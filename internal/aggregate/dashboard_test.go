package aggregate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/ledger"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/models"
)

func dashboardLedger() *ledger.Ledger {
	return ledger.New([]models.Transaction{
		txn(1, "2023-06-01", 400, "Rent"),
		txn(2, "2024-01-05", 150, "Coffee Shop"),
		txn(3, "2024-01-20", 900, "Rent"),
		txn(4, "2024-02-02", 60, "Coffee Beans"),
	})
}

func TestBuildDashboard_DefaultsToLatestYear(t *testing.T) {
	d := BuildDashboard(dashboardLedger(), Query{Budget: decimal.NewFromInt(1000)})

	assert.Equal(t, []int{2024, 2023}, d.Years)
	assert.True(t, decimal.NewFromInt(1510).Equal(d.Lifetime.Total))
	assert.Equal(t, 4, d.Lifetime.Count)
	assert.Equal(t, "Rent", d.Lifetime.Breakdown[0].Description)

	assert.Equal(t, 2024, d.Yearly.Year)
	assert.True(t, decimal.NewFromInt(1110).Equal(d.Yearly.Total))
	require.Len(t, d.Yearly.Months, 2)
	assert.Equal(t, OverBudget, d.Yearly.Months[0].Class)
	assert.Equal(t, UnderBudget, d.Yearly.Months[1].Class)
	require.Len(t, d.Yearly.Audit, 3)
	assert.Equal(t, 3, d.Yearly.Audit[0].Row)
}

func TestBuildDashboard_SearchOnlyNarrowsYear(t *testing.T) {
	d := BuildDashboard(dashboardLedger(), Query{Year: 2024, Search: "coffee", TopN: 1})

	assert.Equal(t, 4, d.Lifetime.Count)
	assert.Len(t, d.Lifetime.Breakdown, 1)

	assert.Equal(t, 2, d.Yearly.Count)
	assert.True(t, decimal.NewFromInt(210).Equal(d.Yearly.Total))
	require.Len(t, d.Yearly.Audit, 1)
	assert.Equal(t, "Coffee Shop", d.Yearly.Audit[0].Description)
}

func TestBuildDashboard_EmptyLedger(t *testing.T) {
	d := BuildDashboard(ledger.Empty(), Query{})

	assert.Empty(t, d.Years)
	assert.True(t, d.Lifetime.Total.IsZero())
	assert.Equal(t, 0, d.Yearly.Year)
	assert.Empty(t, d.Yearly.Months)
	assert.Empty(t, d.Yearly.Audit)
}

func TestBuildDashboard_UnknownYear(t *testing.T) {
	d := BuildDashboard(dashboardLedger(), Query{Year: 1999})
	assert.Equal(t, 1999, d.Yearly.Year)
	assert.Equal(t, 0, d.Yearly.Count)
}
