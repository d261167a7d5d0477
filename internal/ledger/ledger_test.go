package ledger

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/models"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/normalizer"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func cand(row int, date time.Time, ok bool, amount string, desc string) normalizer.Candidate {
	return normalizer.Candidate{
		Row:         row,
		Date:        date,
		DateOK:      ok,
		Amount:      decimal.RequireFromString(amount),
		Description: desc,
	}
}

func TestBuild(t *testing.T) {
	l, report := Build([]normalizer.Candidate{
		cand(1, day(2024, 1, 5), true, "150", "Coffee Shop"),
		cand(2, day(2024, 1, 6), true, "-5000", "Salary Credit"),
		cand(3, time.Time{}, false, "100", "Broken"),
		cand(4, time.Time{}, false, "0", "Both bad"),
		cand(5, day(2023, 12, 31), true, "20.5", "Snacks"),
	})

	require.Equal(t, 2, l.Len())
	assert.Equal(t, "Coffee Shop", l.At(0).Description)
	assert.Equal(t, 5, l.At(1).Row)

	assert.Equal(t, ParseReport{
		TotalRows:                5,
		Kept:                     2,
		DroppedNonPositiveAmount: 2,
		DroppedBadDate:           1,
	}, report)
	assert.Equal(t, 3, report.Dropped())
}

func TestBuild_EmptyIsValid(t *testing.T) {
	l, report := Build([]normalizer.Candidate{
		cand(1, day(2024, 1, 1), true, "0", "N/A"),
		cand(2, day(2024, 1, 2), true, "0", "N/A"),
	})
	assert.Equal(t, 0, l.Len())
	assert.True(t, l.Total().IsZero())
	assert.Empty(t, l.Years())
	assert.Equal(t, 2, report.DroppedNonPositiveAmount)
}

func TestBuild_MalformedRowsNeverSurvive(t *testing.T) {
	faker := gofakeit.New(99)
	amounts := []string{"0", "-1", "-0.01", "12.34", "99999", "0.00"}

	var cands []normalizer.Candidate
	for i := 0; i < 500; i++ {
		ok := faker.Bool()
		date := time.Time{}
		if ok {
			date = faker.DateRange(day(2019, 1, 1), day(2025, 12, 31))
		}
		cands = append(cands, cand(i+1, date, ok, faker.RandomString(amounts), faker.Company()))
	}

	l, report := Build(cands)
	assert.Equal(t, len(cands), report.Kept+report.Dropped())
	for _, txn := range l.All() {
		assert.True(t, txn.Amount.IsPositive(), "row %d", txn.Row)
		assert.False(t, txn.Date.IsZero(), "row %d", txn.Row)
	}
}

func sample() *Ledger {
	return New([]models.Transaction{
		{Date: day(2023, 3, 1), Amount: decimal.NewFromInt(10), Description: "A", Row: 1},
		{Date: day(2024, 1, 2), Amount: decimal.NewFromInt(20), Description: "B", Row: 2},
		{Date: day(2024, 2, 3), Amount: decimal.NewFromInt(30), Description: "C", Row: 3},
		{Date: day(2022, 7, 4), Amount: decimal.NewFromInt(40), Description: "D", Row: 4},
	})
}

func TestLedger_Queries(t *testing.T) {
	l := sample()

	assert.Equal(t, 4, l.Len())
	assert.True(t, decimal.NewFromInt(100).Equal(l.Total()))
	assert.Equal(t, []int{2024, 2023, 2022}, l.Years())

	y := l.FilterYear(2024)
	require.Equal(t, 2, y.Len())
	assert.Equal(t, "B", y.At(0).Description)
	assert.Equal(t, "C", y.At(1).Description)
	assert.Equal(t, 0, l.FilterYear(1999).Len())
}

func TestLedger_Immutable(t *testing.T) {
	l := sample()

	txns := l.Transactions()
	txns[0].Description = "changed"
	assert.Equal(t, "A", l.At(0).Description)

	_ = l.Filter(func(models.Transaction) bool { return false })
	assert.Equal(t, 4, l.Len())
}

func TestLedger_NilSafe(t *testing.T) {
	var l *Ledger
	assert.Equal(t, 0, l.Len())
	assert.Nil(t, l.Transactions())
	assert.True(t, l.Total().IsZero())
	assert.Equal(t, 0, Empty().Len())
}

func TestLedger_AllStopsEarly(t *testing.T) {
	var seen []int
	for i := range sample().All() {
		seen = append(seen, i)
		if i == 1 {
			break
		}
	}
	assert.Equal(t, []int{0, 1}, seen)
}
