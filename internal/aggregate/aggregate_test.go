package aggregate

import (
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/ledger"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/models"
)

func txn(row int, date string, amount int64, desc string) models.Transaction {
	d, err := time.Parse(models.DateLayout, date)
	if err != nil {
		panic(err)
	}
	return models.Transaction{Date: d, Amount: decimal.NewFromInt(amount), Description: desc, Row: row}
}

func TestByDescription(t *testing.T) {
	l := ledger.New([]models.Transaction{
		txn(1, "2024-01-01", 100, "Rent"),
		txn(2, "2024-01-02", 30, "Coffee"),
		txn(3, "2024-01-03", 70, "Groceries"),
		txn(4, "2024-02-01", 100, "Rent"),
		txn(5, "2024-02-02", 70, "Fuel"),
	})

	got := ByDescription(l, 3)
	require.Len(t, got, 3)
	assert.Equal(t, "Rent", got[0].Description)
	assert.True(t, decimal.NewFromInt(200).Equal(got[0].Total))
	assert.Equal(t, 2, got[0].Count)
	// equal totals keep first appearance
	assert.Equal(t, "Groceries", got[1].Description)
	assert.Equal(t, "Fuel", got[2].Description)
}

func TestByDescription_Property(t *testing.T) {
	faker := gofakeit.New(3)
	for run := 0; run < 20; run++ {
		var txns []models.Transaction
		names := make([]string, faker.Number(1, 25))
		for i := range names {
			names[i] = fmt.Sprintf("%s %d", faker.Company(), i)
		}
		for i := 0; i < faker.Number(0, 200); i++ {
			txns = append(txns, models.Transaction{
				Date:        faker.DateRange(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)),
				Amount:      decimal.NewFromFloat(faker.Price(0.01, 5000)).Round(2),
				Description: faker.RandomString(names),
				Row:         i + 1,
			})
		}
		l := ledger.New(txns)

		got := ByDescription(l, DefaultTopN)
		assert.LessOrEqual(t, len(got), DefaultTopN)

		sum := decimal.Zero
		for i, g := range got {
			sum = sum.Add(g.Total)
			if i > 0 {
				assert.True(t, got[i-1].Total.GreaterThanOrEqual(g.Total))
			}
		}
		assert.True(t, sum.LessThanOrEqual(l.Total()))
	}
}

func TestByMonth_BudgetClass(t *testing.T) {
	l := ledger.New([]models.Transaction{
		txn(1, "2024-03-01", 1000, "Rent"),
		txn(2, "2024-03-15", 500, "Fuel"),
		txn(3, "2024-01-10", 999, "Gadget"),
		txn(4, "2024-05-10", 1000, "Exactly"),
		txn(5, "2023-03-01", 5000, "Other year"),
	})

	got := ByMonth(l, 2024, decimal.NewFromInt(1000))
	require.Len(t, got, 3)

	assert.Equal(t, 1, got[0].MonthNumber)
	assert.Equal(t, "Jan", got[0].MonthLabel)
	assert.Equal(t, UnderBudget, got[0].Class)
	assert.Equal(t, "#2CA02C", got[0].Color)

	assert.Equal(t, 3, got[1].MonthNumber)
	assert.True(t, decimal.NewFromInt(1500).Equal(got[1].Total))
	assert.Equal(t, OverBudget, got[1].Class)
	assert.Equal(t, "#D62728", got[1].Color)

	// at the limit is not over it
	assert.Equal(t, 5, got[2].MonthNumber)
	assert.Equal(t, UnderBudget, got[2].Class)
}

func TestByMonth_Empty(t *testing.T) {
	assert.Empty(t, ByMonth(ledger.Empty(), 2024, decimal.NewFromInt(1)))
}

func TestTopN(t *testing.T) {
	l := ledger.New([]models.Transaction{
		txn(1, "2024-01-01", 5, "a"),
		txn(2, "2024-01-02", 50, "b"),
		txn(3, "2024-01-03", 20, "c"),
		txn(4, "2024-01-04", 50, "d"),
	})

	got := TopN(l, 3)
	require.Len(t, got, 3)
	assert.Equal(t, []int{2, 4, 3}, []int{got[0].Row, got[1].Row, got[2].Row})

	assert.Len(t, TopN(l, 10), 4)
	assert.Equal(t, 1, l.At(0).Row, "ledger order untouched")
}

func TestTopN_Idempotent(t *testing.T) {
	faker := gofakeit.New(11)
	var txns []models.Transaction
	for i := 0; i < 60; i++ {
		txns = append(txns, models.Transaction{
			Date:        time.Date(2024, time.Month(faker.Number(1, 12)), 1, 0, 0, 0, 0, time.UTC),
			Amount:      decimal.NewFromInt(int64(faker.Number(1, 20))),
			Description: faker.Word(),
			Row:         i + 1,
		})
	}
	year := ledger.New(txns).FilterYear(2024)

	first := TopN(year, DefaultTopN)
	second := TopN(year, DefaultTopN)
	assert.Equal(t, first, second)

	again := TopN(ledger.New(first), DefaultTopN)
	assert.Equal(t, first, again)
}

func TestSearch(t *testing.T) {
	l := ledger.New([]models.Transaction{
		txn(1, "2024-01-01", 5, "Coffee Shop"),
		txn(2, "2024-01-02", 6, "COFFEE beans"),
		txn(3, "2024-01-03", 7, "Straße Café"),
		txn(4, "2024-01-04", 8, "Rent"),
	})

	tests := []struct {
		query string
		rows  []int
	}{
		{"coffee", []int{1, 2}},
		{"  Coffee ", []int{1, 2}},
		{"STRASSE", []int{3}},
		{"café", []int{3}},
		{"zzz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var rows []int
			for _, tx := range Search(l, tt.query).All() {
				rows = append(rows, tx.Row)
			}
			assert.Equal(t, tt.rows, rows)
		})
	}

	assert.Same(t, l, Search(l, ""))
	assert.Same(t, l, Search(l, "   "))
}

func TestTotal(t *testing.T) {
	l := ledger.New([]models.Transaction{txn(1, "2024-01-01", 5, "a"), txn(2, "2024-01-02", 7, "b")})
	assert.True(t, decimal.NewFromInt(12).Equal(Total(l)))
}

func TestBudgetClass_Color(t *testing.T) {
	assert.Equal(t, "#D62728", OverBudget.Color())
	assert.Equal(t, "#2CA02C", UnderBudget.Color())
}
