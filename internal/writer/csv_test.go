package writer

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/ledger"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/models"
)

func sampleLedger() *ledger.Ledger {
	return ledger.New([]models.Transaction{
		{Date: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), Amount: decimal.RequireFromString("25.9"), Description: "CARD PAYMENT, TESCO", Row: 1},
		{Date: time.Date(2024, 2, 16, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(2500), Description: "Rent", Row: 2},
	})
}

func TestCSVWriter_Write(t *testing.T) {
	meta := Metadata{
		Source: "jan.csv",
		Format: models.FormatCSV,
		Report: ledger.ParseReport{TotalRows: 4, Kept: 2, DroppedNonPositiveAmount: 1, DroppedBadDate: 1},
	}

	var buf bytes.Buffer
	w := &CSVWriter{IncludeMetadata: true}
	require.NoError(t, w.Write(&buf, sampleLedger(), meta))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 9)
	assert.Equal(t, "# Source,jan.csv", lines[0])
	assert.Equal(t, "# Dropped (date),1", lines[5])
	assert.Equal(t, "Date,Description,Amount,Year,Month Number,Month", lines[6])
	assert.Equal(t, `2024-01-15,"CARD PAYMENT, TESCO",25.90,2024,1,Jan`, lines[7])
	assert.Equal(t, "2024-02-16,Rent,2500.00,2024,2,Feb", lines[8])
}

func TestCSVWriter_NoMetadata(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{}
	require.NoError(t, w.Write(&buf, sampleLedger(), Metadata{}))

	assert.True(t, strings.HasPrefix(buf.String(), "Date,Description,Amount"))
	assert.NotContains(t, buf.String(), "# Source")
}

func TestCSVWriter_NoHeader(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{NoHeader: true}
	require.NoError(t, w.Write(&buf, sampleLedger(), Metadata{}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "2024-01-15,"))
}

func TestCSVWriter_WriteToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	w := &CSVWriter{}
	require.NoError(t, w.WriteToFile(path, sampleLedger(), Metadata{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Rent")

	err = w.WriteToFile(filepath.Join(t.TempDir(), "missing", "ledger.csv"), sampleLedger(), Metadata{})
	assert.Error(t, err)
}

type closeFailer struct {
	bytes.Buffer
	err    error
	closed bool
}

func (c *closeFailer) Close() error {
	c.closed = true
	return c.err
}

func TestCSVWriter_CloseErrorReported(t *testing.T) {
	w := &CSVWriter{}

	out := &closeFailer{err: errors.New("disk full")}
	err := w.writeAndClose(out, sampleLedger(), Metadata{})
	require.Error(t, err)
	assert.ErrorContains(t, err, "disk full")
	assert.True(t, out.closed)

	ok := &closeFailer{}
	require.NoError(t, w.writeAndClose(ok, sampleLedger(), Metadata{}))
	assert.Contains(t, ok.String(), "Rent")
}
