package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/ledger"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/models"
)

// Metadata describes where a ledger came from.
type Metadata struct {
	Source string
	Format models.SourceFormat
	Report ledger.ParseReport
}

// CSVWriter writes a ledger to CSV format.
type CSVWriter struct {
	IncludeMetadata bool
	NoHeader        bool
}

type ledgerRow struct {
	Date        string `csv:"Date"`
	Description string `csv:"Description"`
	Amount      string `csv:"Amount"`
	Year        int    `csv:"Year"`
	MonthNumber int    `csv:"Month Number"`
	Month       string `csv:"Month"`
}

// WriteToFile writes the ledger to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, l *ledger.Ledger, meta Metadata) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	if err := w.writeAndClose(f, l, meta); err != nil {
		return fmt.Errorf("writing %q: %w", path, err)
	}
	return nil
}

// writeAndClose reports a failed Close as well, since buffered data may
// only reach the disk there.
func (w *CSVWriter) writeAndClose(out io.WriteCloser, l *ledger.Ledger, meta Metadata) error {
	err := w.Write(out, l, meta)
	if cerr := out.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("failed to close output: %w", cerr)
	}
	return err
}

// Write writes the ledger in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, l *ledger.Ledger, meta Metadata) error {
	// Write metadata as comment rows
	if w.IncludeMetadata {
		cw := csv.NewWriter(out)
		rows := [][]string{
			{"# Source", meta.Source},
			{"# Format", string(meta.Format)},
			{"# Rows", strconv.Itoa(meta.Report.TotalRows)},
			{"# Kept", strconv.Itoa(meta.Report.Kept)},
			{"# Dropped (amount)", strconv.Itoa(meta.Report.DroppedNonPositiveAmount)},
			{"# Dropped (date)", strconv.Itoa(meta.Report.DroppedBadDate)},
		}
		if err := cw.WriteAll(rows); err != nil {
			return fmt.Errorf("failed to write CSV metadata: %w", err)
		}
	}

	rows := make([]ledgerRow, 0, l.Len())
	for _, t := range l.All() {
		rows = append(rows, ledgerRow{
			Date:        t.Date.Format(models.DateLayout),
			Description: t.Description,
			Amount:      t.Amount.StringFixed(2),
			Year:        t.Year(),
			MonthNumber: t.MonthNumber(),
			Month:       t.MonthLabel(),
		})
	}

	marshal := gocsv.Marshal
	if w.NoHeader {
		marshal = gocsv.MarshalWithoutHeaders
	}
	if err := marshal(&rows, out); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}
