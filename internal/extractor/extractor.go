// Package extractor turns an uploaded statement file into a RawTable:
// a header row plus the data rows below it, all as untyped text.
package extractor

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/models"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/resolver"
)

var (
	pdfMagic = []byte("%PDF")
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// PDFOpener builds a table extractor for one PDF document.
type PDFOpener func(data []byte) (TableExtractor, error)

// Extractor produces RawTables from statement files.
type Extractor struct {
	// OpenPDF opens PDFs; defaults to the positioned-text extractor.
	OpenPDF PDFOpener
	// FallbackPDF is tried when OpenPDF yields no table. Nil disables it.
	FallbackPDF PDFOpener
	// OCRPDF is the last resort for scanned pages. Nil disables it.
	OCRPDF PDFOpener
	// IsHeader picks the PDF header row; rows above it are preamble.
	// Nil takes the first row.
	IsHeader func(row []string) bool
}

// New returns an Extractor with the default PDF collaborators.
func New() *Extractor {
	return &Extractor{
		OpenPDF:     OpenPDF,
		FallbackPDF: OpenLayoutText,
		OCRPDF:      OpenOCR,
		IsHeader:    resolver.LooksLikeHeader,
	}
}

// DetectFormat identifies the statement format from the file name,
// falling back to the leading bytes of the content.
func DetectFormat(name string, data []byte) models.SourceFormat {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return models.FormatPDF
	case ".xlsx":
		return models.FormatXLSX
	case ".xls":
		return models.FormatXLS
	case ".csv", ".txt", ".tsv":
		return models.FormatCSV
	}

	switch {
	case bytes.HasPrefix(data, pdfMagic):
		return models.FormatPDF
	case bytes.HasPrefix(data, zipMagic):
		return models.FormatXLSX
	case bytes.HasPrefix(data, oleMagic):
		return models.FormatXLS
	default:
		return models.FormatCSV
	}
}

// ExtractFile reads a statement from disk and extracts its table.
func (e *Extractor) ExtractFile(path string) (*models.RawTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading statement %q: %w", path, err)
	}
	return e.Extract(data, DetectFormat(path, data))
}

// Extract produces the RawTable for data in the given format.
// Any failure to find a usable table is a *models.MalformedInputError.
func (e *Extractor) Extract(data []byte, format models.SourceFormat) (*models.RawTable, error) {
	var (
		header []string
		rows   [][]string
		err    error
	)

	switch format {
	case models.FormatCSV:
		header, rows, err = extractCSV(data)
	case models.FormatXLSX:
		header, rows, err = extractXLSX(data)
	case models.FormatXLS:
		header, rows, err = extractXLS(data)
	case models.FormatPDF:
		header, rows, err = e.extractPDF(data)
	default:
		return nil, &models.MalformedInputError{Format: format, Reason: "unsupported format"}
	}
	if err != nil {
		return nil, &models.MalformedInputError{Format: format, Reason: "could not read table", Err: err}
	}

	return newTable(format, header, rows)
}

// newTable validates the header and squares up the data rows.
func newTable(format models.SourceFormat, header []string, rows [][]string) (*models.RawTable, error) {
	if !hasContent(header) {
		return nil, &models.MalformedInputError{Format: format, Reason: "no header row found"}
	}

	table := &models.RawTable{
		Format: format,
		Header: trimCells(header),
		Rows:   make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		if !hasContent(row) {
			continue
		}
		row = trimCells(row)
		for len(row) < len(table.Header) {
			row = append(row, "")
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func hasContent(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return true
		}
	}
	return false
}

func trimCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}
