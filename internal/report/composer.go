package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// Image is a PNG placed on a page. Coordinates are in millimetres from
// the top-left corner; height follows the aspect ratio.
type Image struct {
	Name string
	PNG  []byte
	X, Y float64
	W    float64
}

// Column is one column of a page table.
type Column struct {
	Title string
	Width float64
	Align string // "L", "C" or "R"
}

// Table is a bordered grid drawn at Y below the page images.
type Table struct {
	Title   string
	Y       float64
	Columns []Column
	Rows    [][]string
}

// Page is the content of one report page.
type Page struct {
	Heading string
	Total   string
	Charts  []Image
	Table   *Table
}

// Composer serializes pages into a paginated document.
type Composer interface {
	Compose(pages []Page) ([]byte, error)
}

// FPDF composes A4 portrait PDFs with the core Helvetica font.
type FPDF struct{}

func (FPDF) Compose(pages []Page) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 10)
	// core fonts are cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, p := range pages {
		pdf.AddPage()

		pdf.SetFont("Helvetica", "B", 18)
		pdf.CellFormat(0, 10, tr(p.Heading), "", 1, "L", false, 0, "")
		if p.Total != "" {
			pdf.SetFont("Helvetica", "", 13)
			pdf.CellFormat(0, 8, tr(p.Total), "", 1, "L", false, 0, "")
		}

		for _, img := range p.Charts {
			if len(img.PNG) == 0 {
				continue
			}
			opts := fpdf.ImageOptions{ImageType: "PNG"}
			pdf.RegisterImageOptionsReader(img.Name, opts, bytes.NewReader(img.PNG))
			pdf.ImageOptions(img.Name, img.X, img.Y, img.W, 0, false, opts, 0, "")
		}

		if p.Table != nil {
			drawTable(pdf, tr, p.Table)
		}

		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("composing page %q: %w", p.Heading, err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func drawTable(pdf *fpdf.Fpdf, tr func(string) string, t *Table) {
	const rowHeight = 7.0

	pdf.SetY(t.Y)
	if t.Title != "" {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, tr(t.Title), "", 1, "L", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range t.Columns {
		pdf.CellFormat(c.Width, rowHeight, tr(c.Title), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range t.Rows {
		for i, c := range t.Columns {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			pdf.CellFormat(c.Width, rowHeight, tr(cell), "1", 0, c.Align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}
