package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"regexp"
	"slices"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// TableExtractor yields the cell grid found on each page of a PDF.
// Pages are numbered from 1. A page without a table returns no rows.
type TableExtractor interface {
	NumPages() int
	ExtractTable(page int) ([][]string, error)
}

var errNoTable = errors.New("no table found in document")

// Horizontal gap, in text space units, that separates two cells on one line.
const cellGap = 8.0

// extractPDF concatenates the page tables in page order. The first row of
// the first non-empty table is the header; later copies of it are skipped.
// The fallbacks run in order until one yields a table.
func (e *Extractor) extractPDF(data []byte) ([]string, [][]string, error) {
	header, rows, err := readTables(e.OpenPDF, data, e.IsHeader)
	if err == nil {
		return header, rows, nil
	}

	stages := []struct {
		name string
		open PDFOpener
	}{
		{"layout fallback", e.FallbackPDF},
		{"ocr fallback", e.OCRPDF},
	}
	var notes []string
	for _, st := range stages {
		if st.open == nil {
			continue
		}
		h, r, fbErr := readTables(st.open, data, e.IsHeader)
		if fbErr == nil {
			return h, r, nil
		}
		notes = append(notes, fmt.Sprintf("%s: %v", st.name, fbErr))
	}
	if len(notes) == 0 {
		return nil, nil, err
	}
	return nil, nil, fmt.Errorf("%w (%s)", err, strings.Join(notes, "; "))
}

// readTables joins the page tables. The header is the first row isHeader
// accepts, or the first row when none is accepted; rows above it are
// statement preamble and dropped.
func readTables(open PDFOpener, data []byte, isHeader func([]string) bool) (header []string, rows [][]string, err error) {
	if open == nil {
		return nil, nil, errNoTable
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	doc, err := open(data)
	if err != nil {
		return nil, nil, err
	}

	var all [][]string
	for page := 1; page <= doc.NumPages(); page++ {
		table, err := doc.ExtractTable(page)
		if err != nil {
			return nil, nil, fmt.Errorf("page %d: %w", page, err)
		}
		for _, row := range table {
			if hasContent(row) {
				all = append(all, row)
			}
		}
	}
	if len(all) == 0 {
		return nil, nil, errNoTable
	}

	start := 0
	if isHeader != nil {
		if i := slices.IndexFunc(all, isHeader); i >= 0 {
			start = i
		}
	}
	header = all[start]
	for _, row := range all[start+1:] {
		if !sameRow(row, header) {
			rows = append(rows, row)
		}
	}

	if textQuality(header, rows) <= 0.6 {
		return nil, nil, fmt.Errorf("extracted text is not readable; the PDF may use custom font encodings")
	}
	return header, rows, nil
}

func sameRow(a, b []string) bool {
	return slices.Equal(trimCells(a), trimCells(b))
}

// textQuality returns the ratio of plain readable characters to all
// characters in the table. Garbage from identity-encoded fonts scores low.
func textQuality(header []string, rows [][]string) float64 {
	total, readable := 0, 0
	count := func(cells []string) {
		for _, c := range cells {
			for _, r := range c {
				total++
				if r < unicode.MaxASCII && (unicode.IsPrint(r) || unicode.IsSpace(r)) || r == '₹' || r == '£' || r == '€' {
					readable++
				}
			}
		}
	}
	count(header)
	for _, row := range rows {
		count(row)
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// positionedText reconstructs tables from the positioned text runs of
// each page: runs sharing a baseline form a row, wide gaps split cells.
type positionedText struct {
	r *pdf.Reader
}

// OpenPDF parses data with the pure-Go PDF reader.
func OpenPDF(data []byte) (TableExtractor, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	if r.NumPage() == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}
	return &positionedText{r: r}, nil
}

func (p *positionedText) NumPages() int {
	return p.r.NumPage()
}

func (p *positionedText) ExtractTable(n int) (rows [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	page := p.r.Page(n)
	if page.V.IsNull() {
		return nil, nil
	}

	type run struct {
		x, end float64
		s      string
	}
	lines := make(map[int][]run)
	for _, t := range page.Content().Text {
		if t.S == "" {
			continue
		}
		y := int(math.Round(t.Y))
		lines[y] = append(lines[y], run{x: t.X, end: t.X + t.W, s: t.S})
	}

	// PDF Y grows upwards
	ys := make([]int, 0, len(lines))
	for y := range lines {
		ys = append(ys, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ys)))

	for _, y := range ys {
		runs := lines[y]
		sort.SliceStable(runs, func(a, b int) bool { return runs[a].x < runs[b].x })

		var cells []string
		var cur strings.Builder
		prevEnd := runs[0].x
		for _, r := range runs {
			if r.x-prevEnd > cellGap && strings.TrimSpace(cur.String()) != "" {
				cells = append(cells, strings.TrimSpace(cur.String()))
				cur.Reset()
			}
			cur.WriteString(r.s)
			prevEnd = math.Max(prevEnd, r.end)
		}
		if s := strings.TrimSpace(cur.String()); s != "" {
			cells = append(cells, s)
		}

		// single-cell lines are titles, footers and page numbers
		if len(cells) >= 2 {
			rows = append(rows, cells)
		}
	}
	return rows, nil
}

// layoutText runs poppler's pdftotext -layout and splits each line into
// cells on runs of two or more spaces.
type layoutText struct {
	pages []string
}

var columnSep = regexp.MustCompile(`\s{2,}`)

// OpenLayoutText extracts the document with the external pdftotext
// command. It fails when poppler-utils is not installed.
func OpenLayoutText(data []byte) (TableExtractor, error) {
	bin, err := exec.LookPath("pdftotext")
	if err != nil {
		return nil, fmt.Errorf("pdftotext not available: %v", err)
	}

	tmp, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("writing temp file: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, bin, "-layout", tmp.Name(), "-").Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext failed: %v", err)
	}
	return newLayoutText(string(out)), nil
}

func newLayoutText(text string) *layoutText {
	// pdftotext separates pages with form feeds
	pages := strings.Split(text, "\f")
	if n := len(pages); n > 1 && strings.TrimSpace(pages[n-1]) == "" {
		pages = pages[:n-1]
	}
	return &layoutText{pages: pages}
}

func (l *layoutText) NumPages() int {
	return len(l.pages)
}

func (l *layoutText) ExtractTable(n int) ([][]string, error) {
	if n < 1 || n > len(l.pages) {
		return nil, fmt.Errorf("page %d out of range", n)
	}

	var rows [][]string
	for _, line := range strings.Split(l.pages[n-1], "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cells := columnSep.Split(line, -1)
		if len(cells) >= 2 {
			rows = append(rows, cells)
		}
	}
	return rows, nil
}
