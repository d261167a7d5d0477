package extractor

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/models"
)

// Sheet names preferred over the first sheet, matched case-insensitively.
var preferredSheets = []string{"transactions", "statement", "sheet1"}

// extractXLSX reads the statement sheet of a workbook; row 1 is the header.
func extractXLSX(data []byte) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheet := pickSheet(f.GetSheetList())
	if sheet == "" {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}

	// raw values keep date serials away from the locale display format
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %s is empty", sheet)
	}

	dc := newDateCells(f, sheet)
	for r, row := range rows {
		for c, v := range row {
			if iso, ok := dc.convert(r, c, v); ok {
				row[c] = iso
			}
		}
	}
	return rows[0], rows[1:], nil
}

// dateCells rewrites date-styled serial numbers as YYYY-MM-DD.
type dateCells struct {
	f        *excelize.File
	sheet    string
	date1904 bool
	isDate   map[int]bool // style index -> date format
}

func newDateCells(f *excelize.File, sheet string) *dateCells {
	dc := &dateCells{f: f, sheet: sheet, isDate: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		dc.date1904 = *props.Date1904
	}
	return dc
}

func (dc *dateCells) convert(r, c int, v string) (string, bool) {
	serial, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || serial <= 0 {
		return "", false
	}
	cell, err := excelize.CoordinatesToCellName(c+1, r+1)
	if err != nil {
		return "", false
	}
	idx, err := dc.f.GetCellStyle(dc.sheet, cell)
	if err != nil || idx == 0 {
		return "", false
	}

	isDate, seen := dc.isDate[idx]
	if !seen {
		if style, err := dc.f.GetStyle(idx); err == nil {
			isDate = isDateStyle(style)
		}
		dc.isDate[idx] = isDate
	}
	if !isDate {
		return "", false
	}

	t, err := excelize.ExcelDateToTime(serial, dc.date1904)
	if err != nil {
		return "", false
	}
	return t.Format(models.DateLayout), true
}

// Built-in number formats that render dates or date-times.
func isBuiltinDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22, id >= 27 && id <= 36, id >= 50 && id <= 58:
		return true
	}
	return false
}

var (
	quotedText = regexp.MustCompile(`"[^"]*"|\\.|\[[^\]]*\]`)
	dateTokens = regexp.MustCompile(`[ydY]|m+[/\-. ]`)
)

func isDateStyle(style *excelize.Style) bool {
	if style.CustomNumFmt != nil {
		code := quotedText.ReplaceAllString(*style.CustomNumFmt, "")
		return dateTokens.MatchString(code)
	}
	return isBuiltinDateFormat(style.NumFmt)
}

func pickSheet(sheets []string) string {
	for _, preferred := range preferredSheets {
		for _, s := range sheets {
			if strings.EqualFold(strings.TrimSpace(s), preferred) {
				return s
			}
		}
	}
	if len(sheets) == 0 {
		return ""
	}
	return sheets[0]
}

// extractXLS reads the first sheet of a legacy BIFF workbook.
func extractXLS(data []byte) (header []string, rows [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("XLS reader crashed: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, nil, fmt.Errorf("opening XLS workbook: %w", err)
	}
	if wb.NumSheets() == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil, fmt.Errorf("could not read first sheet")
	}

	var records [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		last := row.LastCol()
		cells := make([]string, last)
		for c := 0; c < last; c++ {
			cells[c] = row.Col(c)
		}
		if hasContent(cells) {
			records = append(records, cells)
		}
	}

	if len(records) == 0 {
		return nil, nil, fmt.Errorf("first sheet is empty")
	}
	return records[0], records[1:], nil
}
