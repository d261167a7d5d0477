package extractor

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var errEmptyFile = errors.New("file is empty")

// candidate delimiters, in tie-break order
var delimiters = []rune{',', ';', '\t', '|'}

// extractCSV reads delimited text with the header on the first non-empty line.
func extractCSV(data []byte) ([]string, [][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, errEmptyFile
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = detectDelimiter(firstLine(data))
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	var records [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading CSV: %w", err)
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, nil, errEmptyFile
	}
	return records[0], records[1:], nil
}

func firstLine(data []byte) string {
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(strings.TrimRight(line, "\r"))
		if line != "" {
			return line
		}
	}
	return ""
}

// detectDelimiter picks the candidate that occurs most often in the header line.
func detectDelimiter(line string) rune {
	best := delimiters[0]
	bestCount := 0
	for _, d := range delimiters {
		if count := strings.Count(line, string(d)); count > bestCount {
			best, bestCount = d, count
		}
	}
	return best
}
