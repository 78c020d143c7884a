// Package spreadsheet reads uploaded workbooks and writes the validation and
// tag status reports.
package spreadsheet

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for uploads that are not .xlsx workbooks.
var ErrUnsupportedFormat = errors.New("unsupported file format, expected .xlsx")

// Sheet is a parsed worksheet: the header row plus each data row keyed by
// header name.
type Sheet struct {
	Headers []string
	Rows    []map[string]string
}

// ReadWorkbook parses the first worksheet of an .xlsx upload. Legacy .xls
// files are rejected.
func ReadWorkbook(filename string, data []byte) (*Sheet, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		return nil, ErrUnsupportedFormat
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", filename, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no worksheets", filename)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return &Sheet{}, nil
	}

	headers := rows[0]
	sheet := &Sheet{Headers: headers}
	for _, raw := range rows[1:] {
		row := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(raw) {
				row[header] = raw[i]
			} else {
				row[header] = ""
			}
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

// HasColumns reports whether the sheet's headers form a superset of the
// required column names, returning the missing ones.
func (s *Sheet) HasColumns(required []string) (missing []string) {
	present := make(map[string]bool, len(s.Headers))
	for _, h := range s.Headers {
		present[h] = true
	}
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}
