// Package xlsx reads holdings rows out of a brokerage spreadsheet export.
package xlsx

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RawRow maps header labels to cell values for one data row.
type RawRow map[string]string

// SheetNotFoundError indicates the workbook does not contain the named sheet.
type SheetNotFoundError struct {
	Sheet string
}

func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("sheet '%s' not found in workbook", e.Sheet)
}

// MalformedSpreadsheetError indicates the workbook could not be interpreted,
// e.g. no header row could be determined.
type MalformedSpreadsheetError struct {
	Reason string
}

func (e *MalformedSpreadsheetError) Error() string {
	return fmt.Sprintf("malformed spreadsheet: %s", e.Reason)
}

// ExtractRows reads the named sheet and returns the header labels plus one
// RawRow per non-empty data row. The first non-empty row is the header; rows
// with no values are skipped. The header is returned even when no data rows
// follow it, so callers can validate required columns on empty exports.
func ExtractRows(r io.Reader, sheetName string) ([]string, []RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, &MalformedSpreadsheetError{Reason: err.Error()}
	}
	defer f.Close()

	return extractFromFile(f, sheetName)
}

func extractFromFile(f *excelize.File, sheetName string) ([]string, []RawRow, error) {
	idx, err := f.GetSheetIndex(sheetName)
	if err != nil || idx < 0 {
		return nil, nil, &SheetNotFoundError{Sheet: sheetName}
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, &MalformedSpreadsheetError{Reason: err.Error()}
	}

	// First non-empty row is the header.
	headerIdx := -1
	var header []string
	for i, row := range rows {
		if !rowEmpty(row) {
			headerIdx = i
			header = row
			break
		}
	}
	if headerIdx < 0 {
		return nil, nil, &MalformedSpreadsheetError{Reason: "no header row found"}
	}

	labels := make([]string, 0, len(header))
	for _, label := range header {
		if label = strings.TrimSpace(label); label != "" {
			labels = append(labels, label)
		}
	}

	var result []RawRow
	for _, row := range rows[headerIdx+1:] {
		if rowEmpty(row) {
			continue
		}
		raw := make(RawRow, len(header))
		for i, label := range header {
			label = strings.TrimSpace(label)
			if label == "" {
				continue
			}
			if i < len(row) {
				raw[label] = strings.TrimSpace(row[i])
			} else {
				raw[label] = ""
			}
		}
		result = append(result, raw)
	}

	return labels, result, nil
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
