package tabular

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DecodeXLSX extracts the first worksheet of an XLSX workbook into a Sheet.
// The first row is treated as the header; shorter data rows are padded to the
// header width (excelize omits trailing empty cells).
func DecodeXLSX(data []byte) (*Sheet, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no worksheets")
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty worksheet: no header row found")
	}

	header := rows[0]
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	sheet := &Sheet{Header: header}
	width := len(header)

	for i, row := range rows[1:] {
		rowNum := i + 1
		// Trailing empty cells are omitted by excelize; pad silently.
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		} else if len(row) > width {
			row = fitWidth(sheet, rowNum, row, width)
		}
		sheet.Rows = append(sheet.Rows, row)
	}

	return sheet, nil
}
