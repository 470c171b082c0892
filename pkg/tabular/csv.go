package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DecodeCSV parses CSV bytes into a Sheet. The input encoding is detected and
// transcoded to UTF-8 first. Rows with the wrong column count are padded or
// truncated to the header width; rows the CSV reader cannot parse at all are
// skipped. Both defects are reported as warnings.
func DecodeCSV(data []byte) (*Sheet, error) {
	decoded, _, err := DetectAndDecode(data)
	if err != nil {
		return nil, fmt.Errorf("encoding detection failed: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	// Column-count mismatches are handled below with padding/truncation.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty file: no header row found")
		}
		return nil, fmt.Errorf("read header row: %w", err)
	}

	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	sheet := &Sheet{Header: header}
	width := len(header)
	rowNum := 0

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++

		if err != nil {
			sheet.Warnings = append(sheet.Warnings, Warning{
				Row:     rowNum,
				Message: fmt.Sprintf("parse error: %v", err),
			})
			continue
		}

		row = fitWidth(sheet, rowNum, row, width)
		sheet.Rows = append(sheet.Rows, row)
	}

	return sheet, nil
}

func fitWidth(sheet *Sheet, rowNum int, row []string, width int) []string {
	switch {
	case len(row) < width:
		sheet.Warnings = append(sheet.Warnings, Warning{
			Row:     rowNum,
			Message: fmt.Sprintf("row has %d columns, expected %d; padding with empty values", len(row), width),
		})
		padded := make([]string, width)
		copy(padded, row)
		return padded
	case len(row) > width:
		sheet.Warnings = append(sheet.Warnings, Warning{
			Row:     rowNum,
			Message: fmt.Sprintf("row has %d columns, expected %d; truncating extra columns", len(row), width),
		})
		return row[:width]
	default:
		return row
	}
}
