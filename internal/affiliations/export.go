package affiliations

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"
)

// ExportCSV serializes records as UTF-8 CSV using the canonical column set and
// order. Years serialize as plain integers, timestamps as RFC 3339 UTC, and
// absent fields as empty cells, so an export re-ingests losslessly.
func ExportCSV(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(RequiredColumns()); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i := range records {
		if err := writer.Write(exportRow(&records[i])); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush: %w", err)
	}

	return buf.Bytes(), nil
}

func exportRow(r *Record) []string {
	return []string{
		r.OrcidID,
		r.GivenNames,
		r.FamilyName,
		r.Role,
		r.Title,
		r.Department,
		yearCell(r.StartYear),
		yearCell(r.EndYear),
		timeCell(r.DateCreated),
		timeCell(r.LastModified),
		r.Source,
		r.IdentifierType,
		r.IdentifierValue,
	}
}

func yearCell(year *int) string {
	if year == nil {
		return ""
	}
	return strconv.Itoa(*year)
}

func timeCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
