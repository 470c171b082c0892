package affiliations

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmcallister/orcview/pkg/tabular"
)

// Ingest parses raw spreadsheet bytes (CSV or XLSX) into a canonical table and
// a list of validation issues. Ingestion fails wholesale with a *SchemaError
// when required columns are missing; all row-level defects are non-fatal and
// reported as issues. The returned table preserves source row order, minus
// rows excluded for invalid ORCID iDs.
func Ingest(data []byte) (*Table, []Issue, error) {
	sheet, err := tabular.Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidFile, err)
	}
	return ingestSheet(sheet)
}

func ingestSheet(sheet *tabular.Sheet) (*Table, []Issue, error) {
	index, err := columnIndex(sheet.Header)
	if err != nil {
		return nil, nil, err
	}

	table := &Table{SourceRows: len(sheet.Rows)}
	var issues []Issue

	for _, warning := range sheet.Warnings {
		issues = append(issues, Issue{
			Row:     warning.Row,
			Kind:    IssueMalformedRow,
			Message: warning.Message,
		})
	}

	for i, row := range sheet.Rows {
		rowNum := i + 1
		cell := func(col string) string {
			return strings.TrimSpace(row[index[col]])
		}

		record := Record{
			GivenNames:      cell(ColGivenNames),
			FamilyName:      cell(ColFamilyName),
			Role:            cell(ColRole),
			Title:           cell(ColTitle),
			Department:      cell(ColDepartment),
			Source:          cell(ColSource),
			IdentifierType:  cell(ColIdentifierType),
			IdentifierValue: cell(ColIdentifierValue),
		}

		record.StartYear = coerceYear(cell(ColStartYear), rowNum, ColStartYear, &issues)
		record.EndYear = coerceYear(cell(ColEndYear), rowNum, ColEndYear, &issues)
		record.DateCreated = coerceTimestamp(cell(ColDateCreated), rowNum, ColDateCreated, &issues)
		record.LastModified = coerceTimestamp(cell(ColLastModified), rowNum, ColLastModified, &issues)

		rawID := cell(ColOrcidID)
		id, ok := NormalizeOrcidID(rawID)
		if !ok {
			issues = append(issues, Issue{
				Row:     rowNum,
				Kind:    IssueInvalidIdentifier,
				Column:  ColOrcidID,
				Value:   rawID,
				Message: "ORCID iD is missing or malformed; row excluded",
			})
			continue
		}
		record.OrcidID = id

		if record.StartYear != nil && record.EndYear != nil && *record.EndYear < *record.StartYear {
			issues = append(issues, Issue{
				Row:     rowNum,
				Kind:    IssueInconsistentYearRange,
				Column:  ColEndYear,
				Value:   fmt.Sprintf("%d < %d", *record.EndYear, *record.StartYear),
				Message: "end year precedes start year; row retained",
			})
		}

		table.Records = append(table.Records, record)
	}

	return table, issues, nil
}

// columnIndex maps each required column to its position in the header,
// returning a *SchemaError naming every missing column. Extra columns are
// ignored. Matching is exact and case-sensitive.
func columnIndex(header []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		if _, seen := positions[h]; !seen {
			positions[h] = i
		}
	}

	index := make(map[string]int, len(RequiredColumns()))
	var missing []string
	for _, col := range RequiredColumns() {
		pos, ok := positions[col]
		if !ok {
			missing = append(missing, col)
			continue
		}
		index[col] = pos
	}

	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}
	return index, nil
}

// coerceYear parses a year cell. Empty cells are absent without issue.
// Integral floats ("2015.0") are accepted because Excel exports produce them.
func coerceYear(raw string, row int, col string, issues *[]Issue) *int {
	if raw == "" {
		return nil
	}

	if year, err := strconv.Atoi(raw); err == nil {
		return &year
	}

	if f, err := strconv.ParseFloat(raw, 64); err == nil && f == float64(int(f)) {
		year := int(f)
		return &year
	}

	*issues = append(*issues, Issue{
		Row:     row,
		Kind:    IssueUnparseableYear,
		Column:  col,
		Value:   raw,
		Message: "year is not an integer; field set absent",
	})
	return nil
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01-02T15:04:05",
}

// coerceTimestamp parses a timestamp cell. Empty cells are absent without
// issue. All-digit values of plausible length are treated as epoch
// milliseconds, the ORCID API's wire format for created/modified dates.
func coerceTimestamp(raw string, row int, col string, issues *[]Issue) *time.Time {
	if raw == "" {
		return nil
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}

	if len(raw) >= 10 && isDigits(raw) {
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
			t := time.UnixMilli(ms).UTC()
			return &t
		}
	}

	*issues = append(*issues, Issue{
		Row:     row,
		Kind:    IssueUnparseableDate,
		Column:  col,
		Value:   raw,
		Message: "timestamp is not in a recognized format; field set absent",
	})
	return nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
