package affiliations

// IssueKind classifies a validation issue detected during ingestion.
type IssueKind string

const (
	// IssueUnparseableYear marks a year cell that could not be coerced to an
	// integer. The field is set absent and the row is retained.
	IssueUnparseableYear IssueKind = "unparseable_year"

	// IssueUnparseableDate marks a timestamp cell that could not be parsed.
	// The field is set absent and the row is retained.
	IssueUnparseableDate IssueKind = "unparseable_date"

	// IssueInvalidIdentifier marks a row whose ORCID iD fails validation.
	// The row is excluded from the canonical table.
	IssueInvalidIdentifier IssueKind = "invalid_identifier"

	// IssueInconsistentYearRange marks a row whose end year precedes its start
	// year. The row is retained unchanged.
	IssueInconsistentYearRange IssueKind = "inconsistent_year_range"

	// IssueMalformedRow marks a row whose shape did not match the header:
	// unparseable rows are skipped, short rows padded, long rows truncated.
	IssueMalformedRow IssueKind = "malformed_row"
)

// Issue is one row-level validation finding. Row is 1-based over the data rows
// of the source file (the header row is not counted).
type Issue struct {
	Row     int       `json:"row"`
	Kind    IssueKind `json:"kind"`
	Column  string    `json:"column,omitempty"`
	Value   string    `json:"value,omitempty"`
	Message string    `json:"message"`
}

// CountIssues tallies issues by kind so the UI can present data quality at a
// glance after every upload.
func CountIssues(issues []Issue) map[IssueKind]int {
	counts := make(map[IssueKind]int)
	for _, issue := range issues {
		counts[issue.Kind]++
	}
	return counts
}
