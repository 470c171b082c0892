// Package affiliations implements the ORCID affiliation domain: ingestion and
// validation of uploaded spreadsheets, filtering, aggregation, summary metrics,
// and CSV export of the canonical table.
package affiliations

import (
	"regexp"
	"strings"
	"time"
)

// Required column headers, in canonical order. Uploaded files must contain all
// of them with exact, case-sensitive names; CSV exports reproduce them verbatim.
const (
	ColOrcidID         = "ORCID ID"
	ColGivenNames      = "Given Names"
	ColFamilyName      = "Family Name"
	ColRole            = "Org Affiliation Relation Role"
	ColTitle           = "Org Affiliation Relation Title"
	ColDepartment      = "Department"
	ColStartYear       = "Start Year"
	ColEndYear         = "End Year"
	ColDateCreated     = "Date Created"
	ColLastModified    = "Last Modified"
	ColSource          = "Source"
	ColIdentifierType  = "Identifier Type"
	ColIdentifierValue = "Identifier Value"
)

// RequiredColumns returns the canonical column set in order.
func RequiredColumns() []string {
	return []string{
		ColOrcidID,
		ColGivenNames,
		ColFamilyName,
		ColRole,
		ColTitle,
		ColDepartment,
		ColStartYear,
		ColEndYear,
		ColDateCreated,
		ColLastModified,
		ColSource,
		ColIdentifierType,
		ColIdentifierValue,
	}
}

// Record is one affiliation: an asserted relationship between a researcher and
// an organization. OrcidID holds the bare 16-character identifier. Year and
// timestamp fields are nil when absent or unparseable in the source data.
type Record struct {
	OrcidID         string     `json:"orcid_id"`
	GivenNames      string     `json:"given_names"`
	FamilyName      string     `json:"family_name"`
	Role            string     `json:"role"`
	Title           string     `json:"title"`
	Department      string     `json:"department"`
	StartYear       *int       `json:"start_year"`
	EndYear         *int       `json:"end_year"`
	DateCreated     *time.Time `json:"date_created"`
	LastModified    *time.Time `json:"last_modified"`
	Source          string     `json:"source"`
	IdentifierType  string     `json:"identifier_type"`
	IdentifierValue string     `json:"identifier_value"`
}

// Active reports whether the affiliation is ongoing (no end year).
func (r *Record) Active() bool {
	return r.EndYear == nil
}

// Duration returns the affiliation length in years when both start and end
// year are present.
func (r *Record) Duration() (int, bool) {
	if r.StartYear == nil || r.EndYear == nil {
		return 0, false
	}
	return *r.EndYear - *r.StartYear, true
}

// Table is the canonical, validated in-memory set of affiliation records
// derived from one uploaded file. Records preserve source row order.
// SourceRows counts the data rows of the source file, including rows that
// were excluded during validation.
type Table struct {
	Records    []Record `json:"records"`
	SourceRows int      `json:"source_rows"`
}

// Len returns the number of records in the canonical table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

var orcidPattern = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{3}[\dX]$`)

var orcidURLPrefixes = []string{
	"https://orcid.org/",
	"http://orcid.org/",
	"orcid.org/",
}

// NormalizeOrcidID canonicalizes an ORCID iD to its bare 16-character form and
// reports whether it is valid. Accepts bare iDs and orcid.org URLs; validity
// requires the XXXX-XXXX-XXXX-XXXX shape and a correct ISO 7064 check digit.
func NormalizeOrcidID(raw string) (string, bool) {
	id := strings.TrimSpace(raw)
	for _, prefix := range orcidURLPrefixes {
		if rest, ok := strings.CutPrefix(id, prefix); ok {
			id = rest
			break
		}
	}
	id = strings.ToUpper(id)

	if !orcidPattern.MatchString(id) {
		return "", false
	}
	if !orcidChecksumValid(id) {
		return "", false
	}
	return id, true
}

// orcidChecksumValid verifies the ISO 7064 MOD 11-2 check digit that
// terminates every ORCID iD.
func orcidChecksumValid(id string) bool {
	total := 0
	for _, c := range id[:len(id)-1] {
		if c == '-' {
			continue
		}
		total = (total + int(c-'0')) * 2
	}

	remainder := total % 11
	check := (12 - remainder) % 11

	last := id[len(id)-1]
	if check == 10 {
		return last == 'X'
	}
	return int(last-'0') == check
}
