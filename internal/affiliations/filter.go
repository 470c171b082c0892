package affiliations

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

// YearRange is an inclusive [Min, Max] year interval.
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Criteria is a user-supplied filter configuration, recreated per interaction.
// An empty selection means no restriction on that dimension; a nil Years means
// no year filtering. Departments and Sources may include the "(none)" sentinel
// to select records with an empty value.
type Criteria struct {
	Roles       []string   `json:"roles,omitempty"`
	Departments []string   `json:"departments,omitempty"`
	Sources     []string   `json:"sources,omitempty"`
	Years       *YearRange `json:"years,omitempty"`
}

// Empty reports whether the criteria impose no restriction at all.
func (c *Criteria) Empty() bool {
	return len(c.Roles) == 0 && len(c.Departments) == 0 && len(c.Sources) == 0 && c.Years == nil
}

// CriteriaFromQuery extracts filter criteria from URL query parameters:
// repeated or comma-separated "role", "department", and "source" values, plus
// "year_min"/"year_max". A year range forms only when both bounds parse.
func CriteriaFromQuery(values url.Values) Criteria {
	criteria := Criteria{
		Roles:       multiValue(values, "role"),
		Departments: multiValue(values, "department"),
		Sources:     multiValue(values, "source"),
	}

	minYear, minErr := strconv.Atoi(values.Get("year_min"))
	maxYear, maxErr := strconv.Atoi(values.Get("year_max"))
	if minErr == nil && maxErr == nil {
		criteria.Years = &YearRange{Min: minYear, Max: maxYear}
	}

	return criteria
}

func multiValue(values url.Values, key string) []string {
	var out []string
	for _, v := range values[key] {
		for _, part := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}

// Result is the outcome of applying criteria to a canonical table: the ordered
// filtered subsequence plus the derived aggregate views and summary metrics.
// Aggregates are computed over the filtered rows, never the full table.
type Result struct {
	Rows        []Record         `json:"rows"`
	Roles       []Bucket[string] `json:"roles"`
	Departments []Bucket[string] `json:"departments"`
	Years       []Bucket[int]    `json:"years"`
	Summary     Summary          `json:"summary"`
}

// Apply filters the table by criteria and recomputes all aggregate views.
// Each call recomputes fully; nothing is cached across interactions.
func Apply(table *Table, criteria Criteria) *Result {
	return ApplyAt(table, criteria, time.Now().Year())
}

// ApplyAt is Apply with an explicit current year, which bounds the effective
// interval of ongoing affiliations during year-range matching.
func ApplyAt(table *Table, criteria Criteria, currentYear int) *Result {
	rows := []Record{}
	if table != nil {
		for _, record := range table.Records {
			if matches(&record, &criteria, currentYear) {
				rows = append(rows, record)
			}
		}
	}

	return &Result{
		Rows:        rows,
		Roles:       RoleCounts(rows),
		Departments: DepartmentCounts(rows),
		Years:       YearCounts(rows),
		Summary:     Summarize(rows),
	}
}

func matches(r *Record, c *Criteria, currentYear int) bool {
	if len(c.Roles) > 0 && !slices.Contains(c.Roles, r.Role) {
		return false
	}
	if len(c.Departments) > 0 && !valueMatches(r.Department, c.Departments) {
		return false
	}
	if len(c.Sources) > 0 && !valueMatches(r.Source, c.Sources) {
		return false
	}
	if c.Years != nil && !yearsOverlap(r, c.Years, currentYear) {
		return false
	}
	return true
}

// valueMatches checks a selection that may carry the "(none)" sentinel for
// records with an empty value.
func valueMatches(value string, selected []string) bool {
	if value == "" {
		return slices.Contains(selected, DepartmentNone)
	}
	return slices.Contains(selected, value)
}

// yearsOverlap implements effective-year matching: a record with a start year
// spans [start, end] (or [start, currentYear] while ongoing) and matches when
// that interval intersects the requested range. Records without a start year
// never match a year filter.
func yearsOverlap(r *Record, years *YearRange, currentYear int) bool {
	if r.StartYear == nil {
		return false
	}

	end := currentYear
	if r.EndYear != nil {
		end = *r.EndYear
	}

	return *r.StartYear <= years.Max && end >= years.Min
}
