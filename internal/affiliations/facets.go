package affiliations

import "slices"

// Facets describes the filterable vocabulary of a canonical table: the
// distinct roles, departments, and sources plus the observed start-year
// bounds. The UI populates its filter controls from these.
type Facets struct {
	Roles       []string `json:"roles"`
	Departments []string `json:"departments"`
	Sources     []string `json:"sources"`
	MinYear     *int     `json:"min_year,omitempty"`
	MaxYear     *int     `json:"max_year,omitempty"`
}

// FacetsOf computes filter facets over the full (unfiltered) table. Values are
// sorted lexically; empty departments and sources surface as "(none)".
func FacetsOf(table *Table) Facets {
	facets := Facets{Roles: []string{}, Departments: []string{}, Sources: []string{}}
	if table == nil {
		return facets
	}

	roles := make(map[string]struct{})
	departments := make(map[string]struct{})
	sources := make(map[string]struct{})

	for i := range table.Records {
		r := &table.Records[i]
		roles[r.Role] = struct{}{}

		department := r.Department
		if department == "" {
			department = DepartmentNone
		}
		departments[department] = struct{}{}

		source := r.Source
		if source == "" {
			source = DepartmentNone
		}
		sources[source] = struct{}{}

		if r.StartYear != nil {
			if facets.MinYear == nil || *r.StartYear < *facets.MinYear {
				year := *r.StartYear
				facets.MinYear = &year
			}
			if facets.MaxYear == nil || *r.StartYear > *facets.MaxYear {
				year := *r.StartYear
				facets.MaxYear = &year
			}
		}
	}

	for role := range roles {
		facets.Roles = append(facets.Roles, role)
	}
	for department := range departments {
		facets.Departments = append(facets.Departments, department)
	}
	for source := range sources {
		facets.Sources = append(facets.Sources, source)
	}
	slices.Sort(facets.Roles)
	slices.Sort(facets.Departments)
	slices.Sort(facets.Sources)

	return facets
}
