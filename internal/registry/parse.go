package registry

import (
	"strconv"
	"time"

	"github.com/jmcallister/orcview/internal/affiliations"
)

// SourceName marks records fetched from the registry, distinguishing them
// from file-upload rows in the Source column and the source filter.
const SourceName = "ORCID API"

type expandedSearchResponse struct {
	NumFound int `json:"num-found"`
	Results  []struct {
		OrcidID string `json:"orcid-id"`
	} `json:"expanded-result"`
}

type orcidRecord struct {
	OrcidIdentifier struct {
		Path string `json:"path"`
	} `json:"orcid-identifier"`
	Person struct {
		Name struct {
			GivenNames *value `json:"given-names"`
			FamilyName *value `json:"family-name"`
		} `json:"name"`
	} `json:"person"`
	Activities struct {
		Employments struct {
			Summaries []employmentSummary `json:"employment-summary"`
		} `json:"employments"`
	} `json:"activities-summary"`
}

type employmentSummary struct {
	RoleTitle    string     `json:"role-title"`
	Department   string     `json:"department-name"`
	StartDate    *fuzzyDate `json:"start-date"`
	EndDate      *fuzzyDate `json:"end-date"`
	CreatedDate  *millis    `json:"created-date"`
	ModifiedDate *millis    `json:"last-modified-date"`
	Organization struct {
		Disambiguated struct {
			Source     string `json:"disambiguation-source"`
			Identifier string `json:"disambiguated-organization-identifier"`
		} `json:"disambiguated-organization"`
	} `json:"organization"`
}

type value struct {
	Value string `json:"value"`
}

// fuzzyDate is ORCID's partial date; only the year is used here. Year values
// arrive as strings on the wire.
type fuzzyDate struct {
	Year *value `json:"year"`
}

type millis struct {
	Value int64 `json:"value"`
}

// recordAffiliations flattens an ORCID record's employment summaries into
// affiliation records, one per employment. Records whose iD fails validation
// are skipped entirely.
func recordAffiliations(rec *orcidRecord) []affiliations.Record {
	id, ok := affiliations.NormalizeOrcidID(rec.OrcidIdentifier.Path)
	if !ok {
		return nil
	}

	out := make([]affiliations.Record, 0, len(rec.Activities.Employments.Summaries))
	for _, emp := range rec.Activities.Employments.Summaries {
		out = append(out, affiliations.Record{
			OrcidID:         id,
			GivenNames:      stringValue(rec.Person.Name.GivenNames),
			FamilyName:      stringValue(rec.Person.Name.FamilyName),
			Role:            "EMPLOYMENT",
			Title:           emp.RoleTitle,
			Department:      emp.Department,
			StartYear:       dateYear(emp.StartDate),
			EndYear:         dateYear(emp.EndDate),
			DateCreated:     millisTime(emp.CreatedDate),
			LastModified:    millisTime(emp.ModifiedDate),
			Source:          SourceName,
			IdentifierType:  emp.Organization.Disambiguated.Source,
			IdentifierValue: emp.Organization.Disambiguated.Identifier,
		})
	}

	return out
}

func stringValue(v *value) string {
	if v == nil {
		return ""
	}
	return v.Value
}

func dateYear(d *fuzzyDate) *int {
	if d == nil || d.Year == nil {
		return nil
	}
	year, err := strconv.Atoi(d.Year.Value)
	if err != nil {
		return nil
	}
	return &year
}

func millisTime(m *millis) *time.Time {
	if m == nil {
		return nil
	}
	t := time.UnixMilli(m.Value).UTC()
	return &t
}
