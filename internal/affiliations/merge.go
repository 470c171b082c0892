package affiliations

import "strconv"

// Merge combines two canonical tables, deduplicating on ORCID iD, role, start
// year, and end year with keep-first semantics: when the same affiliation
// appears in both, the base table's row wins. Order is preserved, base rows
// first. Either argument may be nil.
func Merge(base, incoming *Table) *Table {
	merged := &Table{
		SourceRows: base.Len() + incoming.Len(),
	}

	seen := make(map[string]struct{}, base.Len()+incoming.Len())
	appendUnique := func(records []Record) {
		for _, record := range records {
			key := dedupKey(&record)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged.Records = append(merged.Records, record)
		}
	}

	if base != nil {
		appendUnique(base.Records)
	}
	if incoming != nil {
		appendUnique(incoming.Records)
	}

	return merged
}

func dedupKey(r *Record) string {
	return r.OrcidID + "\x00" + r.Role + "\x00" + yearKey(r.StartYear) + "\x00" + yearKey(r.EndYear)
}

func yearKey(year *int) string {
	if year == nil {
		return ""
	}
	return strconv.Itoa(*year)
}
