package affiliations

// Summary holds the headline metrics computed over the filtered rows:
// the dashboard's metrics row.
type Summary struct {
	TotalRows        int      `json:"total_rows"`
	UniqueIDs        int      `json:"unique_ids"`
	ActiveCount      int      `json:"active_count"`
	AvgDurationYears *float64 `json:"avg_duration_years,omitempty"`
}

// Summarize computes summary metrics over rows. AvgDurationYears is nil when
// no row has both a start and an end year.
func Summarize(rows []Record) Summary {
	summary := Summary{TotalRows: len(rows)}

	ids := make(map[string]struct{})
	durationTotal := 0
	durationCount := 0

	for i := range rows {
		r := &rows[i]
		ids[r.OrcidID] = struct{}{}
		if r.Active() {
			summary.ActiveCount++
		}
		if d, ok := r.Duration(); ok {
			durationTotal += d
			durationCount++
		}
	}

	summary.UniqueIDs = len(ids)
	if durationCount > 0 {
		avg := float64(durationTotal) / float64(durationCount)
		summary.AvgDurationYears = &avg
	}

	return summary
}
