package affiliations

import (
	"cmp"
	"slices"
)

// DepartmentNone is the sentinel bucket for records with an empty department.
// The same sentinel selects empty sources in filters and facets.
const DepartmentNone = "(none)"

// Bucket is one entry of an aggregate view: a categorical key and the number
// of filtered records falling under it.
type Bucket[K cmp.Ordered] struct {
	Key   K   `json:"key"`
	Count int `json:"count"`
}

// tally counts rows by key and orders the result for display: descending
// count, ties broken by ascending key.
func tally[K cmp.Ordered](rows []Record, key func(*Record) (K, bool)) []Bucket[K] {
	counts := make(map[K]int)
	for i := range rows {
		if k, ok := key(&rows[i]); ok {
			counts[k]++
		}
	}

	buckets := make([]Bucket[K], 0, len(counts))
	for k, n := range counts {
		buckets = append(buckets, Bucket[K]{Key: k, Count: n})
	}

	slices.SortStableFunc(buckets, func(a, b Bucket[K]) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return cmp.Compare(a.Key, b.Key)
	})

	return buckets
}

// RoleCounts aggregates filtered rows by role. Every row lands in exactly one
// bucket; roles are open strings, so even empty roles form a bucket.
func RoleCounts(rows []Record) []Bucket[string] {
	return tally(rows, func(r *Record) (string, bool) {
		return r.Role, true
	})
}

// DepartmentCounts aggregates filtered rows by department, bucketing empty
// departments under the "(none)" sentinel.
func DepartmentCounts(rows []Record) []Bucket[string] {
	return tally(rows, func(r *Record) (string, bool) {
		if r.Department == "" {
			return DepartmentNone, true
		}
		return r.Department, true
	})
}

// YearCounts aggregates filtered rows by start year. Rows without a start year
// are excluded from this aggregate only.
func YearCounts(rows []Record) []Bucket[int] {
	return tally(rows, func(r *Record) (int, bool) {
		if r.StartYear == nil {
			return 0, false
		}
		return *r.StartYear, true
	})
}
