// filter.go
package processor

import (
	"sort"
	"time"

	"trafficstops/src/utils"
)

// Default analysis window: full calendar years 2017 through 2022. Both
// bounds are exclusive, so the partial coverage years 2016 and 2023 fall
// out entirely.
var (
	DefaultRangeLower = time.Date(2016, 12, 31, 0, 0, 0, 0, time.UTC)
	DefaultRangeUpper = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
)

// AllowedGenders is the fixed label set the gender analyses restrict to.
var AllowedGenders = []string{"Male", "Female", "Gender Non-Conforming"}

// FilterDateRange keeps records with lower < Date < upper. Order preserving,
// no deduplication, idempotent under re-application of the same bounds.
func FilterDateRange(records []StopRecord, lower, upper time.Time) []StopRecord {
	out := make([]StopRecord, 0, len(records))
	for _, r := range records {
		if r.Date.After(lower) && r.Date.Before(upper) {
			out = append(out, r)
		}
	}
	return out
}

// GenderView is the category-restricted slice of the dataset together with
// the display order its charts should use.
type GenderView struct {
	Records []StopRecord
	// Order lists the allowed labels observed in Records, most frequent
	// first, ties broken by label. Labels with zero occurrences are absent.
	Order []string
}

// RestrictGender drops records whose gender is not in allowed and computes
// the frequency-based display order over what remains. The unrestricted
// input stays untouched for other analyses.
func RestrictGender(records []StopRecord, allowed []string) GenderView {
	kept := make([]StopRecord, 0, len(records))
	counts := make(map[string]int)
	for _, r := range records {
		if !utils.Contains(allowed, r.Gender) {
			continue
		}
		kept = append(kept, r)
		counts[r.Gender]++
	}

	return GenderView{Records: kept, Order: DisplayOrder(counts)}
}

// DisplayOrder sorts category labels by count descending, ties by label
// ascending. The source dataframe library did this implicitly through
// frequency-ordered factor levels; here it is an explicit utility so the
// ordering is recomputed whenever the input changes.
func DisplayOrder(counts map[string]int) []string {
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}
		return labels[i] < labels[j]
	})
	return labels
}
