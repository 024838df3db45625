// aggregate.go
package processor

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrUndefinedRatio marks a category ratio whose denominator group is
// empty. Callers render such cells as "n/a" instead of Inf or NaN.
var ErrUndefinedRatio = errors.New("undefined ratio: denominator count is zero")

// DateKey groups records by category and calendar date (or by the Jan 1
// year bucket when produced by CountByGenderYear).
type DateKey struct {
	Gender string
	Date   time.Time
}

// FlagKey groups records by category and one normalized boolean field.
type FlagKey struct {
	Gender string
	Flag   bool
}

// CountByGender counts records per gender label. The counts over any
// grouping key always sum to len(records).
func CountByGender(records []StopRecord) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Gender]++
	}
	return counts
}

// CountByGenderDate counts records per (gender, date) pair.
func CountByGenderDate(records []StopRecord) map[DateKey]int {
	counts := make(map[DateKey]int)
	for _, r := range records {
		counts[DateKey{Gender: r.Gender, Date: r.Date}]++
	}
	return counts
}

// CountByGenderYear counts records per (gender, year) pair, with the year
// represented by January 1 of the record's calendar year.
func CountByGenderYear(records []StopRecord) map[DateKey]int {
	counts := make(map[DateKey]int)
	for _, r := range records {
		counts[DateKey{Gender: r.Gender, Date: YearKey(r.Date)}]++
	}
	return counts
}

// CountByGenderFlag counts records per (gender, flag) pair, where flag
// projects one of the normalized booleans off the record.
func CountByGenderFlag(records []StopRecord, flag func(StopRecord) bool) map[FlagKey]int {
	counts := make(map[FlagKey]int)
	for _, r := range records {
		counts[FlagKey{Gender: r.Gender, Flag: flag(r)}]++
	}
	return counts
}

// YearKey truncates a date to the first day of its calendar year.
func YearKey(t time.Time) time.Time {
	return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
}

// Ratio returns count(a)/count(b). A missing or empty denominator group
// yields ErrUndefinedRatio; the numerator may legitimately be zero.
func Ratio(counts map[string]int, a, b string) (float64, error) {
	if counts[b] == 0 {
		return 0, fmt.Errorf("ratio %s/%s: %w", a, b, ErrUndefinedRatio)
	}
	return float64(counts[a]) / float64(counts[b]), nil
}

// YearRatio is one yearly a/b ratio row. Undefined is set when the
// denominator count for that year was zero.
type YearRatio struct {
	Year      int
	Value     float64
	Undefined bool
}

// RatioByYear derives per-year gender counts from a CountByGenderYear
// result and computes the a/b ratio for every observed year, ascending.
func RatioByYear(yearCounts map[DateKey]int, a, b string) []YearRatio {
	perYear := make(map[int]map[string]int)
	for key, n := range yearCounts {
		year := key.Date.Year()
		if perYear[year] == nil {
			perYear[year] = make(map[string]int)
		}
		perYear[year][key.Gender] += n
	}

	years := make([]int, 0, len(perYear))
	for y := range perYear {
		years = append(years, y)
	}
	sort.Ints(years)

	out := make([]YearRatio, 0, len(years))
	for _, y := range years {
		row := YearRatio{Year: y}
		v, err := Ratio(perYear[y], a, b)
		if err != nil {
			row.Undefined = true
		} else {
			row.Value = v
		}
		out = append(out, row)
	}
	return out
}

// SearchProportions turns (gender, flag) counts into the per-gender share
// of flagged stops, true/(true+false), always within [0,1]. Genders with
// no records at all are absent from the result.
func SearchProportions(counts map[FlagKey]int) map[string]float64 {
	totals := make(map[string]int)
	flagged := make(map[string]int)
	for key, n := range counts {
		totals[key.Gender] += n
		if key.Flag {
			flagged[key.Gender] += n
		}
	}

	out := make(map[string]float64, len(totals))
	for gender, total := range totals {
		out[gender] = float64(flagged[gender]) / float64(total)
	}
	return out
}

// CountRow is one row of an ordered count table handed to the reporting
// adapter. The dataframe tags name the exported CSV columns.
type CountRow struct {
	Key   string `dataframe:"key,string"`
	Count int    `dataframe:"count,int"`
}

// SortedCounts lays out a count map as an ordered table. Labels listed in
// order come first, in that order; any remaining labels follow sorted
// lexically so the output is reproducible.
func SortedCounts(counts map[string]int, order []string) []CountRow {
	rows := make([]CountRow, 0, len(counts))
	seen := make(map[string]bool, len(order))
	for _, label := range order {
		if n, ok := counts[label]; ok {
			rows = append(rows, CountRow{Key: label, Count: n})
			seen[label] = true
		}
	}

	rest := make([]string, 0, len(counts))
	for label := range counts {
		if !seen[label] {
			rest = append(rest, label)
		}
	}
	sort.Strings(rest)
	for _, label := range rest {
		rows = append(rows, CountRow{Key: label, Count: counts[label]})
	}
	return rows
}

// YearCountRow is one (year, gender) cell of the yearly count table.
type YearCountRow struct {
	Year   int    `dataframe:"year,int"`
	Gender string `dataframe:"gender,string"`
	Count  int    `dataframe:"count,int"`
}

// YearTable lays out CountByGenderYear results year ascending, genders in
// the given display order within each year. Zero cells are materialized so
// every year carries every ordered gender, which keeps grouped chart
// series aligned.
func YearTable(yearCounts map[DateKey]int, order []string) []YearCountRow {
	years := make(map[int]bool)
	for key := range yearCounts {
		years[key.Date.Year()] = true
	}
	sorted := make([]int, 0, len(years))
	for y := range years {
		sorted = append(sorted, y)
	}
	sort.Ints(sorted)

	rows := make([]YearCountRow, 0, len(sorted)*len(order))
	for _, y := range sorted {
		for _, gender := range order {
			key := DateKey{Gender: gender, Date: time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)}
			rows = append(rows, YearCountRow{Year: y, Gender: gender, Count: yearCounts[key]})
		}
	}
	return rows
}
