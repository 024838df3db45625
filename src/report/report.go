// report.go
package report

import (
	"fmt"
	"time"

	"trafficstops/src/processor"
)

// ProportionRow is one per-gender share of searched stops, in [0,1].
type ProportionRow struct {
	Gender string  `dataframe:"gender,string"`
	Share  float64 `dataframe:"share,float"`
}

// RatioRow is one yearly male/female stop ratio, rendered "n/a" when the
// denominator group was empty that year.
type RatioRow struct {
	Year  int    `dataframe:"year,int"`
	Ratio string `dataframe:"ratio,string"`
}

// DailyTrend is the smoothed per-gender daily stop counts over the
// analysis window. Series is parallel to Genders.
type DailyTrend struct {
	Dates   []time.Time
	Genders []string
	Series  [][]float64
}

// Report bundles every aggregate table the rendering steps consume. All
// slices are in their final display order.
type Report struct {
	Order         []string
	GenderCounts  []processor.CountRow
	YearCounts    []processor.YearCountRow
	StopRatios    []processor.YearRatio
	PersonSearch  []ProportionRow
	VehicleSearch []ProportionRow
	Trend         DailyTrend
}

// Assemble runs the aggregations over the restricted view and lays the
// results out as ordered tables. lower/upper are the exclusive bounds the
// view was filtered with; they anchor the daily trend axis.
func Assemble(view processor.GenderView, lower, upper time.Time, smoothingDays int) *Report {
	records := view.Records

	rep := &Report{
		Order:        view.Order,
		GenderCounts: processor.SortedCounts(processor.CountByGender(records), view.Order),
	}

	yearCounts := processor.CountByGenderYear(records)
	rep.YearCounts = processor.YearTable(yearCounts, view.Order)
	rep.StopRatios = processor.RatioByYear(yearCounts, "Male", "Female")

	rep.PersonSearch = proportionRows(
		processor.SearchProportions(processor.CountByGenderFlag(records, func(r processor.StopRecord) bool { return r.PersonSearch })),
		view.Order)
	rep.VehicleSearch = proportionRows(
		processor.SearchProportions(processor.CountByGenderFlag(records, func(r processor.StopRecord) bool { return r.VehicleSearch })),
		view.Order)

	rep.Trend = dailyTrend(records, view.Order, lower, upper, smoothingDays)
	return rep
}

func proportionRows(shares map[string]float64, order []string) []ProportionRow {
	rows := make([]ProportionRow, 0, len(shares))
	for _, gender := range order {
		if share, ok := shares[gender]; ok {
			rows = append(rows, ProportionRow{Gender: gender, Share: share})
		}
	}
	return rows
}

func dailyTrend(records []processor.StopRecord, order []string, lower, upper time.Time, smoothingDays int) DailyTrend {
	counts := processor.CountByGenderDate(records)
	from := lower.AddDate(0, 0, 1)
	to := upper.AddDate(0, 0, -1)

	trend := DailyTrend{Genders: order}
	for _, gender := range order {
		dates, values := processor.DailySeries(counts, gender, from, to)
		if trend.Dates == nil {
			trend.Dates = dates
		}
		trend.Series = append(trend.Series, processor.MovingAverage(values, smoothingDays))
	}
	return trend
}

// ratioCell renders one yearly ratio for display.
func ratioCell(r processor.YearRatio) string {
	if r.Undefined {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", r.Value)
}

// RatioRows converts the yearly ratios into their exportable form.
func RatioRows(ratios []processor.YearRatio) []RatioRow {
	rows := make([]RatioRow, 0, len(ratios))
	for _, r := range ratios {
		rows = append(rows, RatioRow{Year: r.Year, Ratio: ratioCell(r)})
	}
	return rows
}
