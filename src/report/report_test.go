package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"trafficstops/src/processor"
)

func testView(t *testing.T) processor.GenderView {
	t.Helper()

	stop := func(date, gender string, personSearch bool) processor.StopRecord {
		d, err := time.Parse("2006-01-02", date)
		require.NoError(t, err)
		return processor.StopRecord{Date: d, Gender: gender, PersonSearch: personSearch}
	}

	records := []processor.StopRecord{
		stop("2017-01-05", "Male", true),
		stop("2017-01-05", "Male", false),
		stop("2017-03-20", "Female", false),
		stop("2018-06-01", "Male", false),
		stop("2018-07-14", "Female", true),
	}
	return processor.RestrictGender(records, processor.AllowedGenders)
}

func assemble(t *testing.T) *Report {
	t.Helper()
	lower := time.Date(2016, 12, 31, 0, 0, 0, 0, time.UTC)
	upper := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	return Assemble(testView(t), lower, upper, 7)
}

func TestAssembleTables(t *testing.T) {
	rep := assemble(t)

	assert.Equal(t, []string{"Male", "Female"}, rep.Order)
	require.Len(t, rep.GenderCounts, 2)
	assert.Equal(t, processor.CountRow{Key: "Male", Count: 3}, rep.GenderCounts[0])
	assert.Equal(t, processor.CountRow{Key: "Female", Count: 2}, rep.GenderCounts[1])

	// 2 years x 2 genders, zero cells materialized
	assert.Len(t, rep.YearCounts, 4)

	require.Len(t, rep.StopRatios, 2)
	assert.Equal(t, 2017, rep.StopRatios[0].Year)
	assert.InDelta(t, 2.0, rep.StopRatios[0].Value, 1e-9)
	assert.InDelta(t, 1.0, rep.StopRatios[1].Value, 1e-9)

	require.Len(t, rep.PersonSearch, 2)
	assert.InDelta(t, 1.0/3.0, rep.PersonSearch[0].Share, 1e-9)
	assert.InDelta(t, 0.5, rep.PersonSearch[1].Share, 1e-9)
}

func TestAssembleTrendAxis(t *testing.T) {
	rep := assemble(t)

	// axis spans 2017-01-01 .. 2018-12-31 inclusive
	require.NotEmpty(t, rep.Trend.Dates)
	assert.Equal(t, "2017-01-01", rep.Trend.Dates[0].Format("2006-01-02"))
	assert.Equal(t, "2018-12-31", rep.Trend.Dates[len(rep.Trend.Dates)-1].Format("2006-01-02"))

	require.Len(t, rep.Trend.Series, 2)
	for _, series := range rep.Trend.Series {
		assert.Len(t, series, len(rep.Trend.Dates))
	}
}

func TestRatioRows(t *testing.T) {
	rows := RatioRows([]processor.YearRatio{
		{Year: 2017, Value: 2.5},
		{Year: 2018, Undefined: true},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, RatioRow{Year: 2017, Ratio: "2.500"}, rows[0])
	assert.Equal(t, RatioRow{Year: 2018, Ratio: "n/a"}, rows[1])
}

func TestWriteWorkbook(t *testing.T) {
	rep := assemble(t)
	path := filepath.Join(t.TempDir(), "out", "report.xlsx")

	require.NoError(t, WriteWorkbook(rep, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t,
		[]string{sheetGenderCounts, sheetYearCounts, sheetDailyTrend, sheetRatios},
		f.GetSheetList())

	val, err := f.GetCellValue(sheetGenderCounts, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Male", val)

	val, err = f.GetCellValue(sheetYearCounts, "A1")
	require.NoError(t, err)
	assert.Equal(t, "year", val)
}

func TestWriteCSVTables(t *testing.T) {
	rep := assemble(t)
	dir := t.TempDir()

	require.NoError(t, WriteCSVTables(rep, dir))

	for _, name := range []string{
		"gender_counts.csv", "year_counts.csv", "stop_ratios.csv",
		"person_search.csv", "vehicle_search.csv",
	} {
		data, err := os.ReadFile(filepath.Join(dir, "tables", name))
		require.NoError(t, err, name)
		assert.NotEmpty(t, data, name)
	}
}

func TestSummary(t *testing.T) {
	rep := assemble(t)
	text := Summary(rep)

	assert.Contains(t, text, "Stops analyzed: 5")
	assert.Contains(t, text, "Male: 3")
	assert.Contains(t, text, "2017: 2.000")
	assert.Contains(t, text, "person search")
}
