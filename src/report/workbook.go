// workbook.go
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"

	"trafficstops/src/utils"
)

const (
	sheetGenderCounts = "GenderCounts"
	sheetYearCounts   = "YearCounts"
	sheetDailyTrend   = "DailyTrend"
	sheetRatios       = "Ratios"
)

// WriteWorkbook renders the report as an xlsx workbook: count tables with
// their charts, the smoothed daily trend and the yearly ratio summary.
func WriteWorkbook(rep *Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetGenderCounts); err != nil {
		return err
	}
	for _, name := range []string{sheetYearCounts, sheetDailyTrend, sheetRatios} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	if err := writeGenderCounts(f, rep); err != nil {
		return err
	}
	if err := writeYearCounts(f, rep); err != nil {
		return err
	}
	if err := writeDailyTrend(f, rep); err != nil {
		return err
	}
	if err := writeRatios(f, rep); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("cannot save workbook %s: %w", path, err)
	}
	return nil
}

// writeGenderCounts writes the overall count table plus its bar chart.
func writeGenderCounts(f *excelize.File, rep *Report) error {
	df := dataframe.LoadStructs(rep.GenderCounts)
	if df.Error() != nil {
		return df.Error()
	}
	if err := utils.WriteFrame(f, sheetGenderCounts, df); err != nil {
		return err
	}

	n := len(rep.GenderCounts)
	if n == 0 {
		return nil
	}

	return f.AddChart(sheetGenderCounts, "D2", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$B$1", sheetGenderCounts),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheetGenderCounts, n+1),
			Values:     fmt.Sprintf("%s!$B$2:$B$%d", sheetGenderCounts, n+1),
		}},
		Title: []excelize.RichTextRun{{Text: "Stops by gender, 2017-2022"}},
	})
}

// writeYearCounts pivots the yearly table to one column per gender and
// attaches a grouped column chart.
func writeYearCounts(f *excelize.File, rep *Report) error {
	years := make([]int, 0)
	seen := make(map[int]bool)
	for _, row := range rep.YearCounts {
		if !seen[row.Year] {
			seen[row.Year] = true
			years = append(years, row.Year)
		}
	}

	cell := make(map[int]map[string]int, len(years))
	for _, row := range rep.YearCounts {
		if cell[row.Year] == nil {
			cell[row.Year] = make(map[string]int)
		}
		cell[row.Year][row.Gender] = row.Count
	}

	if err := f.SetCellValue(sheetYearCounts, "A1", "year"); err != nil {
		return err
	}
	for col, gender := range rep.Order {
		name, err := excelize.CoordinatesToCellName(col+2, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetYearCounts, name, gender); err != nil {
			return err
		}
	}
	for rowIdx, year := range years {
		name, err := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetYearCounts, name, year); err != nil {
			return err
		}
		for col, gender := range rep.Order {
			name, err := excelize.CoordinatesToCellName(col+2, rowIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetYearCounts, name, cell[year][gender]); err != nil {
				return err
			}
		}
	}

	if len(years) == 0 || len(rep.Order) == 0 {
		return nil
	}

	series := make([]excelize.ChartSeries, 0, len(rep.Order))
	for col := range rep.Order {
		colName, err := excelize.ColumnNumberToName(col + 2)
		if err != nil {
			return err
		}
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("%s!$%s$1", sheetYearCounts, colName),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheetYearCounts, len(years)+1),
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", sheetYearCounts, colName, colName, len(years)+1),
		})
	}

	anchor, err := excelize.CoordinatesToCellName(len(rep.Order)+3, 2)
	if err != nil {
		return err
	}
	return f.AddChart(sheetYearCounts, anchor, &excelize.Chart{
		Type:   excelize.Col,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: "Stops by gender and year"}},
		Legend: excelize.ChartLegend{Position: "bottom"},
	})
}

// writeDailyTrend writes the smoothed daily series and a line chart.
func writeDailyTrend(f *excelize.File, rep *Report) error {
	trend := rep.Trend
	if err := f.SetCellValue(sheetDailyTrend, "A1", "date"); err != nil {
		return err
	}
	for col, gender := range trend.Genders {
		name, err := excelize.CoordinatesToCellName(col+2, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetDailyTrend, name, gender); err != nil {
			return err
		}
	}

	for rowIdx, date := range trend.Dates {
		name, err := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetDailyTrend, name, date.Format("2006-01-02")); err != nil {
			return err
		}
		for col := range trend.Genders {
			name, err := excelize.CoordinatesToCellName(col+2, rowIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetDailyTrend, name, trend.Series[col][rowIdx]); err != nil {
				return err
			}
		}
	}

	if len(trend.Dates) == 0 || len(trend.Genders) == 0 {
		return nil
	}

	series := make([]excelize.ChartSeries, 0, len(trend.Genders))
	for col := range trend.Genders {
		colName, err := excelize.ColumnNumberToName(col + 2)
		if err != nil {
			return err
		}
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("%s!$%s$1", sheetDailyTrend, colName),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheetDailyTrend, len(trend.Dates)+1),
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", sheetDailyTrend, colName, colName, len(trend.Dates)+1),
		})
	}

	anchor, err := excelize.CoordinatesToCellName(len(trend.Genders)+3, 2)
	if err != nil {
		return err
	}
	return f.AddChart(sheetDailyTrend, anchor, &excelize.Chart{
		Type:   excelize.Line,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: "Smoothed daily stops by gender"}},
		Legend: excelize.ChartLegend{Position: "bottom"},
	})
}

// writeRatios writes the yearly ratio table and the search proportions.
func writeRatios(f *excelize.File, rep *Report) error {
	rows := [][]interface{}{{"year", "male/female stop ratio"}}
	for _, r := range rep.StopRatios {
		rows = append(rows, []interface{}{r.Year, ratioCell(r)})
	}

	rows = append(rows, []interface{}{}, []interface{}{"gender", "person search share", "vehicle search share"})
	vehicle := make(map[string]float64, len(rep.VehicleSearch))
	for _, p := range rep.VehicleSearch {
		vehicle[p.Gender] = p.Share
	}
	for _, p := range rep.PersonSearch {
		rows = append(rows, []interface{}{p.Gender, p.Share, vehicle[p.Gender]})
	}

	for rowIdx, row := range rows {
		for colIdx, val := range row {
			name, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetRatios, name, val); err != nil {
				return err
			}
		}
	}
	return nil
}
