// tables.go
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
)

// WriteCSVTables exports every aggregate as a CSV file under dir/tables,
// so downstream tooling gets the plain tabular form without opening the
// workbook.
func WriteCSVTables(rep *Report, dir string) error {
	tablesDir := filepath.Join(dir, "tables")
	if err := os.MkdirAll(tablesDir, 0755); err != nil {
		return err
	}

	exports := []struct {
		name string
		rows interface{}
	}{
		{"gender_counts.csv", rep.GenderCounts},
		{"year_counts.csv", rep.YearCounts},
		{"stop_ratios.csv", RatioRows(rep.StopRatios)},
		{"person_search.csv", rep.PersonSearch},
		{"vehicle_search.csv", rep.VehicleSearch},
	}

	for _, exp := range exports {
		if err := writeCSV(filepath.Join(tablesDir, exp.name), exp.rows); err != nil {
			return fmt.Errorf("export %s: %w", exp.name, err)
		}
	}
	return nil
}

func writeCSV(path string, rows interface{}) error {
	df := dataframe.LoadStructs(rows)
	if df.Error() != nil {
		return df.Error()
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return df.WriteCSV(f)
}
