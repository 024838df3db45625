// reader.go
package file

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/tealeg/xlsx"
)

// ReadSnapshot loads a dataset snapshot into a dataframe, dispatching on
// the file extension. Every column is kept as a string series: the
// normalizer owns all type coercion, so the reader must not let type
// detection mangle sentinel values like "YES".
func ReadSnapshot(path, sheetName string) (dataframe.DataFrame, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSVToDataFrame(path)
	case ".xlsx":
		return ReadXLSXToDataFrame(path, sheetName)
	default:
		return dataframe.DataFrame{}, fmt.Errorf("unsupported snapshot format %q", filepath.Ext(path))
	}
}

// ReadCSVToDataFrame reads a UTF-8 CSV snapshot with a header row.
func ReadCSVToDataFrame(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Error() != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to parse csv file: %w", df.Error())
	}

	return df, nil
}

// ReadXLSXToDataFrame reads an xlsx snapshot, for portals and mailboxes
// that publish the extract as a workbook instead of CSV.
func ReadXLSXToDataFrame(path, sheetName string) (dataframe.DataFrame, error) {
	xlFile, err := xlsx.OpenFile(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to open xlsx file: %w", err)
	}

	sheet, ok := xlFile.Sheet[sheetName]
	if !ok {
		return dataframe.DataFrame{}, fmt.Errorf("sheet %q not found in %s", sheetName, path)
	}

	return sheetToDataFrame(sheet)
}

// sheetToDataFrame converts a worksheet to a string dataframe. The first
// row is the header.
func sheetToDataFrame(sheet *xlsx.Sheet) (dataframe.DataFrame, error) {
	if len(sheet.Rows) < 2 {
		return dataframe.DataFrame{}, fmt.Errorf("sheet has no data rows")
	}

	var headers []string
	for _, cell := range sheet.Rows[0].Cells {
		headers = append(headers, cell.String())
	}

	columns := make([][]string, len(headers))
	for i := range columns {
		columns[i] = make([]string, 0, len(sheet.Rows)-1)
	}

	for _, row := range sheet.Rows[1:] {
		for i := range headers {
			val := ""
			if i < len(row.Cells) {
				val = row.Cells[i].String()
			}
			columns[i] = append(columns[i], val)
		}
	}

	seriesList := make([]series.Series, len(headers))
	for i, colName := range headers {
		seriesList[i] = series.New(columns[i], series.String, colName)
	}

	df := dataframe.New(seriesList...)
	if df.Error() != nil {
		return dataframe.DataFrame{}, df.Error()
	}
	return df, nil
}

// SetupSignalHandler cancels the context on SIGINT/SIGTERM so the watch
// and schedule modes shut down cleanly.
func SetupSignalHandler(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		fmt.Printf("\nReceived signal: %v, shutting down...\n", sig)
		cancel()
	}()
}
