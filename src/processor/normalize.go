// normalize.go
package processor

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"

	"trafficstops/src/utils"
)

// Column headers of the published snapshot. The portal does not guarantee
// column order across dataset versions, so everything resolves by name.
const (
	ColObjectID        = "OBJECTID"
	ColIncidentNumber  = "masterIncidentNumber"
	ColResponseDate    = "responseDate"
	ColReason          = "reason"
	ColProblem         = "problem"
	ColCallDisposition = "callDisposition"
	ColCitationIssued  = "citationIssued"
	ColPersonSearch    = "personSearch"
	ColVehicleSearch   = "vehicleSearch"
	ColPreRace         = "preRace"
	ColRace            = "race"
	ColGender          = "gender"
	ColLat             = "lat"
	ColLong            = "long"
	ColX               = "x"
	ColY               = "y"
	ColPrecinct        = "policePrecinct"
	ColNeighborhood    = "neighborhood"
	ColLastUpdateDate  = "lastUpdateDate"
)

const (
	dateLayout  = "2006/01/02"
	timeLayout  = "15:04:05-0700"
	clockLayout = "15:04:05"
)

// requiredColumns must all be present before normalization starts.
var requiredColumns = []string{
	ColObjectID, ColIncidentNumber, ColResponseDate, ColReason, ColProblem,
	ColCallDisposition, ColCitationIssued, ColPersonSearch, ColVehicleSearch,
	ColPreRace, ColRace, ColGender, ColLat, ColLong, ColX, ColY,
	ColPrecinct, ColNeighborhood, ColLastUpdateDate,
}

// Normalize converts a raw snapshot frame into typed StopRecords. It is
// all-or-nothing: the first malformed timestamp aborts with a ParseError.
func Normalize(df dataframe.DataFrame) ([]StopRecord, error) {
	if df.Error() != nil {
		return nil, fmt.Errorf("snapshot frame: %w", df.Error())
	}

	for _, name := range requiredColumns {
		if !utils.HasColumn(df, name) {
			return nil, fmt.Errorf("snapshot is missing column %q", name)
		}
	}

	cell := func(name string, row int) string {
		e := df.Col(name).Elem(row)
		if e.IsNA() {
			return ""
		}
		return e.String()
	}

	records := make([]StopRecord, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		raw := RawStop{
			ObjectID:        cell(ColObjectID, i),
			IncidentNumber:  cell(ColIncidentNumber, i),
			ResponseDate:    cell(ColResponseDate, i),
			Reason:          cell(ColReason, i),
			Problem:         cell(ColProblem, i),
			CallDisposition: cell(ColCallDisposition, i),
			CitationIssued:  cell(ColCitationIssued, i),
			PersonSearch:    cell(ColPersonSearch, i),
			VehicleSearch:   cell(ColVehicleSearch, i),
			PreRace:         cell(ColPreRace, i),
			Race:            cell(ColRace, i),
			Gender:          cell(ColGender, i),
			Lat:             cell(ColLat, i),
			Long:            cell(ColLong, i),
			X:               cell(ColX, i),
			Y:               cell(ColY, i),
			Precinct:        cell(ColPrecinct, i),
			Neighborhood:    cell(ColNeighborhood, i),
			LastUpdateDate:  cell(ColLastUpdateDate, i),
		}

		rec, err := NormalizeRow(raw, i)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// NormalizeRow turns one raw row into a StopRecord. row is only used for
// error reporting.
func NormalizeRow(raw RawStop, row int) (StopRecord, error) {
	date, clock, err := SplitTimestamp(raw.ResponseDate)
	if err != nil {
		return StopRecord{}, &ParseError{Row: row, Column: ColResponseDate, Value: raw.ResponseDate, Err: err}
	}

	rec := StopRecord{
		ID:              raw.ObjectID,
		IncidentNumber:  raw.IncidentNumber,
		Date:            date,
		Time:            clock,
		Reason:          raw.Reason,
		Problem:         raw.Problem,
		CallDisposition: raw.CallDisposition,
		CitationIssued:  yesToBool(raw.CitationIssued),
		PersonSearch:    yesToBool(raw.PersonSearch),
		VehicleSearch:   yesToBool(raw.VehicleSearch),
		PreRace:         raw.PreRace,
		Race:            raw.Race,
		Gender:          raw.Gender,
		Lat:             parseCoord(raw.Lat),
		Long:            parseCoord(raw.Long),
		X:               parseCoord(raw.X),
		Y:               parseCoord(raw.Y),
		Precinct:        raw.Precinct,
		Neighborhood:    raw.Neighborhood,
	}

	// The last-modified stamp follows the same contract as responseDate but
	// may be absent entirely.
	if raw.LastUpdateDate != "" {
		upDate, upClock, err := SplitTimestamp(raw.LastUpdateDate)
		if err != nil {
			return StopRecord{}, &ParseError{Row: row, Column: ColLastUpdateDate, Value: raw.LastUpdateDate, Err: err}
		}
		rec.LastUpdateDate = upDate
		rec.LastUpdateTime = upClock
	}

	return rec, nil
}

// SplitTimestamp splits a "YYYY/MM/DD HH:MM:SS+ZZZZ" stamp on its first
// space into a calendar date and an "HH:MM:SS" clock string. The numeric
// UTC offset is consumed during parsing and discarded.
func SplitTimestamp(s string) (time.Time, string, error) {
	datePart, timePart, found := strings.Cut(s, " ")
	if !found {
		return time.Time{}, "", fmt.Errorf("no time component in %q", s)
	}

	date, err := time.Parse(dateLayout, datePart)
	if err != nil {
		return time.Time{}, "", err
	}

	clock, err := time.Parse(timeLayout, timePart)
	if err != nil {
		return time.Time{}, "", err
	}

	return date, clock.Format(clockLayout), nil
}

// yesToBool maps the exact literal "YES" to true and everything else,
// including the empty cell, to false. "NO" and missing are deliberately
// indistinguishable afterwards, matching the published data dictionary.
func yesToBool(s string) bool {
	return s == "YES"
}

// parseCoord reads an optional coordinate; blank or unparseable cells
// become NaN rather than aborting the row.
func parseCoord(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
