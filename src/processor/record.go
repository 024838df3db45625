// record.go
package processor

import (
	"fmt"
	"time"
)

// StopRecord is one traffic stop after normalization. Date carries only the
// calendar date (midnight UTC); the clock time is kept separately as an
// "HH:MM:SS" string because the source offset is consumed during parsing.
type StopRecord struct {
	ID              string
	IncidentNumber  string
	Date            time.Time
	Time            string
	Reason          string
	Problem         string
	CallDisposition string
	CitationIssued  bool
	PersonSearch    bool
	VehicleSearch   bool
	PreRace         string
	Race            string
	Gender          string
	Lat             float64
	Long            float64
	X               float64
	Y               float64
	Precinct        string
	Neighborhood    string
	LastUpdateDate  time.Time
	LastUpdateTime  string
}

// RawStop is one snapshot row exactly as read, all fields still strings.
// Field names mirror the published column headers of the dataset.
type RawStop struct {
	ObjectID        string
	IncidentNumber  string
	ResponseDate    string
	Reason          string
	Problem         string
	CallDisposition string
	CitationIssued  string
	PersonSearch    string
	VehicleSearch   string
	PreRace         string
	Race            string
	Gender          string
	Lat             string
	Long            string
	X               string
	Y               string
	Precinct        string
	Neighborhood    string
	LastUpdateDate  string
}

// ParseError reports a malformed field on one snapshot row. Row is the
// zero-based data row index (header excluded).
type ParseError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d: column %q: cannot parse %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
