// smooth.go
package processor

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

// DailySeries expands (gender, date) counts into a dense per-day series for
// one gender between from and to inclusive. Days without stops contribute
// zero, which keeps the series aligned with its date axis.
func DailySeries(counts map[DateKey]int, gender string, from, to time.Time) ([]time.Time, []float64) {
	var dates []time.Time
	var values []float64
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
		values = append(values, float64(counts[DateKey{Gender: gender, Date: d}]))
	}
	return dates, values
}

// MovingAverage smooths a series with a centered window of the given width.
// Edges use the part of the window that fits, so the output has the same
// length as the input. A window below 2 returns the input copied.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window < 2 {
		copy(out, values)
		return out
	}

	half := window / 2
	for i := range values {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half + 1
		if hi > len(values) {
			hi = len(values)
		}
		out[i] = stat.Mean(values[lo:hi], nil)
	}
	return out
}
