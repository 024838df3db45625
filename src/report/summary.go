// summary.go
package report

import (
	"fmt"
	"strings"
)

// Summary renders the printed ratio summary: total stops, the yearly
// male/female stop ratio and the per-gender search shares.
func Summary(rep *Report) string {
	var b strings.Builder

	total := 0
	for _, row := range rep.GenderCounts {
		total += row.Count
	}
	b.WriteString(fmt.Sprintf("Stops analyzed: %d\n", total))

	for _, row := range rep.GenderCounts {
		b.WriteString(fmt.Sprintf("  %s: %d\n", row.Key, row.Count))
	}

	b.WriteString("Male/female stop ratio by year:\n")
	for _, r := range rep.StopRatios {
		b.WriteString(fmt.Sprintf("  %d: %s\n", r.Year, ratioCell(r)))
	}

	b.WriteString("Share of stops with a person search:\n")
	for _, p := range rep.PersonSearch {
		b.WriteString(fmt.Sprintf("  %s: %.1f%%\n", p.Gender, p.Share*100))
	}

	b.WriteString("Share of stops with a vehicle search:\n")
	for _, p := range rep.VehicleSearch {
		b.WriteString(fmt.Sprintf("  %s: %.1f%%\n", p.Gender, p.Share*100))
	}

	return b.String()
}
