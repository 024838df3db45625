package processor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailySeriesZeroFills(t *testing.T) {
	counts := CountByGenderDate([]StopRecord{
		stopOn("2019-01-01", "Male"),
		stopOn("2019-01-01", "Male"),
		stopOn("2019-01-03", "Male"),
	})

	from := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2019, 1, 4, 0, 0, 0, 0, time.UTC)
	dates, values := DailySeries(counts, "Male", from, to)

	require.Len(t, dates, 4)
	require.Len(t, values, 4)
	assert.Equal(t, []float64{2, 0, 1, 0}, values)
	assert.Equal(t, from, dates[0])
	assert.Equal(t, to, dates[3])
}

func TestMovingAverageCentered(t *testing.T) {
	got := MovingAverage([]float64{0, 3, 0, 3, 0}, 3)
	require.Len(t, got, 5)
	assert.InDelta(t, 1.5, got[0], 1e-9) // truncated window at the edge
	assert.InDelta(t, 1.0, got[1], 1e-9)
	assert.InDelta(t, 2.0, got[2], 1e-9)
	assert.InDelta(t, 1.0, got[3], 1e-9)
	assert.InDelta(t, 1.5, got[4], 1e-9)
}

func TestMovingAverageSmallWindow(t *testing.T) {
	in := []float64{1, 2, 3}
	got := MovingAverage(in, 1)
	assert.Equal(t, in, got)

	got = MovingAverage(nil, 7)
	assert.Empty(t, got)
}
