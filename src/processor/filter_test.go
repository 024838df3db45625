package processor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stopOn(date string, gender string) StopRecord {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return StopRecord{Date: t, Gender: gender}
}

func TestFilterDateRangeExclusiveBounds(t *testing.T) {
	records := []StopRecord{
		stopOn("2016-12-31", "Male"), // on the lower bound, dropped
		stopOn("2017-01-01", "Male"),
		stopOn("2019-06-15", "Female"),
		stopOn("2022-12-31", "Male"),
		stopOn("2023-01-01", "Male"), // on the upper bound, dropped
	}

	got := FilterDateRange(records, DefaultRangeLower, DefaultRangeUpper)
	require.Len(t, got, 3)
	assert.Equal(t, "2017-01-01", got[0].Date.Format("2006-01-02"))
	assert.Equal(t, "2022-12-31", got[2].Date.Format("2006-01-02"))
}

func TestFilterDateRangeIdempotent(t *testing.T) {
	records := []StopRecord{
		stopOn("2016-05-01", "Male"),
		stopOn("2018-03-03", "Female"),
		stopOn("2021-08-09", "Male"),
	}

	once := FilterDateRange(records, DefaultRangeLower, DefaultRangeUpper)
	twice := FilterDateRange(once, DefaultRangeLower, DefaultRangeUpper)
	assert.Equal(t, once, twice)
}

func TestFilterDateRangePreservesOrder(t *testing.T) {
	records := []StopRecord{
		stopOn("2020-02-02", "A"),
		stopOn("2018-01-01", "B"),
		stopOn("2019-12-31", "C"),
	}

	got := FilterDateRange(records, DefaultRangeLower, DefaultRangeUpper)
	require.Len(t, got, 3)
	assert.Equal(t, "A", got[0].Gender)
	assert.Equal(t, "B", got[1].Gender)
	assert.Equal(t, "C", got[2].Gender)
}

func TestRestrictGender(t *testing.T) {
	records := []StopRecord{
		stopOn("2019-01-01", "Male"),
		stopOn("2019-01-02", "Male"),
		stopOn("2019-01-03", "Male"),
		stopOn("2019-01-04", "Female"),
		stopOn("2019-01-05", "Unknown"),
	}

	view := RestrictGender(records, AllowedGenders)
	require.Len(t, view.Records, 4)
	for _, r := range view.Records {
		assert.Contains(t, AllowedGenders, r.Gender)
	}
	assert.Equal(t, []string{"Male", "Female"}, view.Order)
}

func TestRestrictGenderKeepsAllAllowed(t *testing.T) {
	records := []StopRecord{
		stopOn("2019-01-01", "Gender Non-Conforming"),
		stopOn("2019-01-02", "Female"),
	}

	view := RestrictGender(records, AllowedGenders)
	assert.Len(t, view.Records, 2)
	assert.Equal(t, []string{"Female", "Gender Non-Conforming"}, view.Order)
}

func TestDisplayOrderTieBreak(t *testing.T) {
	order := DisplayOrder(map[string]int{"Beta": 2, "Alpha": 2, "Gamma": 3})
	assert.Equal(t, []string{"Gamma", "Alpha", "Beta"}, order)
}

func TestDisplayOrderRecomputed(t *testing.T) {
	first := DisplayOrder(map[string]int{"Male": 5, "Female": 1})
	second := DisplayOrder(map[string]int{"Male": 1, "Female": 5})
	assert.Equal(t, []string{"Male", "Female"}, first)
	assert.Equal(t, []string{"Female", "Male"}, second)
}
