package delivery

import (
	"testing"
	"time"

	"github.com/leehai1107/shop-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDelivery_ReplacesAllProvidedFields(t *testing.T) {
	current := &domain.DeliverySelection{
		ProductID:       100,
		DateEpochMillis: 1,
		TimeLabel:       "morning",
		Address:         "old street 1",
		Interval:        &domain.Interval{Start: 10, End: 20},
	}

	next := SetDelivery(current, Update{
		ProductID:       200,
		DateEpochMillis: 2,
		TimeLabel:       "evening",
		Address:         "new street 2",
		Interval:        &domain.Interval{Start: 30, End: 40},
	})

	assert.Equal(t, int64(200), next.ProductID)
	assert.Equal(t, int64(2), next.DateEpochMillis)
	assert.Equal(t, "evening", next.TimeLabel)
	assert.Equal(t, "new street 2", next.Address)
	assert.Equal(t, &domain.Interval{Start: 30, End: 40}, next.Interval)
}

func TestSetDelivery_OmittedIntervalIsCarriedOver(t *testing.T) {
	current := &domain.DeliverySelection{
		DateEpochMillis: 1,
		Interval:        &domain.Interval{Start: 10, End: 20},
	}

	next := SetDelivery(current, Update{DateEpochMillis: 2, Address: "somewhere"})

	assert.Equal(t, int64(2), next.DateEpochMillis)
	assert.Equal(t, &domain.Interval{Start: 10, End: 20}, next.Interval)
}

func TestSetDelivery_NoCurrentSelection(t *testing.T) {
	next := SetDelivery(nil, Update{DateEpochMillis: 5, TimeLabel: "noon"})

	assert.Equal(t, int64(5), next.DateEpochMillis)
	assert.Nil(t, next.Interval)
}

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}

func interval(t *testing.T, start, end string) domain.Interval {
	t.Helper()
	return domain.Interval{
		Start: mustParse(t, start).UnixMilli(),
		End:   mustParse(t, end).UnixMilli(),
	}
}

func TestFilterIntervalsForDate_KeepsOverlappingIntervals(t *testing.T) {
	intervals := []domain.Interval{
		interval(t, "2024-01-02T09:00:00Z", "2024-01-02T12:00:00Z"),
		interval(t, "2024-01-03T09:00:00Z", "2024-01-03T12:00:00Z"),
	}

	matched := FilterIntervalsForDate(intervals, mustParse(t, "2024-01-02T15:00:00Z"))

	require.Len(t, matched, 1)
	assert.Equal(t, intervals[0], matched[0])
}

// An interval straddling midnight UTC belongs to both adjacent days, and
// the day boundary is the UTC one even when the target date carries a
// different zone. The +05:00 target below reads as Jan 2 locally but is
// 19:00 Jan 1 in UTC; the UTC calendar day is what counts, so the
// interval starting 23:00 Jan 1 UTC still matches.
func TestFilterIntervalsForDate_UTCDayNormalization(t *testing.T) {
	straddling := interval(t, "2024-01-01T23:00:00Z", "2024-01-02T01:00:00Z")

	matched := FilterIntervalsForDate(
		[]domain.Interval{straddling},
		mustParse(t, "2024-01-02T00:00:00+05:00"), // 2024-01-01T19:00:00Z
	)

	require.Len(t, matched, 1)
	assert.Equal(t, straddling, matched[0])

	// The same interval also overlaps Jan 2 UTC.
	matched = FilterIntervalsForDate(
		[]domain.Interval{straddling},
		mustParse(t, "2024-01-02T18:00:00Z"),
	)
	require.Len(t, matched, 1)
}

func TestFilterIntervalsForDate_TouchingBoundsDoNotMatch(t *testing.T) {
	// Ends exactly at midnight: no overlap with the following day.
	endsAtMidnight := interval(t, "2024-01-01T20:00:00Z", "2024-01-02T00:00:00Z")
	// Starts exactly at next midnight: no overlap with the target day.
	startsAtNextMidnight := interval(t, "2024-01-03T00:00:00Z", "2024-01-03T02:00:00Z")

	matched := FilterIntervalsForDate(
		[]domain.Interval{endsAtMidnight, startsAtNextMidnight},
		mustParse(t, "2024-01-02T12:00:00Z"),
	)

	assert.Empty(t, matched)
}

func TestFilterIntervalsForDate_NoIntervals(t *testing.T) {
	matched := FilterIntervalsForDate(nil, mustParse(t, "2024-01-02T12:00:00Z"))
	assert.Empty(t, matched)
}
