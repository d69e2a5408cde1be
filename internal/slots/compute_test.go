package slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookdesk/internal/models"
)

func karachi(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Karachi")
	require.NoError(t, err)
	return loc
}

func TestBooked(t *testing.T) {
	loc := karachi(t)

	t.Run("WalksEventInDurationSteps", func(t *testing.T) {
		// 04:00 UTC = 09:00 in Karachi (UTC+5).
		start := time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC)
		events := []models.Event{{Start: start, End: start.Add(90 * time.Minute)}}

		booked := Booked(events, 30*time.Minute, loc)

		assert.Equal(t, []models.Slot{
			{Hour: 9, Minute: 0},
			{Hour: 9, Minute: 30},
			{Hour: 10, Minute: 0},
		}, booked)
	})

	t.Run("EventShorterThanDurationYieldsStartSlot", func(t *testing.T) {
		start := time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC)
		events := []models.Event{{Start: start, End: start.Add(10 * time.Minute)}}

		booked := Booked(events, 60*time.Minute, loc)

		assert.Equal(t, []models.Slot{{Hour: 9, Minute: 0}}, booked)
	})

	t.Run("DuplicateSlotsAcrossEventsCollapse", func(t *testing.T) {
		start := time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC)
		events := []models.Event{
			{Start: start, End: start.Add(30 * time.Minute)},
			{Start: start, End: start.Add(30 * time.Minute)},
		}

		booked := Booked(events, 30*time.Minute, loc)

		assert.Equal(t, []models.Slot{{Hour: 9, Minute: 0}}, booked)
	})

	t.Run("ResultSortedAcrossEvents", func(t *testing.T) {
		morning := time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC)
		earlier := time.Date(2025, 3, 10, 3, 0, 0, 0, time.UTC)
		events := []models.Event{
			{Start: morning, End: morning.Add(time.Hour)},
			{Start: earlier, End: earlier.Add(time.Hour)},
		}

		booked := Booked(events, 60*time.Minute, loc)

		assert.Equal(t, []models.Slot{
			{Hour: 8, Minute: 0},
			{Hour: 9, Minute: 0},
		}, booked)
	})

	t.Run("ZeroLengthEventYieldsNothing", func(t *testing.T) {
		start := time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC)
		events := []models.Event{{Start: start, End: start}}

		booked := Booked(events, 30*time.Minute, loc)

		assert.Empty(t, booked)
	})

	t.Run("NoEvents", func(t *testing.T) {
		booked := Booked(nil, 30*time.Minute, loc)

		assert.NotNil(t, booked, "handlers rely on an empty, non-nil slice")
		assert.Empty(t, booked)
	})
}
