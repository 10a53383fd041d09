package google

import (
	"testing"
	"time"

	"github.com/tripkas/tripkas/internal/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gcal "google.golang.org/api/calendar/v3"
)

var day = time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)

func Test_toGoogleEvent(t *testing.T) {
	t.Run("should create an all-day event without a start time", func(t *testing.T) {
		// when
		event, err := toGoogleEvent(Event{Summary: "Free day", Day: day})

		// then
		require.NoError(t, err)
		assert.Equal(t, "2026-08-17", event.Start.Date)
		assert.Equal(t, "2026-08-18", event.End.Date)
		assert.Empty(t, event.Start.DateTime)
	})

	t.Run("should use wall clock times in the given time zone", func(t *testing.T) {
		// when
		event, err := toGoogleEvent(Event{Summary: "Snorkeling", Location: "Gili Air", Day: day, StartTime: "09:30", EndTime: "12:00", TimeZone: "Asia/Makassar"})

		// then
		require.NoError(t, err)
		assert.Equal(t, "Gili Air", event.Location)
		assert.Equal(t, "2026-08-17T09:30:00", event.Start.DateTime)
		assert.Equal(t, "2026-08-17T12:00:00", event.End.DateTime)
		assert.Equal(t, "Asia/Makassar", event.End.TimeZone)
	})

	t.Run("should last an hour without an end time", func(t *testing.T) {
		// when
		event, err := toGoogleEvent(Event{Day: day, StartTime: "19:00"})

		// then
		require.NoError(t, err)
		assert.Equal(t, "2026-08-17T20:00:00", event.End.DateTime)
	})

	t.Run("should end on the next day when ending before it starts", func(t *testing.T) {
		// when
		event, err := toGoogleEvent(Event{Day: day, StartTime: "22:00", EndTime: "01:30"})

		// then
		require.NoError(t, err)
		assert.Equal(t, "2026-08-18T01:30:00", event.End.DateTime)
	})

	t.Run("should reject malformed times", func(t *testing.T) {
		// when
		_, err := toGoogleEvent(Event{Day: day, StartTime: "9.30"})

		// then
		assert.ErrorIs(t, err, rest.ErrInvalid)
	})
}

func Test_writableCalendars(t *testing.T) {
	t.Run("should keep writable calendars with the primary one first", func(t *testing.T) {
		// given
		entries := []*gcal.CalendarListEntry{
			{Id: "holidays", Summary: "Indonesian holidays", AccessRole: "reader"},
			{Id: "trips", Summary: "Trips", AccessRole: "writer", TimeZone: "Asia/Jakarta"},
			{Id: "family", Summary: "Family", SummaryOverride: "Keluarga", AccessRole: "owner"},
			{Id: "me@example.com", Summary: "me@example.com", AccessRole: "owner", Primary: true},
			{Id: "old", Summary: "Old", AccessRole: "owner", Deleted: true},
		}

		// when
		items := writableCalendars(entries)

		// then
		require.Len(t, items, 3)
		assert.Equal(t, "me@example.com", items[0].Id)
		assert.True(t, items[0].Primary)
		assert.Equal(t, "Keluarga", items[1].Summary)
		assert.Equal(t, CalendarItem{Id: "trips", Summary: "Trips", TimeZone: "Asia/Jakarta"}, items[2])
	})
}
