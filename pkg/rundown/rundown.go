package rundown

import (
	"time"

	"github.com/tripkas/tripkas/internal/rest"
)

var ErrEntryNotFound = rest.NotFound("rundown entry not found")

// Entry is one item of the itinerary. StartTime and EndTime are optional "HH:MM" wall clock times.
type Entry struct {
	Id              int
	PlanId          int
	Day             time.Time
	StartTime       string
	EndTime         string
	Title           string
	Location        string
	Notes           string
	CalendarEventId *string
}

type ExportResult struct {
	Created int
	Updated int
}
