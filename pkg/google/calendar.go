package google

import (
	"context"
	"fmt"
	"time"

	"github.com/tripkas/tripkas/internal/rest"
	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
)

var ErrUnauthenticated = rest.Forbidden("Google Calendar is not connected")

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05"
)

// Event is an itinerary entry to be written to a calendar. Entries without a start time become
// all-day events. Times are wall clock times in TimeZone.
type Event struct {
	Summary     string
	Location    string
	Description string
	Day         time.Time
	StartTime   string
	EndTime     string
	TimeZone    string
}

// EventWriter writes events to one calendar and returns the calendar's event id.
type EventWriter interface {
	InsertEvent(ctx context.Context, event Event) (string, error)
	UpdateEvent(ctx context.Context, eventId string, event Event) (string, error)
}

type Calendar struct {
	service    *gcal.Service
	calendarId string
}

func newGoogleCalendar(service *gcal.Service, calendarId string) *Calendar {
	return &Calendar{service: service, calendarId: calendarId}
}

func (c *Calendar) InsertEvent(ctx context.Context, event Event) (string, error) {
	log.Debugf("Adding event: %+v, to calendar: %s", event, c.calendarId)
	googleEvent, err := toGoogleEvent(event)
	if err != nil {
		return "", err
	}
	result, err := c.service.Events.Insert(c.calendarId, googleEvent).Context(ctx).Do()
	if err != nil {
		err := fmt.Errorf("unable to insert event in Google Calendar: %v", err)
		log.Error(err)
		return "", err
	}
	return result.Id, nil
}

func (c *Calendar) UpdateEvent(ctx context.Context, eventId string, event Event) (string, error) {
	googleEvent, err := toGoogleEvent(event)
	if err != nil {
		return "", err
	}
	result, err := c.service.Events.Update(c.calendarId, eventId, googleEvent).Context(ctx).Do()
	if err != nil {
		err := fmt.Errorf("unable to update event in Google Calendar: %v", err)
		log.Error(err)
		return "", err
	}
	return result.Id, nil
}

func toGoogleEvent(event Event) (*gcal.Event, error) {
	googleEvent := &gcal.Event{
		Summary:     event.Summary,
		Location:    event.Location,
		Description: event.Description,
	}
	if event.StartTime == "" {
		googleEvent.Start = &gcal.EventDateTime{Date: event.Day.Format(dateLayout)}
		googleEvent.End = &gcal.EventDateTime{Date: event.Day.AddDate(0, 0, 1).Format(dateLayout)}
		return googleEvent, nil
	}

	start, err := atTime(event.Day, event.StartTime)
	if err != nil {
		return nil, err
	}
	end := start.Add(time.Hour)
	if event.EndTime != "" {
		end, err = atTime(event.Day, event.EndTime)
		if err != nil {
			return nil, err
		}
		// past midnight
		if end.Before(start) {
			end = end.AddDate(0, 0, 1)
		}
	}
	googleEvent.Start = &gcal.EventDateTime{DateTime: start.Format(dateTimeLayout), TimeZone: event.TimeZone}
	googleEvent.End = &gcal.EventDateTime{DateTime: end.Format(dateTimeLayout), TimeZone: event.TimeZone}
	return googleEvent, nil
}

func atTime(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, rest.Invalid("invalid time %q, expected HH:MM", clock)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}
