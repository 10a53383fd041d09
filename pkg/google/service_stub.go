package google

import (
	"context"
	"fmt"
)

// ServiceStub keeps calendars in memory.
type ServiceStub struct {
	Calendars map[string]*CalendarStub
	// Connected false makes every call fail with ErrUnauthenticated.
	Connected bool
}

func NewServiceStub() *ServiceStub {
	return &ServiceStub{Calendars: map[string]*CalendarStub{}, Connected: true}
}

func (s *ServiceStub) GetCalendar(ctx context.Context, calendarId string) (EventWriter, error) {
	if !s.Connected {
		return nil, ErrUnauthenticated
	}
	c, ok := s.Calendars[calendarId]
	if !ok {
		c = &CalendarStub{Events: map[string]Event{}}
		s.Calendars[calendarId] = c
	}
	return c, nil
}

func (s *ServiceStub) ListCalendars(ctx context.Context) ([]CalendarItem, error) {
	if !s.Connected {
		return nil, ErrUnauthenticated
	}
	items := make([]CalendarItem, 0, len(s.Calendars))
	for id := range s.Calendars {
		items = append(items, CalendarItem{Id: id, Summary: id})
	}
	return items, nil
}

type CalendarStub struct {
	nextId int
	Events map[string]Event
}

func (c *CalendarStub) InsertEvent(ctx context.Context, event Event) (string, error) {
	if _, err := toGoogleEvent(event); err != nil {
		return "", err
	}
	c.nextId++
	id := fmt.Sprintf("event-%d", c.nextId)
	c.Events[id] = event
	return id, nil
}

func (c *CalendarStub) UpdateEvent(ctx context.Context, eventId string, event Event) (string, error) {
	if _, ok := c.Events[eventId]; !ok {
		return c.InsertEvent(ctx, event)
	}
	c.Events[eventId] = event
	return eventId, nil
}
