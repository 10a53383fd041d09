package google

import (
	"context"
	"fmt"
	"sort"

	"github.com/tripkas/tripkas/pkg/user"
	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// CalendarItem is a calendar the current user may export a rundown to.
type CalendarItem struct {
	Id       string
	Summary  string
	TimeZone string
	Primary  bool
}

type Service interface {
	// GetCalendar opens a calendar of the current user for writing.
	GetCalendar(ctx context.Context, calendarId string) (EventWriter, error)
	// ListCalendars returns the writable calendars, the primary one first.
	ListCalendars(ctx context.Context) ([]CalendarItem, error)
}

type ServiceImpl struct {
	auth *GoogleAuth
}

func NewService(auth *GoogleAuth) *ServiceImpl {
	return &ServiceImpl{auth: auth}
}

func (s *ServiceImpl) GetCalendar(ctx context.Context, calendarId string) (EventWriter, error) {
	api, err := s.calendarApi(ctx)
	if err != nil {
		return nil, err
	}
	return newGoogleCalendar(api, calendarId), nil
}

func (s *ServiceImpl) ListCalendars(ctx context.Context) ([]CalendarItem, error) {
	api, err := s.calendarApi(ctx)
	if err != nil {
		return nil, err
	}

	var entries []*gcal.CalendarListEntry
	err = api.CalendarList.List().MinAccessRole("writer").Pages(ctx, func(page *gcal.CalendarList) error {
		entries = append(entries, page.Items...)
		return nil
	})
	if err != nil {
		err := fmt.Errorf("unable to list Google calendars: %w", err)
		log.Error(err)
		return nil, err
	}
	return writableCalendars(entries), nil
}

// writableCalendars keeps the entries a rundown can be written to. Owned and writer calendars
// qualify, read-only and free/busy subscriptions do not.
func writableCalendars(entries []*gcal.CalendarListEntry) []CalendarItem {
	items := make([]CalendarItem, 0, len(entries))
	for _, e := range entries {
		if e.Deleted || (e.AccessRole != "owner" && e.AccessRole != "writer") {
			continue
		}
		summary := e.Summary
		if e.SummaryOverride != "" {
			summary = e.SummaryOverride
		}
		items = append(items, CalendarItem{Id: e.Id, Summary: summary, TimeZone: e.TimeZone, Primary: e.Primary})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Primary != items[j].Primary {
			return items[i].Primary
		}
		return items[i].Summary < items[j].Summary
	})
	return items
}

func (s *ServiceImpl) calendarApi(ctx context.Context) (*gcal.Service, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, err
	}
	client, err := s.auth.getClient(ctx, userId)
	if err != nil {
		return nil, err
	}
	if client == nil {
		log.Debugf("user %d has not connected Google Calendar", userId)
		return nil, ErrUnauthenticated
	}
	api, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		err := fmt.Errorf("unable to create Google Calendar client: %w", err)
		log.Error(err)
		return nil, err
	}
	return api, nil
}
