package rundown

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tripkas/tripkas/internal/rest"
	"github.com/tripkas/tripkas/pkg/google"
	"github.com/tripkas/tripkas/pkg/plan"
	log "github.com/sirupsen/logrus"
)

// DefaultTimeZone is used for exported entries when the caller names none.
const DefaultTimeZone = "Asia/Jakarta"

type Service interface {
	List(ctx context.Context, planId int) ([]Entry, error)
	Create(ctx context.Context, entry Entry) (Entry, error)
	Update(ctx context.Context, entry Entry) (Entry, error)
	Delete(ctx context.Context, planId int, entryId int) error
	// Export writes the rundown to a Google calendar of the current user. Entries exported before
	// are updated in place.
	Export(ctx context.Context, planId int, calendarId string, timeZone string) (ExportResult, error)
}

type ServiceImpl struct {
	repo       Repository
	authorizer plan.Authorizer
	calendars  google.Service
}

func NewService(repo Repository, authorizer plan.Authorizer, calendars google.Service) *ServiceImpl {
	return &ServiceImpl{repo: repo, authorizer: authorizer, calendars: calendars}
}

func (s *ServiceImpl) List(ctx context.Context, planId int) ([]Entry, error) {
	if err := s.authorizer.CanView(ctx, planId); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, planId)
}

func (s *ServiceImpl) Create(ctx context.Context, entry Entry) (Entry, error) {
	if err := s.authorizer.CanEdit(ctx, entry.PlanId); err != nil {
		return Entry{}, err
	}
	if err := validate(&entry); err != nil {
		return Entry{}, err
	}
	return s.repo.Create(ctx, entry)
}

func (s *ServiceImpl) Update(ctx context.Context, entry Entry) (Entry, error) {
	if err := s.authorizer.CanEdit(ctx, entry.PlanId); err != nil {
		return Entry{}, err
	}
	if err := validate(&entry); err != nil {
		return Entry{}, err
	}
	return s.repo.Update(ctx, entry)
}

func (s *ServiceImpl) Delete(ctx context.Context, planId int, entryId int) error {
	if err := s.authorizer.CanEdit(ctx, planId); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, planId, entryId)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrEntryNotFound
	}
	return nil
}

func (s *ServiceImpl) Export(ctx context.Context, planId int, calendarId string, timeZone string) (ExportResult, error) {
	// exported event ids are stored on the shared entries
	if err := s.authorizer.CanEdit(ctx, planId); err != nil {
		return ExportResult{}, err
	}
	if calendarId == "" {
		return ExportResult{}, rest.Invalid("calendarId is required")
	}
	if timeZone == "" {
		timeZone = DefaultTimeZone
	}

	entries, err := s.repo.List(ctx, planId)
	if err != nil {
		return ExportResult{}, err
	}
	calendar, err := s.calendars.GetCalendar(ctx, calendarId)
	if err != nil {
		return ExportResult{}, err
	}

	var result ExportResult
	for _, entry := range entries {
		event := toEvent(entry, timeZone)
		var eventId string
		if entry.CalendarEventId != nil {
			eventId, err = calendar.UpdateEvent(ctx, *entry.CalendarEventId, event)
			result.Updated++
		} else {
			eventId, err = calendar.InsertEvent(ctx, event)
			result.Created++
		}
		if err != nil {
			return result, fmt.Errorf("failed to export rundown entry %d: %w", entry.Id, err)
		}
		if err := s.repo.SetCalendarEventId(ctx, planId, entry.Id, eventId); err != nil {
			return result, err
		}
	}
	log.Debugf("Exported rundown of plan %d to calendar %s: %+v", planId, calendarId, result)
	return result, nil
}

func toEvent(entry Entry, timeZone string) google.Event {
	return google.Event{
		Summary:     entry.Title,
		Location:    entry.Location,
		Description: entry.Notes,
		Day:         entry.Day,
		StartTime:   entry.StartTime,
		EndTime:     entry.EndTime,
		TimeZone:    timeZone,
	}
}

func validate(entry *Entry) error {
	entry.Title = strings.TrimSpace(entry.Title)
	if entry.Title == "" {
		return rest.Invalid("title is required")
	}
	if entry.Day.IsZero() {
		return rest.Invalid("day is required")
	}
	for _, clock := range []string{entry.StartTime, entry.EndTime} {
		if clock == "" {
			continue
		}
		if _, err := time.Parse("15:04", clock); err != nil {
			return rest.Invalid("invalid time %q, expected HH:MM", clock)
		}
	}
	if entry.StartTime == "" && entry.EndTime != "" {
		return rest.Invalid("an end time needs a start time")
	}
	return nil
}
