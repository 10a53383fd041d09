package rundown

import (
	"context"
	"sort"
)

type RepositoryStub struct {
	nextId  int
	entries map[int]Entry
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{entries: map[int]Entry{}}
}

func (s *RepositoryStub) Cleanup() {
	s.nextId = 0
	s.entries = map[int]Entry{}
}

func (s *RepositoryStub) List(ctx context.Context, planId int) ([]Entry, error) {
	result := make([]Entry, 0)
	for _, e := range s.entries {
		if e.PlanId == planId {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Day.Equal(result[j].Day) {
			return result[i].Day.Before(result[j].Day)
		}
		if result[i].StartTime != result[j].StartTime {
			return result[i].StartTime < result[j].StartTime
		}
		return result[i].Id < result[j].Id
	})
	return result, nil
}

func (s *RepositoryStub) Get(ctx context.Context, planId int, entryId int) (Entry, error) {
	e, ok := s.entries[entryId]
	if !ok || e.PlanId != planId {
		return Entry{}, ErrEntryNotFound
	}
	return e, nil
}

func (s *RepositoryStub) Create(ctx context.Context, e Entry) (Entry, error) {
	s.nextId++
	e.Id = s.nextId
	e.CalendarEventId = nil
	s.entries[e.Id] = e
	return e, nil
}

func (s *RepositoryStub) Update(ctx context.Context, e Entry) (Entry, error) {
	existing, err := s.Get(ctx, e.PlanId, e.Id)
	if err != nil {
		return Entry{}, err
	}
	e.CalendarEventId = existing.CalendarEventId
	s.entries[e.Id] = e
	return e, nil
}

func (s *RepositoryStub) Delete(ctx context.Context, planId int, entryId int) (bool, error) {
	if _, err := s.Get(ctx, planId, entryId); err != nil {
		return false, nil
	}
	delete(s.entries, entryId)
	return true, nil
}

func (s *RepositoryStub) SetCalendarEventId(ctx context.Context, planId int, entryId int, eventId string) error {
	e, err := s.Get(ctx, planId, entryId)
	if err != nil {
		return err
	}
	e.CalendarEventId = &eventId
	s.entries[entryId] = e
	return nil
}
