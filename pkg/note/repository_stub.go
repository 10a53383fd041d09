package note

import (
	"context"
	"sort"
)

type RepositoryStub struct {
	nextId int
	notes  map[int]Note
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{notes: map[int]Note{}}
}

func (s *RepositoryStub) Cleanup() {
	s.nextId = 0
	s.notes = map[int]Note{}
}

func (s *RepositoryStub) List(ctx context.Context, planId int) ([]Note, error) {
	result := make([]Note, 0)
	for _, n := range s.notes {
		if n.PlanId == planId {
			result = append(result, n)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Updated.Equal(result[j].Updated) {
			return result[i].Updated.After(result[j].Updated)
		}
		return result[i].Id > result[j].Id
	})
	return result, nil
}

func (s *RepositoryStub) Create(ctx context.Context, n Note) (Note, error) {
	s.nextId++
	n.Id = s.nextId
	s.notes[n.Id] = n
	return n, nil
}

func (s *RepositoryStub) Update(ctx context.Context, n Note) (Note, error) {
	existing, ok := s.notes[n.Id]
	if !ok || existing.PlanId != n.PlanId {
		return Note{}, ErrNoteNotFound
	}
	s.notes[n.Id] = n
	return n, nil
}

func (s *RepositoryStub) Delete(ctx context.Context, planId int, noteId int) (bool, error) {
	existing, ok := s.notes[noteId]
	if !ok || existing.PlanId != planId {
		return false, nil
	}
	delete(s.notes, noteId)
	return true, nil
}
