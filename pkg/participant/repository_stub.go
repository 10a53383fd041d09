package participant

import (
	"context"
	"sort"
)

type RepositoryStub struct {
	nextId       int
	participants map[int]Participant
	// InUse marks participants the stub refuses to delete.
	InUse map[int]bool
}

func NewRepositoryStub() *RepositoryStub {
	s := &RepositoryStub{}
	s.Cleanup()
	return s
}

func (s *RepositoryStub) Cleanup() {
	s.nextId = 0
	s.participants = map[int]Participant{}
	s.InUse = map[int]bool{}
}

func (s *RepositoryStub) ListParticipants(ctx context.Context, planId int) ([]Participant, error) {
	result := make([]Participant, 0)
	for _, p := range s.participants {
		if p.PlanId == planId {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Id < result[j].Id })
	return result, nil
}

func (s *RepositoryStub) GetParticipant(ctx context.Context, planId int, participantId int) (Participant, error) {
	p, ok := s.participants[participantId]
	if !ok || p.PlanId != planId {
		return Participant{}, ErrParticipantNotFound
	}
	return p, nil
}

func (s *RepositoryStub) CreateParticipant(ctx context.Context, p Participant) (Participant, error) {
	s.nextId++
	p.Id = s.nextId
	s.participants[p.Id] = p
	return p, nil
}

func (s *RepositoryStub) UpdateParticipant(ctx context.Context, p Participant) (Participant, error) {
	stored, ok := s.participants[p.Id]
	if !ok || stored.PlanId != p.PlanId {
		return Participant{}, ErrParticipantNotFound
	}
	s.participants[p.Id] = p
	return p, nil
}

func (s *RepositoryStub) DeleteParticipant(ctx context.Context, planId int, participantId int) (bool, error) {
	p, ok := s.participants[participantId]
	if !ok || p.PlanId != planId {
		return false, nil
	}
	if s.InUse[participantId] {
		return false, ErrParticipantInUse
	}
	delete(s.participants, participantId)
	return true, nil
}
