package payment_history

import (
	"context"
	"sort"

	"github.com/tripkas/tripkas/internal/database"
)

type RepositoryStub struct {
	nextId  int
	records []Record
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{}
}

func (s *RepositoryStub) Cleanup() {
	s.nextId = 0
	s.records = nil
}

func (s *RepositoryStub) Insert(ctx context.Context, q database.Querier, rec Record) (Record, error) {
	s.nextId++
	rec.Id = s.nextId
	s.records = append(s.records, rec)
	return rec, nil
}

func (s *RepositoryStub) List(ctx context.Context, planId int, filter Filter) ([]Record, error) {
	result := make([]Record, 0)
	for _, rec := range s.records {
		if rec.PlanId != planId {
			continue
		}
		if filter.ContributionId != nil && (rec.ContributionId == nil || *rec.ContributionId != *filter.ContributionId) {
			continue
		}
		if filter.ParticipantId != nil && rec.ParticipantId != *filter.ParticipantId {
			continue
		}
		result = append(result, rec)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Id > result[j].Id })
	return result, nil
}

// All returns every stored record in insertion order.
func (s *RepositoryStub) All() []Record {
	return append([]Record(nil), s.records...)
}
