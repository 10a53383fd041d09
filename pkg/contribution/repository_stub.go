package contribution

import (
	"context"
	"sort"

	"github.com/tripkas/tripkas/internal/database"
)

type RepositoryStub struct {
	contributions map[int]Contribution
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{contributions: map[int]Contribution{}}
}

func (s *RepositoryStub) Cleanup() {
	s.contributions = map[int]Contribution{}
}

// Put stores c as is, standing in for the rows the expense package creates.
func (s *RepositoryStub) Put(c Contribution) {
	s.contributions[c.Id] = c
}

func (s *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository, tx database.Querier) error) error {
	snapshot := make(map[int]Contribution, len(s.contributions))
	for id, c := range s.contributions {
		snapshot[id] = c
	}
	if err := fn(s, nil); err != nil {
		s.contributions = snapshot
		return err
	}
	return nil
}

func (s *RepositoryStub) List(ctx context.Context, planId int, filter Filter) ([]Contribution, error) {
	result := make([]Contribution, 0)
	for _, c := range s.contributions {
		if c.PlanId != planId {
			continue
		}
		if filter.ExpenseItemId != nil && c.ExpenseItemId != *filter.ExpenseItemId {
			continue
		}
		if filter.ParticipantId != nil && c.ParticipantId != *filter.ParticipantId {
			continue
		}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Id < result[j].Id })
	return result, nil
}

func (s *RepositoryStub) Get(ctx context.Context, planId int, contributionId int) (Contribution, error) {
	c, ok := s.contributions[contributionId]
	if !ok || c.PlanId != planId {
		return Contribution{}, ErrContributionNotFound
	}
	return c, nil
}

func (s *RepositoryStub) Update(ctx context.Context, c Contribution) error {
	if _, err := s.Get(ctx, c.PlanId, c.Id); err != nil {
		return err
	}
	s.contributions[c.Id] = c
	return nil
}
