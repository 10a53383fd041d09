package payment_history

import (
	"context"

	"github.com/tripkas/tripkas/internal/database"
	"github.com/tripkas/tripkas/internal/utils"
	"github.com/tripkas/tripkas/pkg/plan"
)

// Recorder appends audit records for contribution mutations. It never checks access, the caller
// already did before starting the mutation.
type Recorder interface {
	Record(ctx context.Context, q database.Querier, change Change) (Record, error)
}

type Service interface {
	Recorder
	List(ctx context.Context, planId int, filter Filter) ([]Record, error)
}

type ServiceImpl struct {
	repo       Repository
	authorizer plan.Authorizer
	clock      utils.Clock
}

func NewService(repo Repository, authorizer plan.Authorizer, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, authorizer: authorizer, clock: clock}
}

func (s *ServiceImpl) Record(ctx context.Context, q database.Querier, change Change) (Record, error) {
	return s.repo.Insert(ctx, q, newRecord(change, s.clock.Now()))
}

func (s *ServiceImpl) List(ctx context.Context, planId int, filter Filter) ([]Record, error) {
	if err := s.authorizer.CanView(ctx, planId); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, planId, filter)
}
