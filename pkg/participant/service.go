package participant

import (
	"context"
	"strings"

	"github.com/tripkas/tripkas/internal/rest"
	"github.com/tripkas/tripkas/pkg/plan"
	"github.com/tripkas/tripkas/pkg/user"
)

type Service interface {
	List(ctx context.Context, planId int) ([]Participant, error)
	Create(ctx context.Context, participant Participant) (Participant, error)
	Update(ctx context.Context, participant Participant) (Participant, error)
	Delete(ctx context.Context, planId int, participantId int) error
}

type ServiceImpl struct {
	repo       Repository
	authorizer plan.Authorizer
	users      user.Repo
}

func NewService(repo Repository, authorizer plan.Authorizer, users user.Repo) *ServiceImpl {
	return &ServiceImpl{repo: repo, authorizer: authorizer, users: users}
}

func (s *ServiceImpl) List(ctx context.Context, planId int) ([]Participant, error) {
	if err := s.authorizer.CanView(ctx, planId); err != nil {
		return nil, err
	}
	return s.repo.ListParticipants(ctx, planId)
}

func (s *ServiceImpl) Create(ctx context.Context, p Participant) (Participant, error) {
	if err := s.authorizer.CanEdit(ctx, p.PlanId); err != nil {
		return Participant{}, err
	}
	if err := s.validate(ctx, &p); err != nil {
		return Participant{}, err
	}
	return s.repo.CreateParticipant(ctx, p)
}

func (s *ServiceImpl) Update(ctx context.Context, p Participant) (Participant, error) {
	if err := s.authorizer.CanEdit(ctx, p.PlanId); err != nil {
		return Participant{}, err
	}
	if err := s.validate(ctx, &p); err != nil {
		return Participant{}, err
	}
	return s.repo.UpdateParticipant(ctx, p)
}

func (s *ServiceImpl) Delete(ctx context.Context, planId int, participantId int) error {
	if err := s.authorizer.CanEdit(ctx, planId); err != nil {
		return err
	}
	deleted, err := s.repo.DeleteParticipant(ctx, planId, participantId)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrParticipantNotFound
	}
	return nil
}

func (s *ServiceImpl) validate(ctx context.Context, p *Participant) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return rest.Invalid("participant name is required")
	}
	if p.UserId != nil {
		if _, err := s.users.GetUser(ctx, *p.UserId); err != nil {
			return err
		}
	}
	return nil
}
