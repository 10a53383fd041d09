package note

import (
	"context"
	"strings"

	"github.com/tripkas/tripkas/internal/rest"
	"github.com/tripkas/tripkas/internal/utils"
	"github.com/tripkas/tripkas/pkg/plan"
)

type Service interface {
	List(ctx context.Context, planId int) ([]Note, error)
	Create(ctx context.Context, note Note) (Note, error)
	Update(ctx context.Context, note Note) (Note, error)
	Delete(ctx context.Context, planId int, noteId int) error
}

type ServiceImpl struct {
	repo       Repository
	authorizer plan.Authorizer
	clock      utils.Clock
}

func NewService(repo Repository, authorizer plan.Authorizer, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, authorizer: authorizer, clock: clock}
}

func (s *ServiceImpl) List(ctx context.Context, planId int) ([]Note, error) {
	if err := s.authorizer.CanView(ctx, planId); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, planId)
}

func (s *ServiceImpl) Create(ctx context.Context, note Note) (Note, error) {
	if err := s.prepare(ctx, &note); err != nil {
		return Note{}, err
	}
	return s.repo.Create(ctx, note)
}

func (s *ServiceImpl) Update(ctx context.Context, note Note) (Note, error) {
	if err := s.prepare(ctx, &note); err != nil {
		return Note{}, err
	}
	return s.repo.Update(ctx, note)
}

func (s *ServiceImpl) Delete(ctx context.Context, planId int, noteId int) error {
	if err := s.authorizer.CanEdit(ctx, planId); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, planId, noteId)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNoteNotFound
	}
	return nil
}

func (s *ServiceImpl) prepare(ctx context.Context, note *Note) error {
	if err := s.authorizer.CanEdit(ctx, note.PlanId); err != nil {
		return err
	}
	note.Title = strings.TrimSpace(note.Title)
	if note.Title == "" {
		return rest.Invalid("title is required")
	}
	note.Updated = s.clock.Now()
	return nil
}
