package plan

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tripkas/tripkas/internal/event_bus"
	"github.com/tripkas/tripkas/internal/rest"
	"github.com/tripkas/tripkas/pkg/user"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 4

type Service interface {
	ListPlans(ctx context.Context) ([]Plan, error)
	GetPlan(ctx context.Context, planId int) (Plan, error)
	CreatePlan(ctx context.Context, plan Plan) (Plan, error)
	UpdatePlan(ctx context.Context, plan Plan) (Plan, error)
	DeletePlan(ctx context.Context, planId int) error
	UpdateSharing(ctx context.Context, planId int, settings ShareSettings) (Plan, error)
	ListCollaborators(ctx context.Context, planId int) ([]Collaborator, error)
	AddCollaborator(ctx context.Context, collaborator Collaborator) (Collaborator, error)
	RemoveCollaborator(ctx context.Context, planId int, userId int) error
}

type ServiceImpl struct {
	repo       Repository
	authorizer Authorizer
	users      user.Repo
	eventBus   *event_bus.EventBus
	freePlans  int
}

// NewService creates the plan service. freePlans limits how many plans a non-premium user may
// own; zero or less disables the limit.
func NewService(repo Repository, authorizer Authorizer, users user.Repo, eventBus *event_bus.EventBus, freePlans int) *ServiceImpl {
	return &ServiceImpl{repo: repo, authorizer: authorizer, users: users, eventBus: eventBus, freePlans: freePlans}
}

func (s *ServiceImpl) ListPlans(ctx context.Context) ([]Plan, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ListPlans(ctx, userId)
}

func (s *ServiceImpl) GetPlan(ctx context.Context, planId int) (Plan, error) {
	if err := s.authorizer.CanView(ctx, planId); err != nil {
		return Plan{}, err
	}
	return s.repo.GetPlan(ctx, planId)
}

func (s *ServiceImpl) CreatePlan(ctx context.Context, plan Plan) (Plan, error) {
	auth, err := user.CurrentAuth(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validatePlan(plan); err != nil {
		return Plan{}, err
	}

	if s.freePlans > 0 && !auth.HasPremium() {
		owned, err := s.repo.CountOwnedPlans(ctx, auth.UserId)
		if err != nil {
			return Plan{}, err
		}
		if owned >= s.freePlans {
			log.Debugf("user %d reached the free plan limit (%d)", auth.UserId, s.freePlans)
			return Plan{}, ErrPlanLimitReached
		}
	}

	plan.OwnerId = auth.UserId
	plan.ShareSlug = uuid.NewString()
	plan.IsPublic = false
	return s.repo.CreatePlan(ctx, plan, nil)
}

func (s *ServiceImpl) UpdatePlan(ctx context.Context, plan Plan) (Plan, error) {
	if err := s.authorizer.CanEdit(ctx, plan.Id); err != nil {
		return Plan{}, err
	}
	if err := validatePlan(plan); err != nil {
		return Plan{}, err
	}
	updated, err := s.repo.UpdatePlan(ctx, plan)
	if err != nil {
		return Plan{}, err
	}
	s.publish(ctx, event_bus.PlanUpdated, updated)
	return updated, nil
}

func (s *ServiceImpl) DeletePlan(ctx context.Context, planId int) error {
	if err := s.authorizer.CanManage(ctx, planId); err != nil {
		return err
	}
	plan, err := s.repo.GetPlan(ctx, planId)
	if err != nil {
		return err
	}
	deleted, err := s.repo.DeletePlan(ctx, planId)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrPlanNotFound
	}
	s.publish(ctx, event_bus.PlanDeleted, plan)
	return nil
}

func (s *ServiceImpl) UpdateSharing(ctx context.Context, planId int, settings ShareSettings) (Plan, error) {
	if err := s.authorizer.CanManage(ctx, planId); err != nil {
		return Plan{}, err
	}

	var passwordHash *string
	switch {
	case settings.RemovePassword:
		passwordHash = nil
	case settings.Password != "":
		if len(settings.Password) < minPasswordLength {
			return Plan{}, rest.Invalid("password must have at least %d characters", minPasswordLength)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(settings.Password), bcrypt.DefaultCost)
		if err != nil {
			return Plan{}, fmt.Errorf("failed to hash password: %w", err)
		}
		h := string(hash)
		passwordHash = &h
	default:
		current, err := s.repo.GetPasswordHash(ctx, planId)
		if err != nil {
			return Plan{}, err
		}
		if current != "" {
			passwordHash = &current
		}
	}

	updated, err := s.repo.UpdateSharing(ctx, planId, settings.IsPublic, passwordHash)
	if err != nil {
		return Plan{}, err
	}
	s.publish(ctx, event_bus.PlanUpdated, updated)
	return updated, nil
}

func (s *ServiceImpl) ListCollaborators(ctx context.Context, planId int) ([]Collaborator, error) {
	if err := s.authorizer.CanView(ctx, planId); err != nil {
		return nil, err
	}
	return s.repo.ListCollaborators(ctx, planId)
}

func (s *ServiceImpl) AddCollaborator(ctx context.Context, c Collaborator) (Collaborator, error) {
	if err := s.authorizer.CanManage(ctx, c.PlanId); err != nil {
		return Collaborator{}, err
	}
	if c.Role != RoleAdmin && c.Role != RoleViewer {
		return Collaborator{}, rest.Invalid("invalid collaborator role %q", c.Role)
	}
	plan, err := s.repo.GetPlan(ctx, c.PlanId)
	if err != nil {
		return Collaborator{}, err
	}
	if plan.OwnerId == c.UserId {
		return Collaborator{}, rest.Invalid("the owner cannot be added as collaborator")
	}
	if _, err := s.users.GetUser(ctx, c.UserId); err != nil {
		return Collaborator{}, err
	}
	if err := s.repo.StoreCollaborator(ctx, c); err != nil {
		return Collaborator{}, err
	}
	return c, nil
}

func (s *ServiceImpl) RemoveCollaborator(ctx context.Context, planId int, userId int) error {
	if err := s.authorizer.CanManage(ctx, planId); err != nil {
		return err
	}
	deleted, err := s.repo.DeleteCollaborator(ctx, planId, userId)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrCollaboratorNotFound
	}
	return nil
}

// publish notifies subscribers after the change is stored. Subscriber failures are logged only,
// the change itself already happened.
func (s *ServiceImpl) publish(ctx context.Context, eventType event_bus.EventType, plan Plan) {
	if s.eventBus == nil {
		return
	}
	err := s.eventBus.Publish(event_bus.NewEvent(ctx, eventType, event_bus.PlanChanged{
		PlanId:    plan.Id,
		ShareSlug: plan.ShareSlug,
	}))
	if err != nil {
		log.Errorf("failed to publish %s event for plan %d: %v", eventType, plan.Id, err)
	}
}

func validatePlan(plan Plan) error {
	if strings.TrimSpace(plan.Title) == "" {
		return rest.Invalid("title is required")
	}
	if plan.StartDate != nil && plan.EndDate != nil && plan.EndDate.Before(*plan.StartDate) {
		return rest.Invalid("end date must not be before start date")
	}
	return nil
}
