package plan

import (
	"context"
	"sort"
	"time"
)

type RepositoryStub struct {
	nextId        int
	plans         map[int]Plan
	hashes        map[int]string
	collaborators map[int]map[int]CollaboratorRole
}

func NewRepositoryStub() *RepositoryStub {
	s := &RepositoryStub{}
	s.Cleanup()
	return s
}

func (s *RepositoryStub) Cleanup() {
	s.nextId = 0
	s.plans = map[int]Plan{}
	s.hashes = map[int]string{}
	s.collaborators = map[int]map[int]CollaboratorRole{}
}

func (s *RepositoryStub) CreatePlan(ctx context.Context, plan Plan, passwordHash *string) (Plan, error) {
	s.nextId++
	plan.Id = s.nextId
	plan.Created = time.Date(2026, 1, 1, 0, 0, s.nextId, 0, time.UTC)
	plan.HasPassword = passwordHash != nil
	if passwordHash != nil {
		s.hashes[plan.Id] = *passwordHash
	}
	s.plans[plan.Id] = plan
	return plan, nil
}

func (s *RepositoryStub) GetPlan(ctx context.Context, planId int) (Plan, error) {
	plan, ok := s.plans[planId]
	if !ok {
		return Plan{}, ErrPlanNotFound
	}
	return plan, nil
}

func (s *RepositoryStub) GetPlanBySlug(ctx context.Context, slug string) (Plan, error) {
	for _, plan := range s.plans {
		if plan.ShareSlug == slug {
			return plan, nil
		}
	}
	return Plan{}, ErrPlanNotFound
}

func (s *RepositoryStub) GetPasswordHash(ctx context.Context, planId int) (string, error) {
	if _, ok := s.plans[planId]; !ok {
		return "", ErrPlanNotFound
	}
	return s.hashes[planId], nil
}

func (s *RepositoryStub) ListPlans(ctx context.Context, userId int) ([]Plan, error) {
	plans := make([]Plan, 0)
	for _, plan := range s.plans {
		_, collaborates := s.collaborators[plan.Id][userId]
		if plan.OwnerId == userId || collaborates {
			plans = append(plans, plan)
		}
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].Id > plans[j].Id })
	return plans, nil
}

func (s *RepositoryStub) CountOwnedPlans(ctx context.Context, userId int) (int, error) {
	count := 0
	for _, plan := range s.plans {
		if plan.OwnerId == userId {
			count++
		}
	}
	return count, nil
}

func (s *RepositoryStub) UpdatePlan(ctx context.Context, plan Plan) (Plan, error) {
	stored, ok := s.plans[plan.Id]
	if !ok {
		return Plan{}, ErrPlanNotFound
	}
	stored.Title = plan.Title
	stored.Destination = plan.Destination
	stored.StartDate = plan.StartDate
	stored.EndDate = plan.EndDate
	s.plans[plan.Id] = stored
	return stored, nil
}

func (s *RepositoryStub) UpdateSharing(ctx context.Context, planId int, isPublic bool, passwordHash *string) (Plan, error) {
	stored, ok := s.plans[planId]
	if !ok {
		return Plan{}, ErrPlanNotFound
	}
	stored.IsPublic = isPublic
	stored.HasPassword = passwordHash != nil
	if passwordHash != nil {
		s.hashes[planId] = *passwordHash
	} else {
		delete(s.hashes, planId)
	}
	s.plans[planId] = stored
	return stored, nil
}

func (s *RepositoryStub) DeletePlan(ctx context.Context, planId int) (bool, error) {
	if _, ok := s.plans[planId]; !ok {
		return false, nil
	}
	delete(s.plans, planId)
	delete(s.hashes, planId)
	delete(s.collaborators, planId)
	return true, nil
}

func (s *RepositoryStub) GetCollaborator(ctx context.Context, planId int, userId int) (Collaborator, error) {
	role, ok := s.collaborators[planId][userId]
	if !ok {
		return Collaborator{}, ErrCollaboratorNotFound
	}
	return Collaborator{PlanId: planId, UserId: userId, Role: role}, nil
}

func (s *RepositoryStub) ListCollaborators(ctx context.Context, planId int) ([]Collaborator, error) {
	collaborators := make([]Collaborator, 0)
	for userId, role := range s.collaborators[planId] {
		collaborators = append(collaborators, Collaborator{PlanId: planId, UserId: userId, Role: role})
	}
	sort.Slice(collaborators, func(i, j int) bool { return collaborators[i].UserId < collaborators[j].UserId })
	return collaborators, nil
}

func (s *RepositoryStub) StoreCollaborator(ctx context.Context, c Collaborator) error {
	if s.collaborators[c.PlanId] == nil {
		s.collaborators[c.PlanId] = map[int]CollaboratorRole{}
	}
	s.collaborators[c.PlanId][c.UserId] = c.Role
	return nil
}

func (s *RepositoryStub) DeleteCollaborator(ctx context.Context, planId int, userId int) (bool, error) {
	if _, ok := s.collaborators[planId][userId]; !ok {
		return false, nil
	}
	delete(s.collaborators[planId], userId)
	return true, nil
}
