package plan

import (
	"context"
	"errors"
	"fmt"

	"github.com/tripkas/tripkas/pkg/user"
	log "github.com/sirupsen/logrus"
)

// Authorizer answers whether the caller in ctx may read or change a plan. Every package that
// works on plan scoped data calls it before touching the repository.
type Authorizer interface {
	AccessFor(ctx context.Context, planId int) (Access, error)
	CanView(ctx context.Context, planId int) error
	CanEdit(ctx context.Context, planId int) error
	CanManage(ctx context.Context, planId int) error
}

type AuthorizerImpl struct {
	repo Repository
}

func NewAuthorizer(repo Repository) *AuthorizerImpl {
	return &AuthorizerImpl{repo: repo}
}

// AccessFor resolves the caller's access level. Owners and global admins manage a plan,
// admin collaborators edit it and viewer collaborators read it.
func (a *AuthorizerImpl) AccessFor(ctx context.Context, planId int) (Access, error) {
	auth, err := user.CurrentAuth(ctx)
	if err != nil {
		return AccessNone, fmt.Errorf("failed to get current user: %w", err)
	}
	plan, err := a.repo.GetPlan(ctx, planId)
	if err != nil {
		return AccessNone, err
	}
	if plan.OwnerId == auth.UserId || auth.CanEditAnyPlan() {
		return AccessManage, nil
	}
	collaborator, err := a.repo.GetCollaborator(ctx, planId, auth.UserId)
	if errors.Is(err, ErrCollaboratorNotFound) {
		return AccessNone, nil
	}
	if err != nil {
		return AccessNone, err
	}
	switch collaborator.Role {
	case RoleAdmin:
		return AccessEdit, nil
	case RoleViewer:
		return AccessView, nil
	default:
		log.Warnf("unknown collaborator role %q on plan %d", collaborator.Role, planId)
		return AccessNone, nil
	}
}

func (a *AuthorizerImpl) CanView(ctx context.Context, planId int) error {
	return a.require(ctx, planId, AccessView)
}

func (a *AuthorizerImpl) CanEdit(ctx context.Context, planId int) error {
	return a.require(ctx, planId, AccessEdit)
}

func (a *AuthorizerImpl) CanManage(ctx context.Context, planId int) error {
	return a.require(ctx, planId, AccessManage)
}

func (a *AuthorizerImpl) require(ctx context.Context, planId int, required Access) error {
	access, err := a.AccessFor(ctx, planId)
	if err != nil {
		return err
	}
	if access < required {
		log.Debugf("access %d to plan %d is below required %d", access, planId, required)
		return ErrForbidden
	}
	return nil
}
