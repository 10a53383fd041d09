package plan

import (
	"context"
	"testing"

	"github.com/tripkas/tripkas/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizerImpl_AccessFor(t *testing.T) {
	repo := NewRepositoryStub()
	authorizer := NewAuthorizer(repo)
	ctx := context.Background()
	plan, err := repo.CreatePlan(ctx, Plan{OwnerId: 1, Title: "Bali"}, nil)
	require.NoError(t, err)
	require.NoError(t, repo.StoreCollaborator(ctx, Collaborator{PlanId: plan.Id, UserId: 2, Role: RoleAdmin}))
	require.NoError(t, repo.StoreCollaborator(ctx, Collaborator{PlanId: plan.Id, UserId: 3, Role: RoleViewer}))

	tests := []struct {
		name     string
		auth     user.AuthContext
		expected Access
	}{
		{name: "owner manages", auth: user.AuthContext{UserId: 1, Role: user.RoleUser}, expected: AccessManage},
		{name: "admin collaborator edits", auth: user.AuthContext{UserId: 2, Role: user.RoleUser}, expected: AccessEdit},
		{name: "viewer collaborator views", auth: user.AuthContext{UserId: 3, Role: user.RoleUser}, expected: AccessView},
		{name: "stranger has no access", auth: user.AuthContext{UserId: 4, Role: user.RoleUser}, expected: AccessNone},
		{name: "superadmin manages", auth: user.AuthContext{UserId: 5, Role: user.RoleSuperadmin}, expected: AccessManage},
		{name: "env admin manages", auth: user.AuthContext{UserId: 6, Role: user.RoleUser, IsEnvAdmin: true}, expected: AccessManage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// given
			authCtx := user.WithAuth(ctx, user.User{Id: tt.auth.UserId, Role: tt.auth.Role}, tt.auth)

			// when
			access, err := authorizer.AccessFor(authCtx, plan.Id)

			// then
			require.NoError(t, err)
			assert.Equal(t, tt.expected, access)
		})
	}

	t.Run("viewer can view but not edit", func(t *testing.T) {
		viewerCtx := user.WithUser(ctx, user.User{Id: 3})

		assert.NoError(t, authorizer.CanView(viewerCtx, plan.Id))
		assert.ErrorIs(t, authorizer.CanEdit(viewerCtx, plan.Id), ErrForbidden)
	})

	t.Run("missing plan is not found", func(t *testing.T) {
		_, err := authorizer.AccessFor(user.WithUser(ctx, user.User{Id: 1}), 404)

		assert.ErrorIs(t, err, ErrPlanNotFound)
	})
}
