package user

import (
	"context"

	log "github.com/sirupsen/logrus"
)

type contextKey string

const (
	UserKey contextKey = "user"
	authKey contextKey = "auth"
)

// CurrentId retrieves the current user's ID from the context. Returns ErrNoUser if ID not present in context.
func CurrentId(ctx context.Context) (int, error) {
	user, err := CurrentUser(ctx)
	if err != nil {
		return 0, err
	}
	return user.Id, nil
}

func CurrentUser(ctx context.Context) (User, error) {
	user, ok := ctx.Value(UserKey).(User)
	if !ok {
		log.Trace("user not found in context")
		return User{}, ErrNoUser
	}
	return user, nil
}

// CurrentAuth returns the AuthContext stored by WithAuth. When only a User is present, the
// context is derived from the user record without environment admin rights.
func CurrentAuth(ctx context.Context) (AuthContext, error) {
	if auth, ok := ctx.Value(authKey).(AuthContext); ok {
		return auth, nil
	}
	u, err := CurrentUser(ctx)
	if err != nil {
		return AuthContext{}, err
	}
	return AuthContext{UserId: u.Id, Role: roleOrDefault(u.Role), IsPremium: u.IsPremium}, nil
}

func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

func WithAuth(ctx context.Context, user User, auth AuthContext) context.Context {
	return context.WithValue(WithUser(ctx, user), authKey, auth)
}

func roleOrDefault(role Role) Role {
	if role == "" {
		return RoleUser
	}
	return role
}
