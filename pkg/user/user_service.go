package user

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

type Service interface {
	GetCurrentUser(ctx context.Context) (User, error)
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	UpdateUser(ctx context.Context, user User) (User, error)
	GetAllUsers(ctx context.Context) ([]User, error)
	// Authorize builds the AuthContext for u.
	Authorize(u User) AuthContext
}

type UserServiceImpl struct {
	repo      Repo
	envAdmins []string
}

func NewUserService(repo Repo, envAdmins []string) *UserServiceImpl {
	return &UserServiceImpl{repo: repo, envAdmins: envAdmins}
}

func (u *UserServiceImpl) GetCurrentUser(ctx context.Context) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return u.GetUser(ctx, userId)
}

func (u *UserServiceImpl) CreateUser(ctx context.Context, user User) (User, error) {
	user.Username = strings.TrimSpace(user.Username)
	user.DisplayName = strings.TrimSpace(user.DisplayName)
	if user.Username == "" || user.DisplayName == "" {
		return User{}, ErrUserDataInvalid
	}
	available, err := u.repo.IsUsernameAvailable(ctx, user.Username)
	if err != nil {
		return User{}, err
	}
	if !available {
		return User{}, ErrUsernameTaken
	}
	if user.Uid == "" {
		user.Uid = uuid.NewString()
	}
	// self-registration never grants elevated rights
	user.Role = RoleUser
	user.IsPremium = false

	userId, err := u.repo.CreateUser(ctx, user)
	if err != nil {
		return User{}, err
	}
	user.Id = userId
	return user, nil
}

func (u *UserServiceImpl) GetUser(ctx context.Context, id int) (User, error) {
	return u.repo.GetUser(ctx, id)
}

func (u *UserServiceImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	return u.repo.GetUserByUid(ctx, uid)
}

func (u *UserServiceImpl) UpdateUser(ctx context.Context, user User) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if strings.TrimSpace(user.DisplayName) == "" {
		return User{}, ErrUserDataInvalid
	}
	return u.repo.UpdateUser(ctx, userId, user)
}

func (u *UserServiceImpl) GetAllUsers(ctx context.Context) ([]User, error) {
	return u.repo.GetAllUsers(ctx)
}

func (u *UserServiceImpl) Authorize(user User) AuthContext {
	return AuthContext{
		UserId:     user.Id,
		Role:       roleOrDefault(user.Role),
		IsPremium:  user.IsPremium,
		IsEnvAdmin: slices.Contains(u.envAdmins, user.Uid),
	}
}
