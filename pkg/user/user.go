package user

import "github.com/tripkas/tripkas/internal/rest"

var (
	ErrUserNotFound    = rest.NotFound("user not found")
	ErrUsernameTaken   = rest.Conflict("username is already taken")
	ErrUserDataInvalid = rest.Invalid("invalid user data")
	ErrNoUser          = rest.Unauthorized("user not found")
)

type Role string

const (
	RoleUser       Role = "user"
	RoleSuperadmin Role = "superadmin"
)

type User struct {
	Id          int
	Uid         string
	Username    string
	DisplayName string
	Role        Role
	IsPremium   bool
}

// AuthContext is the caller's authorization state, resolved once per request.
type AuthContext struct {
	UserId     int
	Role       Role
	IsPremium  bool
	IsEnvAdmin bool
}

// CanEditAnyPlan is true for superadmins and for users configured as environment admins.
func (a AuthContext) CanEditAnyPlan() bool {
	return a.Role == RoleSuperadmin || a.IsEnvAdmin
}

// HasPremium reports whether plan limits are lifted. Superadmins always have premium.
func (a AuthContext) HasPremium() bool {
	return a.IsPremium || a.Role == RoleSuperadmin
}
