package plan

import (
	"time"

	"github.com/tripkas/tripkas/internal/rest"
)

var (
	ErrPlanNotFound         = rest.NotFound("plan not found")
	ErrCollaboratorNotFound = rest.NotFound("collaborator not found")
	ErrForbidden            = rest.Forbidden("you do not have access to this plan")
	ErrPlanLimitReached     = rest.Forbidden("free plan limit reached, upgrade to premium to create more plans")
	ErrPasswordRequired     = rest.Unauthorized("plan is password protected")
	ErrInvalidPassword      = rest.Unauthorized("invalid password")
	ErrInvalidToken         = rest.Unauthorized("invalid or expired access token")
	ErrTooManyAttempts      = rest.TooManyRequests("too many unlock attempts, try again later")
)

type CollaboratorRole string

const (
	RoleAdmin  CollaboratorRole = "admin"
	RoleViewer CollaboratorRole = "viewer"
)

type Plan struct {
	Id          int
	OwnerId     int
	Title       string
	Destination string
	StartDate   *time.Time
	EndDate     *time.Time
	IsPublic    bool
	ShareSlug   string
	HasPassword bool
	Created     time.Time
}

type Collaborator struct {
	PlanId int
	UserId int
	Role   CollaboratorRole
}

// ShareSettings changes the public link of a plan. An empty Password keeps the current one
// unless RemovePassword is set.
type ShareSettings struct {
	IsPublic       bool
	Password       string
	RemovePassword bool
}

// Access is the level of access the caller has to a plan, in increasing order.
type Access int

const (
	AccessNone Access = iota
	AccessView
	AccessEdit
	AccessManage
)
