package plan

import "context"

// AuthorizerStub grants the same access to every plan. Used by tests of plan scoped packages.
type AuthorizerStub struct {
	Access Access
	// Err, when set, is returned by every check instead of evaluating Access.
	Err error
}

func NewAuthorizerStub(access Access) *AuthorizerStub {
	return &AuthorizerStub{Access: access}
}

func (a *AuthorizerStub) AccessFor(ctx context.Context, planId int) (Access, error) {
	if a.Err != nil {
		return AccessNone, a.Err
	}
	return a.Access, nil
}

func (a *AuthorizerStub) CanView(ctx context.Context, planId int) error {
	return a.require(AccessView)
}

func (a *AuthorizerStub) CanEdit(ctx context.Context, planId int) error {
	return a.require(AccessEdit)
}

func (a *AuthorizerStub) CanManage(ctx context.Context, planId int) error {
	return a.require(AccessManage)
}

func (a *AuthorizerStub) require(required Access) error {
	if a.Err != nil {
		return a.Err
	}
	if a.Access < required {
		return ErrForbidden
	}
	return nil
}
