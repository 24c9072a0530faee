package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/framewell/framewell-backend/pkg/enums"
	pkgerrors "github.com/framewell/framewell-backend/pkg/errors"
)

// AccessLevel names the minimum studio role a guarded operation needs.
type AccessLevel string

const (
	// AccessMember admits any role in the studio.
	AccessMember AccessLevel = "member"
	// AccessManager admits owner and admin roles only.
	AccessManager AccessLevel = "manager"
)

// Actor is the authenticated identity a guarded operation runs as.
type Actor struct {
	UserID         *uuid.UUID
	UserType       enums.UserType
	ActiveStudioID *uuid.UUID
}

type roleChecker interface {
	UserHasRole(ctx context.Context, userID, studioID uuid.UUID, roles ...enums.MemberRole) (bool, error)
}

// Guard enforces the ordered tenancy check wrapping every tenant-owned
// mutation. The checks short-circuit in a fixed order so the caller cannot
// learn about resources in studios they are not acting in: a valid role in
// the resource's studio does not help when the active studio differs.
type Guard struct {
	memberships roleChecker
}

// NewGuard builds a guard over the membership store.
func NewGuard(memberships roleChecker) (*Guard, error) {
	if memberships == nil {
		return nil, errors.New("memberships repository required")
	}
	return &Guard{memberships: memberships}, nil
}

// Authorize runs the ordered check. The caller must have already loaded the
// resource (absent resources are CodeNotFound before the guard runs).
func (g *Guard) Authorize(ctx context.Context, actor Actor, resourceStudioID uuid.UUID, level AccessLevel) error {
	if actor.UserID == nil || *actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	if actor.ActiveStudioID == nil || *actor.ActiveStudioID != resourceStudioID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}

	roles := rolesForLevel(level)
	if len(roles) == 0 {
		return pkgerrors.New(pkgerrors.CodeInternal, "unknown access level")
	}

	ok, err := g.memberships.UserHasRole(ctx, *actor.UserID, resourceStudioID, roles...)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check studio role")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}
	return nil
}

func rolesForLevel(level AccessLevel) []enums.MemberRole {
	switch level {
	case AccessManager:
		return enums.ManagerRoles()
	case AccessMember:
		return enums.AllMemberRoles()
	default:
		return nil
	}
}
