package tenant

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/framewell/framewell-backend/pkg/enums"
	pkgerrors "github.com/framewell/framewell-backend/pkg/errors"
)

type stubRoleChecker struct {
	roles map[uuid.UUID][]enums.MemberRole
}

func (s stubRoleChecker) UserHasRole(ctx context.Context, userID, studioID uuid.UUID, roles ...enums.MemberRole) (bool, error) {
	held, ok := s.roles[studioID]
	if !ok {
		return false, nil
	}
	for _, have := range held {
		for _, want := range roles {
			if have == want {
				return true, nil
			}
		}
	}
	return false, nil
}

func assertErrorCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}

func TestGuardRequiresAuthentication(t *testing.T) {
	guard, err := NewGuard(stubRoleChecker{})
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}

	err = guard.Authorize(context.Background(), Actor{}, uuid.New(), AccessMember)
	assertErrorCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestGuardRejectsCrossStudioEvenForOwner(t *testing.T) {
	userID := uuid.New()
	studioA := uuid.New()
	studioB := uuid.New()

	// The actor owns studio A, but is acting in studio B.
	guard, err := NewGuard(stubRoleChecker{roles: map[uuid.UUID][]enums.MemberRole{
		studioA: {enums.MemberRoleOwner},
		studioB: {enums.MemberRoleMember},
	}})
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}

	actor := Actor{
		UserID:         &userID,
		UserType:       enums.UserTypePhotographer,
		ActiveStudioID: &studioB,
	}
	err = guard.Authorize(context.Background(), actor, studioA, AccessMember)
	assertErrorCode(t, err, pkgerrors.CodeForbidden)
}

func TestGuardRejectsMissingActiveStudio(t *testing.T) {
	userID := uuid.New()
	studioA := uuid.New()
	guard, err := NewGuard(stubRoleChecker{roles: map[uuid.UUID][]enums.MemberRole{
		studioA: {enums.MemberRoleOwner},
	}})
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}

	actor := Actor{
		UserID:   &userID,
		UserType: enums.UserTypePhotographer,
	}
	err = guard.Authorize(context.Background(), actor, studioA, AccessMember)
	assertErrorCode(t, err, pkgerrors.CodeForbidden)
}

func TestGuardRejectsInsufficientRole(t *testing.T) {
	userID := uuid.New()
	studioA := uuid.New()
	guard, err := NewGuard(stubRoleChecker{roles: map[uuid.UUID][]enums.MemberRole{
		studioA: {enums.MemberRoleMember},
	}})
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}

	actor := Actor{
		UserID:         &userID,
		UserType:       enums.UserTypePhotographer,
		ActiveStudioID: &studioA,
	}

	if err := guard.Authorize(context.Background(), actor, studioA, AccessMember); err != nil {
		t.Fatalf("member access should pass: %v", err)
	}

	err = guard.Authorize(context.Background(), actor, studioA, AccessManager)
	assertErrorCode(t, err, pkgerrors.CodeForbidden)
}

func TestGuardAllowsManagerRoles(t *testing.T) {
	studioA := uuid.New()
	for _, role := range []enums.MemberRole{enums.MemberRoleOwner, enums.MemberRoleAdmin} {
		userID := uuid.New()
		guard, err := NewGuard(stubRoleChecker{roles: map[uuid.UUID][]enums.MemberRole{
			studioA: {role},
		}})
		if err != nil {
			t.Fatalf("new guard: %v", err)
		}

		actor := Actor{
			UserID:         &userID,
			UserType:       enums.UserTypePhotographer,
			ActiveStudioID: &studioA,
		}
		if err := guard.Authorize(context.Background(), actor, studioA, AccessManager); err != nil {
			t.Fatalf("%s should pass manager access: %v", role, err)
		}
	}
}
