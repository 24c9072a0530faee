package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/framewell/framewell-backend/internal/memberships"
	pkgAuth "github.com/framewell/framewell-backend/pkg/auth"
	"github.com/framewell/framewell-backend/pkg/db/models"
	"github.com/framewell/framewell-backend/pkg/enums"
	pkgerrors "github.com/framewell/framewell-backend/pkg/errors"
)

type stubSwitchMembershipsRepo struct {
	membership *memberships.MembershipWithStudio
}

func (s *stubSwitchMembershipsRepo) GetMembershipWithStudio(ctx context.Context, userID, studioID uuid.UUID) (*memberships.MembershipWithStudio, error) {
	if s.membership == nil || s.membership.UserID != userID || s.membership.StudioID != studioID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.membership, nil
}

func buildSwitchService(t *testing.T, members *stubSwitchMembershipsRepo, usersRepo *stubUserRepo, sessions *stubSessionManager) SwitchStudioService {
	t.Helper()
	svc, err := NewSwitchStudioService(SwitchStudioServiceParams{
		MembershipsRepo: members,
		UserRepo:        usersRepo,
		SessionManager:  sessions,
		JWTConfig:       testJWTConfig,
	})
	if err != nil {
		t.Fatalf("new switch service: %v", err)
	}
	return svc
}

func TestSwitchStudioMintsNewContext(t *testing.T) {
	studioID := uuid.New()
	user := &models.User{
		ID:       uuid.New(),
		Email:    "ansel@example.com",
		UserType: enums.UserTypePhotographer,
		IsActive: true,
	}
	members := &stubSwitchMembershipsRepo{membership: &memberships.MembershipWithStudio{
		StudioID:   studioID,
		UserID:     user.ID,
		StudioName: "Second Studio",
		Role:       enums.MemberRoleAdmin,
	}}
	sessions := newStubSessionManager()
	refreshToken, err := sessions.Generate(context.Background(), "current-access-id")
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
	svc := buildSwitchService(t, members, &stubUserRepo{users: map[string]*models.User{user.Email: user}}, sessions)

	result, err := svc.Switch(context.Background(), SwitchStudioInput{
		UserID:        user.ID,
		StudioID:      studioID,
		AccessTokenID: "current-access-id",
		RefreshToken:  refreshToken,
	})
	if err != nil {
		t.Fatalf("switch: %v", err)
	}
	if result.Studio.Name != "Second Studio" {
		t.Fatalf("unexpected studio summary %+v", result.Studio)
	}
	if result.RefreshToken == refreshToken {
		t.Fatal("expected refresh token rotated")
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, result.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.ActiveStudioID == nil || *claims.ActiveStudioID != studioID {
		t.Fatalf("expected switched studio claim, got %v", claims.ActiveStudioID)
	}
	if claims.Role == nil || *claims.Role != enums.MemberRoleAdmin {
		t.Fatalf("expected admin role claim, got %v", claims.Role)
	}
}

func TestSwitchStudioWithoutMembershipForbidden(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "ansel@example.com", UserType: enums.UserTypePhotographer}
	svc := buildSwitchService(t, &stubSwitchMembershipsRepo{}, &stubUserRepo{users: map[string]*models.User{user.Email: user}}, newStubSessionManager())

	_, err := svc.Switch(context.Background(), SwitchStudioInput{
		UserID:        user.ID,
		StudioID:      uuid.New(),
		AccessTokenID: "id",
		RefreshToken:  "token",
	})
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestSwitchStudioRejectsStaleRefreshToken(t *testing.T) {
	studioID := uuid.New()
	user := &models.User{ID: uuid.New(), Email: "ansel@example.com", UserType: enums.UserTypePhotographer}
	members := &stubSwitchMembershipsRepo{membership: &memberships.MembershipWithStudio{
		StudioID: studioID,
		UserID:   user.ID,
		Role:     enums.MemberRoleMember,
	}}
	svc := buildSwitchService(t, members, &stubUserRepo{users: map[string]*models.User{user.Email: user}}, newStubSessionManager())

	_, err := svc.Switch(context.Background(), SwitchStudioInput{
		UserID:        user.ID,
		StudioID:      studioID,
		AccessTokenID: "unknown",
		RefreshToken:  "stale",
	})
	expectCode(t, err, pkgerrors.CodeUnauthorized)
}
