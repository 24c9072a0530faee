package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/framewell/framewell-backend/internal/memberships"
	pkgAuth "github.com/framewell/framewell-backend/pkg/auth"
	"github.com/framewell/framewell-backend/pkg/auth/session"
	"github.com/framewell/framewell-backend/pkg/config"
	"github.com/framewell/framewell-backend/pkg/db/models"
	"github.com/framewell/framewell-backend/pkg/enums"
	pkgerrors "github.com/framewell/framewell-backend/pkg/errors"
	"github.com/framewell/framewell-backend/pkg/security"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "framewell-test",
	ExpirationMinutes: 15,
}

type stubUserRepo struct {
	users     map[string]*models.User
	lastLogin *time.Time
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.users[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.lastLogin = &at
	return nil
}

type stubMembershipsRepo struct {
	studios []memberships.MembershipWithStudio
}

func (s *stubMembershipsRepo) ListUserStudios(ctx context.Context, userID uuid.UUID) ([]memberships.MembershipWithStudio, error) {
	return s.studios, nil
}

func (s *stubMembershipsRepo) GetMembership(ctx context.Context, userID, studioID uuid.UUID) (*models.StudioMembership, error) {
	for _, m := range s.studios {
		if m.StudioID == studioID && m.UserID == userID {
			return &models.StudioMembership{
				StudioID: m.StudioID,
				UserID:   m.UserID,
				Role:     m.Role,
			}, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type stubResolver struct {
	resolved *uuid.UUID
}

func (s *stubResolver) Resolve(ctx context.Context, userID uuid.UUID, selector *uuid.UUID) (*uuid.UUID, error) {
	return s.resolved, nil
}

type stubSessionManager struct {
	sessions map[string]string
	revoked  []string
}

func newStubSessionManager() *stubSessionManager {
	return &stubSessionManager{sessions: map[string]string{}}
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	s.sessions[accessID] = token
	return token, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := s.sessions[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.sessions, oldAccessID)
	newAccessID := session.NewAccessID()
	token := "refresh-" + newAccessID
	s.sessions[newAccessID] = token
	return newAccessID, token, nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	delete(s.sessions, accessID)
	return nil
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func buildTestService(t *testing.T, users *stubUserRepo, members *stubMembershipsRepo, resolver *stubResolver, sessions *stubSessionManager) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:        users,
		MembershipsRepo: members,
		Resolver:        resolver,
		SessionManager:  sessions,
		JWTConfig:       testJWTConfig,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}

func TestLoginResolvesStudioContext(t *testing.T) {
	studioID := uuid.New()
	user := &models.User{
		ID:           uuid.New(),
		Email:        "ansel@example.com",
		PasswordHash: mustHashPassword(t, "correct horse"),
		UserType:     enums.UserTypePhotographer,
		IsActive:     true,
	}
	usersRepo := &stubUserRepo{users: map[string]*models.User{user.Email: user}}
	members := &stubMembershipsRepo{studios: []memberships.MembershipWithStudio{{
		StudioID:   studioID,
		UserID:     user.ID,
		StudioName: "Golden Hour Studio",
		Role:       enums.MemberRoleOwner,
	}}}
	sessions := newStubSessionManager()
	svc := buildTestService(t, usersRepo, members, &stubResolver{resolved: &studioID}, sessions)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "ansel@example.com ", Password: "correct horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.ActiveStudioID == nil || *resp.ActiveStudioID != studioID {
		t.Fatalf("expected active studio %s, got %v", studioID, resp.ActiveStudioID)
	}
	if len(resp.Studios) != 1 || resp.Studios[0].Name != "Golden Hour Studio" {
		t.Fatalf("unexpected studio list %+v", resp.Studios)
	}
	if usersRepo.lastLogin == nil {
		t.Fatal("expected last login recorded")
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.ActiveStudioID == nil || *claims.ActiveStudioID != studioID {
		t.Fatalf("expected studio claim, got %v", claims.ActiveStudioID)
	}
	if claims.Role == nil || *claims.Role != enums.MemberRoleOwner {
		t.Fatalf("expected owner role claim, got %v", claims.Role)
	}
}

func TestLoginClientWithoutMemberships(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "viewer@example.com",
		PasswordHash: mustHashPassword(t, "gallery pass"),
		UserType:     enums.UserTypeClient,
		IsActive:     true,
	}
	usersRepo := &stubUserRepo{users: map[string]*models.User{user.Email: user}}
	svc := buildTestService(t, usersRepo, &stubMembershipsRepo{}, &stubResolver{}, newStubSessionManager())

	resp, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "gallery pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.ActiveStudioID != nil {
		t.Fatalf("expected no active studio, got %v", resp.ActiveStudioID)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.ActiveStudioID != nil || claims.Role != nil {
		t.Fatalf("expected bare client claims, got studio=%v role=%v", claims.ActiveStudioID, claims.Role)
	}
	if claims.UserType != enums.UserTypeClient {
		t.Fatalf("expected client user type, got %s", claims.UserType)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "ansel@example.com",
		PasswordHash: mustHashPassword(t, "correct horse"),
		UserType:     enums.UserTypePhotographer,
		IsActive:     true,
	}
	usersRepo := &stubUserRepo{users: map[string]*models.User{user.Email: user}}
	svc := buildTestService(t, usersRepo, &stubMembershipsRepo{}, &stubResolver{}, newStubSessionManager())

	_, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "wrong"})
	expectCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "ansel@example.com",
		PasswordHash: mustHashPassword(t, "correct horse"),
		UserType:     enums.UserTypePhotographer,
		IsActive:     false,
	}
	usersRepo := &stubUserRepo{users: map[string]*models.User{user.Email: user}}
	svc := buildTestService(t, usersRepo, &stubMembershipsRepo{}, &stubResolver{}, newStubSessionManager())

	_, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "correct horse"})
	expectCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestRefreshRotatesSessionAndRederivesContext(t *testing.T) {
	studioID := uuid.New()
	user := &models.User{
		ID:           uuid.New(),
		Email:        "ansel@example.com",
		PasswordHash: mustHashPassword(t, "correct horse"),
		UserType:     enums.UserTypePhotographer,
		IsActive:     true,
	}
	usersRepo := &stubUserRepo{users: map[string]*models.User{user.Email: user}}
	members := &stubMembershipsRepo{studios: []memberships.MembershipWithStudio{{
		StudioID: studioID,
		UserID:   user.ID,
		Role:     enums.MemberRoleAdmin,
	}}}
	sessions := newStubSessionManager()
	svc := buildTestService(t, usersRepo, members, &stubResolver{resolved: &studioID}, sessions)

	login, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "correct horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	result, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if result.RefreshToken == login.RefreshToken {
		t.Fatal("expected refresh token rotated")
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, result.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated token: %v", err)
	}
	if claims.Role == nil || *claims.Role != enums.MemberRoleAdmin {
		t.Fatalf("expected role rederived from memberships, got %v", claims.Role)
	}

	// The old pair must be dead after rotation.
	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	expectCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestRefreshRejectsUnknownRefreshToken(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "ansel@example.com",
		PasswordHash: mustHashPassword(t, "correct horse"),
		UserType:     enums.UserTypePhotographer,
		IsActive:     true,
	}
	usersRepo := &stubUserRepo{users: map[string]*models.User{user.Email: user}}
	sessions := newStubSessionManager()
	svc := buildTestService(t, usersRepo, &stubMembershipsRepo{}, &stubResolver{}, sessions)

	login, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "correct horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: "forged",
	})
	expectCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLogoutRevokesSession(t *testing.T) {
	sessions := newStubSessionManager()
	svc := buildTestService(t, &stubUserRepo{users: map[string]*models.User{}}, &stubMembershipsRepo{}, &stubResolver{}, sessions)

	if err := svc.Logout(context.Background(), "access-id"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "access-id" {
		t.Fatalf("expected session revoked, got %v", sessions.revoked)
	}
}
