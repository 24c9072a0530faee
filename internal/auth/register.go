package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/framewell/framewell-backend/internal/invitations"
	"github.com/framewell/framewell-backend/internal/studios"
	"github.com/framewell/framewell-backend/internal/users"
	pkgAuth "github.com/framewell/framewell-backend/pkg/auth"
	"github.com/framewell/framewell-backend/pkg/auth/session"
	"github.com/framewell/framewell-backend/pkg/config"
	"github.com/framewell/framewell-backend/pkg/db"
	"github.com/framewell/framewell-backend/pkg/db/models"
	"github.com/framewell/framewell-backend/pkg/enums"
	pkgerrors "github.com/framewell/framewell-backend/pkg/errors"
	"github.com/framewell/framewell-backend/pkg/security"
)

const emailConstraint = "ux_users_email"

// RegisterService handles the onboarding transactions. Plain registration
// creates a photographer plus their first studio; invitation registration
// creates the account and redeems the invitation in the same commit, so a
// failed redemption leaves no orphaned user behind.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error)
	RegisterWithInvitation(ctx context.Context, req RegisterWithInvitationRequest, invitationType enums.InvitationType) (*LoginResponse, error)
}

type registerUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	CreateTx(tx *gorm.DB, dto users.CreateUserDTO) (*models.User, error)
}

type studioCreator interface {
	CreateInTx(tx *gorm.DB, ownerID uuid.UUID, input studios.CreateStudioInput) (*models.Studio, error)
}

type invitationAcceptor interface {
	AcceptInTx(ctx context.Context, tx *gorm.DB, identity invitations.Identity, invitationID uuid.UUID, expectedType enums.InvitationType) (*invitations.AcceptResult, error)
}

type registerTxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type registerService struct {
	tx          registerTxRunner
	users       registerUserRepository
	studios     studioCreator
	invitations invitationAcceptor
	session     sessionManager
	passwordCfg config.PasswordConfig
	jwtCfg      config.JWTConfig
}

// RegisterServiceParams packages the dependencies for the registration flows.
type RegisterServiceParams struct {
	Tx             registerTxRunner
	UserRepo       registerUserRepository
	Studios        studioCreator
	Invitations    invitationAcceptor
	SessionManager sessionManager
	PasswordConfig config.PasswordConfig
	JWTConfig      config.JWTConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Studios == nil {
		return nil, fmt.Errorf("studios service is required")
	}
	if params.Invitations == nil {
		return nil, fmt.Errorf("invitations service is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	return &registerService{
		tx:          params.Tx,
		users:       params.UserRepo,
		studios:     params.Studios,
		invitations: params.Invitations,
		session:     params.SessionManager,
		passwordCfg: params.PasswordConfig,
		jwtCfg:      params.JWTConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error) {
	email, passwordHash, err := s.prepareCredentials(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.StudioName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "studio name is required")
	}

	var (
		user   *models.User
		studio *models.Studio
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.users.CreateTx(tx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    strings.TrimSpace(req.FirstName),
			LastName:     strings.TrimSpace(req.LastName),
			UserType:     enums.UserTypePhotographer,
		})
		if err != nil {
			if db.IsUniqueViolation(err, emailConstraint) {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}
		user = created

		studio, err = s.studios.CreateInTx(tx, user.ID, studios.CreateStudioInput{
			Name:    req.StudioName,
			LogoURL: req.LogoURL,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	role := enums.MemberRoleOwner
	studioID := studio.ID
	return s.issueTokens(ctx, user, &studioID, &role, []StudioSummary{{
		ID:   studio.ID,
		Name: studio.Name,
		Role: enums.MemberRoleOwner,
	}})
}

func (s *registerService) RegisterWithInvitation(ctx context.Context, req RegisterWithInvitationRequest, invitationType enums.InvitationType) (*LoginResponse, error) {
	email, passwordHash, err := s.prepareCredentials(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if req.InvitationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invitation id is required")
	}

	userType := enums.UserTypePhotographer
	if invitationType == enums.InvitationTypeStudioClient {
		userType = enums.UserTypeClient
	}

	var (
		user     *models.User
		accepted *invitations.AcceptResult
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.users.CreateTx(tx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    strings.TrimSpace(req.FirstName),
			LastName:     strings.TrimSpace(req.LastName),
			UserType:     userType,
		})
		if err != nil {
			if db.IsUniqueViolation(err, emailConstraint) {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}
		user = created

		identity := invitations.Identity{UserID: user.ID, Email: user.Email}
		accepted, err = s.invitations.AcceptInTx(ctx, tx, identity, req.InvitationID, invitationType)
		return err
	})
	if err != nil {
		return nil, err
	}

	// Client accounts never carry studio context in their token; the grants
	// table is their authorization surface.
	var (
		activeStudioID *uuid.UUID
		role           *enums.MemberRole
		summaries      []StudioSummary
	)
	if accepted.Role != nil {
		studioID := accepted.StudioID
		activeStudioID = &studioID
		role = accepted.Role
		summaries = []StudioSummary{{ID: accepted.StudioID, Role: *accepted.Role}}
	}

	return s.issueTokens(ctx, user, activeStudioID, role, summaries)
}

func (s *registerService) prepareCredentials(ctx context.Context, rawEmail, password string) (string, string, error) {
	// Emails are stored as submitted. Invitation redemption compares the
	// stored address exactly, so lowercasing here would make any mixed-case
	// invitee address unredeemable.
	email := strings.TrimSpace(rawEmail)
	if email == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return "", "", pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
	}

	passwordHash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	return email, passwordHash, nil
}

func (s *registerService) issueTokens(ctx context.Context, user *models.User, studioID *uuid.UUID, role *enums.MemberRole, summaries []StudioSummary) (*LoginResponse, error) {
	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID:         user.ID,
		UserType:       user.UserType,
		ActiveStudioID: studioID,
		Role:           role,
		JTI:            accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}

	return &LoginResponse{
		AccessToken:    accessToken,
		RefreshToken:   refreshToken,
		Studios:        summaries,
		ActiveStudioID: studioID,
		User:           users.FromModel(user),
	}, nil
}
