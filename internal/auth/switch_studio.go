package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/framewell/framewell-backend/internal/memberships"
	pkgAuth "github.com/framewell/framewell-backend/pkg/auth"
	"github.com/framewell/framewell-backend/pkg/auth/session"
	"github.com/framewell/framewell-backend/pkg/config"
	"github.com/framewell/framewell-backend/pkg/db/models"
	pkgerrors "github.com/framewell/framewell-backend/pkg/errors"
)

// SwitchStudioInput captures the data required to switch the active studio.
// AccessTokenID is the jti of the caller's current token; RefreshToken proves
// session ownership so a stolen access token alone cannot switch context.
type SwitchStudioInput struct {
	UserID        uuid.UUID
	StudioID      uuid.UUID
	AccessTokenID string
	RefreshToken  string
}

// SwitchStudioResult returns the tokens issued after switching studios.
type SwitchStudioResult struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	Studio       StudioSummary `json:"studio"`
}

type switchMembershipsRepository interface {
	GetMembershipWithStudio(ctx context.Context, userID, studioID uuid.UUID) (*memberships.MembershipWithStudio, error)
}

type switchUserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type switchSessionRotator interface {
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
}

// SwitchStudioService is the interface exposed to the controller.
type SwitchStudioService interface {
	Switch(ctx context.Context, input SwitchStudioInput) (*SwitchStudioResult, error)
}

type switchStudioService struct {
	memberships switchMembershipsRepository
	users       switchUserRepository
	session     switchSessionRotator
	jwtCfg      config.JWTConfig
}

// SwitchStudioServiceParams bundles dependencies for the switch flow.
type SwitchStudioServiceParams struct {
	MembershipsRepo switchMembershipsRepository
	UserRepo        switchUserRepository
	SessionManager  switchSessionRotator
	JWTConfig       config.JWTConfig
}

// NewSwitchStudioService constructs the service.
func NewSwitchStudioService(params SwitchStudioServiceParams) (SwitchStudioService, error) {
	if params.MembershipsRepo == nil {
		return nil, fmt.Errorf("memberships repository is required")
	}
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	return &switchStudioService{
		memberships: params.MembershipsRepo,
		users:       params.UserRepo,
		session:     params.SessionManager,
		jwtCfg:      params.JWTConfig,
	}, nil
}

func (s *switchStudioService) Switch(ctx context.Context, input SwitchStudioInput) (*SwitchStudioResult, error) {
	membership, err := s.memberships.GetMembershipWithStudio(ctx, input.UserID, input.StudioID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "studio membership required")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup membership")
	}

	user, err := s.users.FindByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	newAccessID, newRefreshToken, err := s.session.Rotate(ctx, input.AccessTokenID, input.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rotate session")
	}

	role := membership.Role
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID:         input.UserID,
		UserType:       user.UserType,
		ActiveStudioID: &input.StudioID,
		Role:           &role,
		JTI:            newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &SwitchStudioResult{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		Studio: StudioSummary{
			ID:   membership.StudioID,
			Name: membership.StudioName,
			Role: membership.Role,
		},
	}, nil
}
