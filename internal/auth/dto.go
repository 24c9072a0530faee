package auth

import (
	"github.com/google/uuid"

	"github.com/framewell/framewell-backend/internal/users"
	"github.com/framewell/framewell-backend/pkg/enums"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// StudioSummary describes a studio the user belongs to, returned after login.
type StudioSummary struct {
	ID      uuid.UUID        `json:"id"`
	Name    string           `json:"name"`
	Role    enums.MemberRole `json:"role"`
	LogoURL *string          `json:"logo_url,omitempty"`
}

// LoginResponse contains the tokens, user, and studio list produced by a
// successful login. ActiveStudioID is nil for users with no memberships,
// which is the normal shape for client accounts.
type LoginResponse struct {
	AccessToken    string          `json:"access_token"`
	RefreshToken   string          `json:"refresh_token"`
	Studios        []StudioSummary `json:"studios"`
	ActiveStudioID *uuid.UUID      `json:"active_studio_id,omitempty"`
	User           *users.UserDTO  `json:"user"`
}

// RefreshRequest carries the expired access token alongside the refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResult is the rotated token pair.
type RefreshResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RegisterRequest contains the payload for onboarding a photographer and
// their first studio in one step.
type RegisterRequest struct {
	FirstName  string  `json:"first_name" validate:"required"`
	LastName   string  `json:"last_name" validate:"required"`
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,min=8"`
	StudioName string  `json:"studio_name" validate:"required"`
	LogoURL    *string `json:"logo_url,omitempty" validate:"omitempty,url"`
}

// RegisterWithInvitationRequest onboards a brand-new account straight into
// the studio that invited it.
type RegisterWithInvitationRequest struct {
	InvitationID uuid.UUID `json:"invitation_id" validate:"required"`
	FirstName    string    `json:"first_name" validate:"required"`
	LastName     string    `json:"last_name" validate:"required"`
	Email        string    `json:"email" validate:"required,email"`
	Password     string    `json:"password" validate:"required,min=8"`
}
