package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/framewell/framewell-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
// ActiveStudioID and Role travel together: both set when the user is acting
// inside a studio, both empty when they have no membership anywhere.
type AccessTokenPayload struct {
	UserID         uuid.UUID
	UserType       enums.UserType
	ActiveStudioID *uuid.UUID
	Role           *enums.MemberRole
	JTI            string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID         uuid.UUID         `json:"user_id"`
	UserType       enums.UserType    `json:"user_type"`
	ActiveStudioID *uuid.UUID        `json:"active_studio_id,omitempty"`
	Role           *enums.MemberRole `json:"role,omitempty"`
	jwt.RegisteredClaims
}
