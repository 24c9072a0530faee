package memberships

import (
	"time"

	"github.com/google/uuid"

	"github.com/framewell/framewell-backend/pkg/db/models"
	"github.com/framewell/framewell-backend/pkg/enums"
)

// MembershipDTO is the transport shape for a raw membership record.
type MembershipDTO struct {
	ID              uuid.UUID        `json:"id"`
	StudioID        uuid.UUID        `json:"studio_id"`
	UserID          uuid.UUID        `json:"user_id"`
	Role            enums.MemberRole `json:"role"`
	InvitedByUserID *uuid.UUID       `json:"invited_by_user_id,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// MembershipWithStudio includes basic studio metadata + membership info.
type MembershipWithStudio struct {
	MembershipID    uuid.UUID        `json:"membership_id"`
	StudioID        uuid.UUID        `json:"studio_id"`
	UserID          uuid.UUID        `json:"user_id"`
	StudioName      string           `json:"studio_name"`
	Role            enums.MemberRole `json:"role"`
	InvitedByUserID *uuid.UUID       `json:"invited_by_user_id,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// StudioUserDTO mixes membership metadata with the associated user profile for studio managers.
type StudioUserDTO struct {
	MembershipID uuid.UUID        `json:"membership_id"`
	StudioID     uuid.UUID        `json:"studio_id"`
	UserID       uuid.UUID        `json:"user_id"`
	Email        string           `json:"email"`
	FirstName    string           `json:"first_name"`
	LastName     string           `json:"last_name"`
	Role         enums.MemberRole `json:"role"`
	CreatedAt    time.Time        `json:"created_at"`
	LastLoginAt  *time.Time       `json:"last_login_at,omitempty"`
}

// ToDTO converts a model to the external DTO.
func ToDTO(m *models.StudioMembership) *MembershipDTO {
	if m == nil {
		return nil
	}

	return &MembershipDTO{
		ID:              m.ID,
		StudioID:        m.StudioID,
		UserID:          m.UserID,
		Role:            m.Role,
		InvitedByUserID: copyUUIDPointer(m.InvitedByUserID),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func copyUUIDPointer(src *uuid.UUID) *uuid.UUID {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}
