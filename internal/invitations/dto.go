package invitations

import (
	"time"

	"github.com/google/uuid"

	"github.com/framewell/framewell-backend/pkg/db/models"
	"github.com/framewell/framewell-backend/pkg/enums"
)

// InvitationDTO is the transport shape for an invitation.
type InvitationDTO struct {
	ID              uuid.UUID              `json:"id"`
	StudioID        uuid.UUID              `json:"studio_id"`
	Email           string                 `json:"email"`
	Type            enums.InvitationType   `json:"type"`
	Role            enums.MemberRole       `json:"role"`
	Status          enums.InvitationStatus `json:"status"`
	InvitedByUserID uuid.UUID              `json:"invited_by_user_id"`
	ExpiresAt       time.Time              `json:"expires_at"`
	AcceptedAt      *time.Time             `json:"accepted_at,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}

// CreateInvitationInput captures the data required to issue an invitation.
type CreateInvitationInput struct {
	StudioID uuid.UUID
	Email    string
	Type     enums.InvitationType
	Role     enums.MemberRole
}

// AcceptResult reports what an accepted invitation admitted the user into.
type AcceptResult struct {
	InvitationID uuid.UUID
	StudioID     uuid.UUID
	Type         enums.InvitationType
	Role         *enums.MemberRole
}

// FromModel maps the persisted invitation into a DTO.
func FromModel(m *models.Invitation) *InvitationDTO {
	if m == nil {
		return nil
	}

	return &InvitationDTO{
		ID:              m.ID,
		StudioID:        m.StudioID,
		Email:           m.Email,
		Type:            m.Type,
		Role:            m.Role,
		Status:          m.Status,
		InvitedByUserID: m.InvitedByUserID,
		ExpiresAt:       m.ExpiresAt,
		AcceptedAt:      m.AcceptedAt,
		CreatedAt:       m.CreatedAt,
	}
}
