package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/framewell/framewell-backend/pkg/enums"
)

// Invitation is a time-boxed, single-use offer admitting an email address
// into a studio as member or client. Email is the literal match key; the
// invitee may not exist as a User yet. Rows are immutable once accepted.
type Invitation struct {
	ID              uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StudioID        uuid.UUID              `gorm:"column:studio_id;type:uuid;not null;index"`
	Email           string                 `gorm:"column:email;not null;index"`
	Type            enums.InvitationType   `gorm:"column:type;type:invitation_type;not null"`
	Role            enums.MemberRole       `gorm:"column:role;type:member_role;not null;default:'member'"`
	Status          enums.InvitationStatus `gorm:"column:status;type:invitation_status;not null;default:'pending'"`
	InvitedByUserID uuid.UUID              `gorm:"column:invited_by_user_id;type:uuid;not null"`
	ExpiresAt       time.Time              `gorm:"column:expires_at;not null"`
	AcceptedAt      *time.Time             `gorm:"column:accepted_at"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
}
