package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/framewell/framewell-backend/pkg/enums"
)

// StudioMembership links a user with a studio and captures their role.
// (studio_id, user_id) is unique; the constraint, not application pre-checks,
// is the arbiter for concurrent admissions.
type StudioMembership struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StudioID        uuid.UUID        `gorm:"column:studio_id;type:uuid;not null;uniqueIndex:ux_studio_memberships_studio_user"`
	UserID          uuid.UUID        `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_studio_memberships_studio_user"`
	Role            enums.MemberRole `gorm:"column:role;type:member_role;not null"`
	InvitedByUserID *uuid.UUID       `gorm:"column:invited_by_user_id;type:uuid"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
