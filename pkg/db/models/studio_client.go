package models

import (
	"time"

	"github.com/google/uuid"
)

// StudioClient grants a user album-scoped viewing access to a studio. It is a
// relation disjoint from StudioMembership: a client holds no management role.
// (studio_id, user_id) is unique, mirroring the membership constraint.
type StudioClient struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StudioID        uuid.UUID  `gorm:"column:studio_id;type:uuid;not null;uniqueIndex:ux_studio_clients_studio_user"`
	UserID          uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_studio_clients_studio_user"`
	InvitedByUserID *uuid.UUID `gorm:"column:invited_by_user_id;type:uuid"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
