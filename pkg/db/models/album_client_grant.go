package models

import (
	"time"

	"github.com/google/uuid"
)

// AlbumClientGrant links an album to a studio client, the mechanism by which
// a client sees specific albums rather than the whole studio.
type AlbumClientGrant struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AlbumID         uuid.UUID `gorm:"column:album_id;type:uuid;not null;uniqueIndex:ux_album_client_grants_album_client"`
	StudioClientID  uuid.UUID `gorm:"column:studio_client_id;type:uuid;not null;uniqueIndex:ux_album_client_grants_album_client"`
	GrantedByUserID uuid.UUID `gorm:"column:granted_by_user_id;type:uuid;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}
