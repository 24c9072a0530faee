package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Album groups photos inside a studio. Clients see albums only through
// AlbumClientGrant rows, never the whole studio.
type Album struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StudioID     uuid.UUID      `gorm:"column:studio_id;type:uuid;not null;index"`
	Name         string         `gorm:"column:name;not null"`
	Description  *string        `gorm:"column:description"`
	Tags         pq.StringArray `gorm:"column:tags;type:text[]"`
	CoverPhotoID *uuid.UUID     `gorm:"column:cover_photo_id;type:uuid"`
	CreatedByID  uuid.UUID      `gorm:"column:created_by_id;type:uuid;not null"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
