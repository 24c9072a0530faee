package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/framewell/framewell-backend/pkg/enums"
)

// Photo is a single stored image. The row is authoritative for tenancy; the
// bytes live in object storage under ObjectKey and are removed best-effort by
// the photo worker after the row is gone.
type Photo struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StudioID    uuid.UUID         `gorm:"column:studio_id;type:uuid;not null;index"`
	AlbumID     uuid.UUID         `gorm:"column:album_id;type:uuid;not null;index"`
	ObjectKey   string            `gorm:"column:object_key;not null;uniqueIndex"`
	FileName    string            `gorm:"column:file_name;not null"`
	ContentType string            `gorm:"column:content_type;not null"`
	SizeBytes   int64             `gorm:"column:size_bytes;not null;default:0"`
	Status      enums.PhotoStatus `gorm:"column:status;type:photo_status;not null"`
	UploadedBy  uuid.UUID         `gorm:"column:uploaded_by;type:uuid;not null"`
	UploadedAt  *time.Time        `gorm:"column:uploaded_at"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
