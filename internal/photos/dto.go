package photos

import (
	"time"

	"github.com/google/uuid"

	"github.com/framewell/framewell-backend/pkg/db/models"
	"github.com/framewell/framewell-backend/pkg/enums"
)

// PhotoDTO is the transport shape for a photo row.
type PhotoDTO struct {
	ID          uuid.UUID         `json:"id"`
	StudioID    uuid.UUID         `json:"studio_id"`
	AlbumID     uuid.UUID         `json:"album_id"`
	FileName    string            `json:"file_name"`
	ContentType string            `json:"content_type"`
	SizeBytes   int64             `json:"size_bytes"`
	Status      enums.PhotoStatus `json:"status"`
	UploadedBy  uuid.UUID         `json:"uploaded_by"`
	UploadedAt  *time.Time        `json:"uploaded_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	SignedURL   string            `json:"signed_url,omitempty"`
}

// PresignInput models the payload required to request an upload URL.
type PresignInput struct {
	AlbumID     uuid.UUID
	FileName    string
	ContentType string
	SizeBytes   int64
}

// PresignOutput contains the data returned after creating the pending row.
type PresignOutput struct {
	PhotoID      uuid.UUID `json:"photo_id"`
	ObjectKey    string    `json:"object_key"`
	SignedPUTURL string    `json:"signed_put_url"`
	ContentType  string    `json:"content_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// ListParams configures album photo listing.
type ListParams struct {
	Sort   enums.PhotoSortField
	Desc   bool
	Limit  int
	Cursor string
}

// ListResult returns a page of photos plus the continuation cursor.
type ListResult struct {
	Items  []PhotoDTO `json:"items"`
	Cursor string     `json:"cursor"`
}

// FromModel maps the persisted photo into a DTO.
func FromModel(m *models.Photo) *PhotoDTO {
	if m == nil {
		return nil
	}

	return &PhotoDTO{
		ID:          m.ID,
		StudioID:    m.StudioID,
		AlbumID:     m.AlbumID,
		FileName:    m.FileName,
		ContentType: m.ContentType,
		SizeBytes:   m.SizeBytes,
		Status:      m.Status,
		UploadedBy:  m.UploadedBy,
		UploadedAt:  m.UploadedAt,
		CreatedAt:   m.CreatedAt,
	}
}
