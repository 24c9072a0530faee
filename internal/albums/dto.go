package albums

import (
	"time"

	"github.com/google/uuid"

	"github.com/framewell/framewell-backend/pkg/db/models"
	"github.com/framewell/framewell-backend/pkg/enums"
)

// AlbumDTO is the transport shape for an album.
type AlbumDTO struct {
	ID           uuid.UUID  `json:"id"`
	StudioID     uuid.UUID  `json:"studio_id"`
	Name         string     `json:"name"`
	Description  *string    `json:"description,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	CoverPhotoID *uuid.UUID `json:"cover_photo_id,omitempty"`
	CreatedByID  uuid.UUID  `json:"created_by_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CreateAlbumInput holds creation-time data for a new album.
type CreateAlbumInput struct {
	Name        string
	Description *string
	Tags        []string
}

// UpdateAlbumInput captures the allowed album fields for mutation.
type UpdateAlbumInput struct {
	Name         *string
	Description  *string
	Tags         *[]string
	CoverPhotoID *uuid.UUID
}

// ListParams configures studio album listing.
type ListParams struct {
	Sort   enums.AlbumSortField
	Desc   bool
	Limit  int
	Cursor string
}

// ListResult returns a page of albums plus the continuation cursor.
type ListResult struct {
	Items  []AlbumDTO `json:"items"`
	Cursor string     `json:"cursor"`
}

// FromModel maps the persisted album into a DTO.
func FromModel(m *models.Album) *AlbumDTO {
	if m == nil {
		return nil
	}

	dto := &AlbumDTO{
		ID:          m.ID,
		StudioID:    m.StudioID,
		Name:        m.Name,
		Description: cloneStringPtr(m.Description),
		CreatedByID: m.CreatedByID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if len(m.Tags) > 0 {
		dto.Tags = append([]string(nil), m.Tags...)
	}
	if m.CoverPhotoID != nil {
		id := *m.CoverPhotoID
		dto.CoverPhotoID = &id
	}
	return dto
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cpy := *value
	return &cpy
}
