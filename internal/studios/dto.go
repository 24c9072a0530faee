package studios

import (
	"time"

	"github.com/google/uuid"

	"github.com/framewell/framewell-backend/pkg/db/models"
)

// StudioDTO exposes safe tenant data in API responses.
type StudioDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	LogoURL     *string   `json:"logo_url,omitempty"`
	CreatedByID uuid.UUID `json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateStudioInput holds creation-time data for a new studio.
type CreateStudioInput struct {
	Name    string
	LogoURL *string
}

// UpdateStudioInput captures the allowed studio fields for mutation.
type UpdateStudioInput struct {
	Name    *string
	LogoURL *string
}

// FromModel maps the persisted studio into a DTO.
func FromModel(m *models.Studio) *StudioDTO {
	if m == nil {
		return nil
	}

	return &StudioDTO{
		ID:          m.ID,
		Name:        m.Name,
		LogoURL:     cloneStringPtr(m.LogoURL),
		CreatedByID: m.CreatedByID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cpy := *value
	return &cpy
}
