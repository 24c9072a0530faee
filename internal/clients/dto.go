package clients

import (
	"time"

	"github.com/google/uuid"

	"github.com/framewell/framewell-backend/pkg/db/models"
)

// ClientDTO is the transport shape for a studio client relation.
type ClientDTO struct {
	ID              uuid.UUID  `json:"id"`
	StudioID        uuid.UUID  `json:"studio_id"`
	UserID          uuid.UUID  `json:"user_id"`
	InvitedByUserID *uuid.UUID `json:"invited_by_user_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// StudioClientDTO mixes the client relation with the user profile for studio managers.
type StudioClientDTO struct {
	ClientID    uuid.UUID  `json:"client_id"`
	StudioID    uuid.UUID  `json:"studio_id"`
	UserID      uuid.UUID  `json:"user_id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// ToDTO converts a model to the external DTO.
func ToDTO(c *models.StudioClient) *ClientDTO {
	if c == nil {
		return nil
	}

	return &ClientDTO{
		ID:              c.ID,
		StudioID:        c.StudioID,
		UserID:          c.UserID,
		InvitedByUserID: copyUUIDPointer(c.InvitedByUserID),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func copyUUIDPointer(src *uuid.UUID) *uuid.UUID {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}

type studioClientRow struct {
	models.StudioClient
	Email       string     `gorm:"column:email"`
	FirstName   string     `gorm:"column:first_name"`
	LastName    string     `gorm:"column:last_name"`
	LastLoginAt *time.Time `gorm:"column:last_login_at"`
}

func studioClientsFromRows(rows []studioClientRow) []StudioClientDTO {
	out := make([]StudioClientDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, StudioClientDTO{
			ClientID:    row.ID,
			StudioID:    row.StudioID,
			UserID:      row.UserID,
			Email:       row.Email,
			FirstName:   row.FirstName,
			LastName:    row.LastName,
			CreatedAt:   row.CreatedAt,
			LastLoginAt: row.LastLoginAt,
		})
	}
	return out
}
