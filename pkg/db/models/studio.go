package models

import (
	"time"

	"github.com/google/uuid"
)

// Studio represents the canonical tenant model. Every album, photo,
// membership row, and invitation is scoped to exactly one studio.
type Studio struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	LogoURL     *string   `gorm:"column:logo_url"`
	CreatedByID uuid.UUID `gorm:"column:created_by_id;type:uuid;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
