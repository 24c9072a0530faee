package studios

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/framewell/framewell-backend/internal/repo"
	"github.com/framewell/framewell-backend/pkg/db/models"
)

// Repository handles studio persistence.
type Repository struct {
	repo.Base
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByID loads a studio by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Studio, error) {
	var studio models.Studio
	if err := r.DB(ctx).Where("id = ?", id).First(&studio).Error; err != nil {
		return nil, err
	}
	return &studio, nil
}

// Update saves the provided studio.
func (r *Repository) Update(ctx context.Context, studio *models.Studio) error {
	if studio == nil {
		return fmt.Errorf("studio is required")
	}
	return r.DB(ctx).Save(studio).Error
}

// CreateTx persists a new studio row inside the provided transaction.
func (r *Repository) CreateTx(tx *gorm.DB, studio *models.Studio) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if studio == nil {
		return fmt.Errorf("studio is required")
	}
	return tx.Create(studio).Error
}

// ListPhotoObjectKeysTx returns the object keys of every photo stored under
// the studio. Called before the cascade delete so the cleanup event can still
// name the objects.
func (r *Repository) ListPhotoObjectKeysTx(tx *gorm.DB, studioID uuid.UUID) ([]string, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var keys []string
	err := tx.Model(&models.Photo{}).
		Where("studio_id = ?", studioID).
		Order("object_key").
		Pluck("object_key", &keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// DeleteCascadeTx removes the studio and every row scoped to it: photos,
// album grants, albums, invitations, clients, memberships, then the studio
// itself. Object storage cleanup happens later via the outbox worker.
func (r *Repository) DeleteCascadeTx(tx *gorm.DB, studioID uuid.UUID) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}

	if err := tx.Where("studio_id = ?", studioID).Delete(&models.Photo{}).Error; err != nil {
		return fmt.Errorf("delete photos: %w", err)
	}
	if err := tx.
		Where("album_id IN (SELECT id FROM albums WHERE studio_id = ?)", studioID).
		Delete(&models.AlbumClientGrant{}).Error; err != nil {
		return fmt.Errorf("delete album grants: %w", err)
	}
	if err := tx.Where("studio_id = ?", studioID).Delete(&models.Album{}).Error; err != nil {
		return fmt.Errorf("delete albums: %w", err)
	}
	if err := tx.Where("studio_id = ?", studioID).Delete(&models.Invitation{}).Error; err != nil {
		return fmt.Errorf("delete invitations: %w", err)
	}
	if err := tx.Where("studio_id = ?", studioID).Delete(&models.StudioClient{}).Error; err != nil {
		return fmt.Errorf("delete studio clients: %w", err)
	}
	if err := tx.Where("studio_id = ?", studioID).Delete(&models.StudioMembership{}).Error; err != nil {
		return fmt.Errorf("delete memberships: %w", err)
	}
	if err := tx.Where("id = ?", studioID).Delete(&models.Studio{}).Error; err != nil {
		return fmt.Errorf("delete studio: %w", err)
	}
	return nil
}
