package photos

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/framewell/framewell-backend/internal/repo"
	"github.com/framewell/framewell-backend/pkg/db/models"
	"github.com/framewell/framewell-backend/pkg/enums"
	"github.com/framewell/framewell-backend/pkg/pagination"
)

// Repository handles photo persistence.
type Repository struct {
	repo.Base
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByID loads a photo by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	var photo models.Photo
	if err := r.DB(ctx).Where("id = ?", id).First(&photo).Error; err != nil {
		return nil, err
	}
	return &photo, nil
}

// Create persists a new photo row.
func (r *Repository) Create(ctx context.Context, photo *models.Photo) error {
	if photo == nil {
		return fmt.Errorf("photo is required")
	}
	return r.DB(ctx).Create(photo).Error
}

// Delete removes the photo row outside a transaction. Used to roll back a
// pending row when signing the upload URL fails.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.Photo{}).Error
}

// DeleteTx removes the photo row inside the provided transaction.
func (r *Repository) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Where("id = ?", id).Delete(&models.Photo{}).Error
}

// MarkUploaded transitions a pending photo to uploaded.
func (r *Repository) MarkUploaded(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB(ctx).
		Model(&models.Photo{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      enums.PhotoStatusUploaded,
			"uploaded_at": at,
		}).Error
}

// ListPendingBefore returns photos that never left pending, oldest first.
// The cleanup job uses it to sweep rows whose upload was presigned but never
// confirmed.
func (r *Repository) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]models.Photo, error) {
	var photos []models.Photo
	err := r.DB(ctx).
		Where("status = ? AND created_at < ?", enums.PhotoStatusPending, cutoff).
		Order("created_at ASC, id ASC").
		Find(&photos).Error
	if err != nil {
		return nil, err
	}
	return photos, nil
}

// listQuery is built by the service after sort-field validation.
type listQuery struct {
	albumID      uuid.UUID
	sort         enums.PhotoSortField
	desc         bool
	limit        int
	cursor       *pagination.Cursor
	uploadedOnly bool
}

// List returns the album's photos ordered by the validated sort field.
func (r *Repository) List(ctx context.Context, query listQuery) ([]models.Photo, error) {
	direction := "ASC"
	if query.desc {
		direction = "DESC"
	}

	q := r.DB(ctx).
		Model(&models.Photo{}).
		Where("album_id = ?", query.albumID).
		Order(fmt.Sprintf("%s %s, id %s", query.sort, direction, direction)).
		Limit(query.limit)

	if query.uploadedOnly {
		q = q.Where("status = ?", enums.PhotoStatusUploaded)
	}
	if query.cursor != nil {
		if query.desc {
			q = q.Where("(created_at, id) < (?, ?)", query.cursor.CreatedAt, query.cursor.ID)
		} else {
			q = q.Where("(created_at, id) > (?, ?)", query.cursor.CreatedAt, query.cursor.ID)
		}
	}

	var photos []models.Photo
	if err := q.Find(&photos).Error; err != nil {
		return nil, err
	}
	return photos, nil
}
