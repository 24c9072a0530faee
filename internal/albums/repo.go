package albums

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/framewell/framewell-backend/internal/repo"
	"github.com/framewell/framewell-backend/pkg/db/models"
	"github.com/framewell/framewell-backend/pkg/enums"
	"github.com/framewell/framewell-backend/pkg/pagination"
)

// Repository handles album persistence.
type Repository struct {
	repo.Base
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByID loads an album by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Album, error) {
	var album models.Album
	if err := r.DB(ctx).Where("id = ?", id).First(&album).Error; err != nil {
		return nil, err
	}
	return &album, nil
}

// Create persists a new album row.
func (r *Repository) Create(ctx context.Context, album *models.Album) error {
	if album == nil {
		return fmt.Errorf("album is required")
	}
	return r.DB(ctx).Create(album).Error
}

// Update saves the provided album.
func (r *Repository) Update(ctx context.Context, album *models.Album) error {
	if album == nil {
		return fmt.Errorf("album is required")
	}
	return r.DB(ctx).Save(album).Error
}

// GetAlbumPhoto loads a photo only if it belongs to the album.
func (r *Repository) GetAlbumPhoto(ctx context.Context, albumID, photoID uuid.UUID) (*models.Photo, error) {
	var photo models.Photo
	err := r.DB(ctx).
		Where("id = ? AND album_id = ?", photoID, albumID).
		First(&photo).Error
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

// listQuery is built by the service after sort-field validation.
type listQuery struct {
	studioID uuid.UUID
	sort     enums.AlbumSortField
	desc     bool
	limit    int
	cursor   *pagination.Cursor
}

// List returns albums for the studio ordered by the validated sort field. The
// cursor only applies to created_at ordering; the service enforces that.
func (r *Repository) List(ctx context.Context, query listQuery) ([]models.Album, error) {
	direction := "ASC"
	if query.desc {
		direction = "DESC"
	}

	q := r.DB(ctx).
		Model(&models.Album{}).
		Where("studio_id = ?", query.studioID).
		Order(fmt.Sprintf("%s %s, id %s", query.sort, direction, direction)).
		Limit(query.limit)

	if query.cursor != nil {
		if query.desc {
			q = q.Where("(created_at, id) < (?, ?)", query.cursor.CreatedAt, query.cursor.ID)
		} else {
			q = q.Where("(created_at, id) > (?, ?)", query.cursor.CreatedAt, query.cursor.ID)
		}
	}

	var albums []models.Album
	if err := q.Find(&albums).Error; err != nil {
		return nil, err
	}
	return albums, nil
}

// ListGrantedToUser returns the albums shared with the user across studios,
// joined through their client relations.
func (r *Repository) ListGrantedToUser(ctx context.Context, userID uuid.UUID) ([]models.Album, error) {
	var albums []models.Album
	err := r.DB(ctx).
		Model(&models.Album{}).
		Joins("JOIN album_client_grants ON album_client_grants.album_id = albums.id").
		Joins("JOIN studio_clients ON studio_clients.id = album_client_grants.studio_client_id").
		Where("studio_clients.user_id = ?", userID).
		Order("albums.created_at DESC, albums.id").
		Find(&albums).Error
	if err != nil {
		return nil, err
	}
	return albums, nil
}

// ListAlbumPhotosTx returns the album's photos inside the transaction, used
// by the cascade delete to emit cleanup events per photo.
func (r *Repository) ListAlbumPhotosTx(tx *gorm.DB, albumID uuid.UUID) ([]models.Photo, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var photos []models.Photo
	err := tx.
		Where("album_id = ?", albumID).
		Order("created_at, id").
		Find(&photos).Error
	if err != nil {
		return nil, err
	}
	return photos, nil
}

// DeleteCascadeTx removes the album with its photos and client grants.
func (r *Repository) DeleteCascadeTx(tx *gorm.DB, albumID uuid.UUID) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if err := tx.Where("album_id = ?", albumID).Delete(&models.Photo{}).Error; err != nil {
		return fmt.Errorf("delete photos: %w", err)
	}
	if err := tx.Where("album_id = ?", albumID).Delete(&models.AlbumClientGrant{}).Error; err != nil {
		return fmt.Errorf("delete grants: %w", err)
	}
	if err := tx.Where("id = ?", albumID).Delete(&models.Album{}).Error; err != nil {
		return fmt.Errorf("delete album: %w", err)
	}
	return nil
}
