package clients

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/framewell/framewell-backend/internal/repo"
	"github.com/framewell/framewell-backend/pkg/db/models"
)

// Repository exposes studio-client persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// GetClient retrieves the client relation for a user/studio pair.
func (r *Repository) GetClient(ctx context.Context, userID, studioID uuid.UUID) (*models.StudioClient, error) {
	var client models.StudioClient
	err := r.DB(ctx).
		Where("user_id = ? AND studio_id = ?", userID, studioID).
		First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// GetClientTx retrieves the client relation inside the provided transaction.
func (r *Repository) GetClientTx(tx *gorm.DB, userID, studioID uuid.UUID) (*models.StudioClient, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var client models.StudioClient
	err := tx.
		Where("user_id = ? AND studio_id = ?", userID, studioID).
		First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// CreateClient persists a new studio client. The unique constraint on
// (studio_id, user_id) surfaces duplicate admissions as an error.
func (r *Repository) CreateClient(ctx context.Context, studioID, userID uuid.UUID, invitedBy *uuid.UUID) (*models.StudioClient, error) {
	client := &models.StudioClient{
		StudioID:        studioID,
		UserID:          userID,
		InvitedByUserID: invitedBy,
	}
	if err := r.DB(ctx).Create(client).Error; err != nil {
		return nil, err
	}
	return client, nil
}

// CreateClientTx persists a studio client inside the provided transaction.
func (r *Repository) CreateClientTx(tx *gorm.DB, studioID, userID uuid.UUID, invitedBy *uuid.UUID) (*models.StudioClient, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	client := &models.StudioClient{
		StudioID:        studioID,
		UserID:          userID,
		InvitedByUserID: invitedBy,
	}
	if err := tx.Create(client).Error; err != nil {
		return nil, err
	}
	return client, nil
}

// DeleteClientTx removes the client row inside the provided transaction.
func (r *Repository) DeleteClientTx(tx *gorm.DB, studioID, userID uuid.UUID) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.
		Where("studio_id = ? AND user_id = ?", studioID, userID).
		Delete(&models.StudioClient{}).Error
}

// DeleteGrantsForClientTx removes every album grant held by the client inside
// the provided transaction.
func (r *Repository) DeleteGrantsForClientTx(tx *gorm.DB, studioClientID uuid.UUID) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.
		Where("studio_client_id = ?", studioClientID).
		Delete(&models.AlbumClientGrant{}).Error
}

// DeleteClient removes the client row for the user/studio pair.
func (r *Repository) DeleteClient(ctx context.Context, studioID, userID uuid.UUID) error {
	return r.DB(ctx).
		Where("studio_id = ? AND user_id = ?", studioID, userID).
		Delete(&models.StudioClient{}).Error
}

// ListStudioClients returns the studio's clients along with user metadata.
func (r *Repository) ListStudioClients(ctx context.Context, studioID uuid.UUID) ([]StudioClientDTO, error) {
	var rows []studioClientRow
	err := r.DB(ctx).
		Model(&models.StudioClient{}).
		Select("studio_clients.*, users.email, users.first_name, users.last_name, users.last_login_at").
		Joins("JOIN users ON users.id = studio_clients.user_id").
		Where("studio_clients.studio_id = ?", studioID).
		Order("studio_clients.created_at").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return studioClientsFromRows(rows), nil
}

// ListClientStudios returns the studio ids the user is a client of.
func (r *Repository) ListClientStudios(ctx context.Context, userID uuid.UUID) ([]models.StudioClient, error) {
	var clientRows []models.StudioClient
	err := r.DB(ctx).
		Where("user_id = ?", userID).
		Order("created_at, id").
		Find(&clientRows).Error
	if err != nil {
		return nil, err
	}
	return clientRows, nil
}

// CreateGrant links an album to a studio client.
func (r *Repository) CreateGrant(ctx context.Context, albumID, studioClientID, grantedBy uuid.UUID) (*models.AlbumClientGrant, error) {
	grant := &models.AlbumClientGrant{
		AlbumID:         albumID,
		StudioClientID:  studioClientID,
		GrantedByUserID: grantedBy,
	}
	if err := r.DB(ctx).Create(grant).Error; err != nil {
		return nil, err
	}
	return grant, nil
}

// DeleteGrant removes the album grant for the client.
func (r *Repository) DeleteGrant(ctx context.Context, albumID, studioClientID uuid.UUID) error {
	return r.DB(ctx).
		Where("album_id = ? AND studio_client_id = ?", albumID, studioClientID).
		Delete(&models.AlbumClientGrant{}).Error
}

// DeleteGrantsForClient removes every album grant held by the client.
func (r *Repository) DeleteGrantsForClient(ctx context.Context, studioClientID uuid.UUID) error {
	return r.DB(ctx).
		Where("studio_client_id = ?", studioClientID).
		Delete(&models.AlbumClientGrant{}).Error
}

// HasGrant reports whether the client holds a grant for the album.
func (r *Repository) HasGrant(ctx context.Context, albumID, studioClientID uuid.UUID) (bool, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.AlbumClientGrant{}).
		Where("album_id = ? AND studio_client_id = ?", albumID, studioClientID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
