package invitations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/framewell/framewell-backend/internal/repo"
	"github.com/framewell/framewell-backend/pkg/db/models"
	"github.com/framewell/framewell-backend/pkg/enums"
)

// Repository exposes invitation persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByID loads an invitation by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := r.DB(ctx).Where("id = ?", id).First(&invitation).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

// FindByIDForUpdateTx loads an invitation with a row lock so concurrent
// acceptances serialize on the row.
func (r *Repository) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*models.Invitation, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var invitation models.Invitation
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&invitation).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// CreateTx persists a new invitation inside the provided transaction.
func (r *Repository) CreateTx(tx *gorm.DB, invitation *models.Invitation) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Create(invitation).Error
}

// ListStudioInvitations returns the studio's invitations, newest first.
func (r *Repository) ListStudioInvitations(ctx context.Context, studioID uuid.UUID) ([]models.Invitation, error) {
	var invitations []models.Invitation
	err := r.DB(ctx).
		Where("studio_id = ?", studioID).
		Order("created_at DESC, id").
		Find(&invitations).Error
	if err != nil {
		return nil, err
	}
	return invitations, nil
}

// MarkAcceptedTx transitions the invitation to accepted inside the
// transaction. Rows are immutable afterwards.
func (r *Repository) MarkAcceptedTx(tx *gorm.DB, id uuid.UUID, at time.Time) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.
		Model(&models.Invitation{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      enums.InvitationStatusAccepted,
			"accepted_at": at,
		}).Error
}

// Delete removes the invitation row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Where("id = ?", id).Delete(&models.Invitation{}).Error
}

// DeleteExpiredBefore removes pending invitations whose expiry passed before
// the cutoff. Expiry is still enforced against expires_at on every redemption
// path; this only clears rows nobody can redeem anymore.
func (r *Repository) DeleteExpiredBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	db := r.DB(ctx)
	if tx != nil {
		db = tx.WithContext(ctx)
	}
	result := db.
		Where("status = ? AND expires_at < ?", enums.InvitationStatusPending, cutoff).
		Delete(&models.Invitation{})
	return result.RowsAffected, result.Error
}
