package memberships

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/framewell/framewell-backend/internal/repo"
	"github.com/framewell/framewell-backend/pkg/db/models"
	"github.com/framewell/framewell-backend/pkg/enums"
)

// Repository exposes membership persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// ListUserStudios returns the studios a user belongs to along with membership metadata.
func (r *Repository) ListUserStudios(ctx context.Context, userID uuid.UUID) ([]MembershipWithStudio, error) {
	var rows []membershipWithStudioRow

	err := r.DB(ctx).
		Model(&models.StudioMembership{}).
		Select("studio_memberships.*, studios.name AS studio_name").
		Joins("JOIN studios ON studios.id = studio_memberships.studio_id").
		Where("studio_memberships.user_id = ?", userID).
		Order("studios.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return membershipRowsToDTO(rows), nil
}

// GetMembership retrieves a membership by user and studio.
func (r *Repository) GetMembership(ctx context.Context, userID, studioID uuid.UUID) (*models.StudioMembership, error) {
	var membership models.StudioMembership
	err := r.DB(ctx).
		Where("user_id = ? AND studio_id = ?", userID, studioID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// GetMembershipTx retrieves a membership inside the provided transaction.
func (r *Repository) GetMembershipTx(tx *gorm.DB, userID, studioID uuid.UUID) (*models.StudioMembership, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var membership models.StudioMembership
	err := tx.
		Where("user_id = ? AND studio_id = ?", userID, studioID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// FindOwnedStudio returns the earliest studio the user owns, or a record-not-found miss.
func (r *Repository) FindOwnedStudio(ctx context.Context, userID uuid.UUID) (*models.StudioMembership, error) {
	var membership models.StudioMembership
	err := r.DB(ctx).
		Where("user_id = ? AND role = ?", userID, enums.MemberRoleOwner).
		Order("created_at, id").
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// FindFirstMembership returns the user's earliest membership in any studio.
func (r *Repository) FindFirstMembership(ctx context.Context, userID uuid.UUID) (*models.StudioMembership, error) {
	var membership models.StudioMembership
	err := r.DB(ctx).
		Where("user_id = ?", userID).
		Order("created_at, id").
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// CreateMembership persists a new membership record. The unique constraint on
// (studio_id, user_id) surfaces duplicate admissions as an error.
func (r *Repository) CreateMembership(ctx context.Context, studioID, userID uuid.UUID, role enums.MemberRole, invitedBy *uuid.UUID) (*models.StudioMembership, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid member role %q", role)
	}

	membership := &models.StudioMembership{
		StudioID:        studioID,
		UserID:          userID,
		Role:            role,
		InvitedByUserID: invitedBy,
	}

	if err := r.DB(ctx).Create(membership).Error; err != nil {
		return nil, err
	}
	return membership, nil
}

// CreateMembershipTx persists a membership inside the provided transaction.
func (r *Repository) CreateMembershipTx(tx *gorm.DB, studioID, userID uuid.UUID, role enums.MemberRole, invitedBy *uuid.UUID) (*models.StudioMembership, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid member role %q", role)
	}

	membership := &models.StudioMembership{
		StudioID:        studioID,
		UserID:          userID,
		Role:            role,
		InvitedByUserID: invitedBy,
	}

	if err := tx.Create(membership).Error; err != nil {
		return nil, err
	}
	return membership, nil
}

// DeleteMembership removes the membership row for the user/studio pair.
func (r *Repository) DeleteMembership(ctx context.Context, studioID, userID uuid.UUID) error {
	return r.DB(ctx).
		Where("studio_id = ? AND user_id = ?", studioID, userID).
		Delete(&models.StudioMembership{}).Error
}

// UserHasRole reports whether the user holds one of the provided roles for the studio.
func (r *Repository) UserHasRole(ctx context.Context, userID, studioID uuid.UUID, roles ...enums.MemberRole) (bool, error) {
	if len(roles) == 0 {
		return false, nil
	}

	var count int64
	err := r.DB(ctx).
		Model(&models.StudioMembership{}).
		Where("user_id = ? AND studio_id = ? AND role IN ?", userID, studioID, roles).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountMembersWithRoles counts studio memberships holding any of the given roles.
func (r *Repository) CountMembersWithRoles(ctx context.Context, studioID uuid.UUID, roles ...enums.MemberRole) (int64, error) {
	if len(roles) == 0 {
		return 0, nil
	}
	var count int64
	err := r.DB(ctx).
		Model(&models.StudioMembership{}).
		Where("studio_id = ? AND role IN ?", studioID, roles).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CountUserMemberships counts how many studios the user belongs to.
func (r *Repository) CountUserMemberships(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.StudioMembership{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// GetMembershipWithStudio returns membership details joined with studio metadata.
func (r *Repository) GetMembershipWithStudio(ctx context.Context, userID, studioID uuid.UUID) (*MembershipWithStudio, error) {
	var row membershipWithStudioRow
	err := r.DB(ctx).
		Model(&models.StudioMembership{}).
		Select("studio_memberships.*, studios.name AS studio_name").
		Joins("JOIN studios ON studios.id = studio_memberships.studio_id").
		Where("studio_memberships.user_id = ? AND studio_memberships.studio_id = ?", userID, studioID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	dto := membershipWithStudioFromRow(row)
	return &dto, nil
}

// ListStudioUsers returns memberships for the studio along with user metadata.
func (r *Repository) ListStudioUsers(ctx context.Context, studioID uuid.UUID) ([]StudioUserDTO, error) {
	var rows []studioUserRow
	err := r.DB(ctx).
		Model(&models.StudioMembership{}).
		Select("studio_memberships.*, users.email, users.first_name, users.last_name, users.last_login_at").
		Joins("JOIN users ON users.id = studio_memberships.user_id").
		Where("studio_memberships.studio_id = ?", studioID).
		Order("studio_memberships.created_at").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return studioUsersFromRows(rows), nil
}
