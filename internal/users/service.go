package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/framewell/framewell-backend/pkg/db/models"
	"github.com/framewell/framewell-backend/pkg/enums"
	pkgerrors "github.com/framewell/framewell-backend/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateUserType(ctx context.Context, id uuid.UUID, userType enums.UserType) error
}

// Service exposes account-level user operations. Studio-scoped access goes
// through memberships; these calls act on the global account only.
type Service interface {
	GetByID(ctx context.Context, actorID, targetID uuid.UUID, actorType enums.UserType) (*UserDTO, error)
	UpdateUserType(ctx context.Context, actorID, targetID uuid.UUID, actorType, newType enums.UserType) (*UserDTO, error)
}

type service struct {
	repo userRepository
}

// NewService builds a user service with the provided repository.
func NewService(repo userRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo}, nil
}

// GetByID returns the profile for the caller themselves or, for platform
// admins, any account.
func (s *service) GetByID(ctx context.Context, actorID, targetID uuid.UUID, actorType enums.UserType) (*UserDTO, error) {
	if actorID != targetID && !actorType.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}

	user, err := s.loadUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

// UpdateUserType changes an account's global kind. Admin only, and an admin
// cannot change their own type, which keeps at least the acting admin intact.
func (s *service) UpdateUserType(ctx context.Context, actorID, targetID uuid.UUID, actorType, newType enums.UserType) (*UserDTO, error) {
	if !actorType.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}
	if !newType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid user type")
	}
	if actorID == targetID {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot change your own user type")
	}

	user, err := s.loadUser(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if user.UserType != newType {
		if err := s.repo.UpdateUserType(ctx, targetID, newType); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user type")
		}
		user.UserType = newType
	}
	return FromModel(user), nil
}

func (s *service) loadUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}
