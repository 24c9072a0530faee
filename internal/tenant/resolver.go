package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/framewell/framewell-backend/pkg/errors"
	"github.com/framewell/framewell-backend/pkg/db/models"
)

type membershipFinder interface {
	GetMembership(ctx context.Context, userID, studioID uuid.UUID) (*models.StudioMembership, error)
	FindOwnedStudio(ctx context.Context, userID uuid.UUID) (*models.StudioMembership, error)
	FindFirstMembership(ctx context.Context, userID uuid.UUID) (*models.StudioMembership, error)
}

// Resolver picks the studio a user is acting in. The stored selector is a
// hint, not an authority: a selector pointing at a studio the user no longer
// belongs to is discarded and resolution falls through to the fallbacks.
type Resolver struct {
	memberships membershipFinder
}

// NewResolver builds a resolver over the membership store.
func NewResolver(memberships membershipFinder) (*Resolver, error) {
	if memberships == nil {
		return nil, errors.New("memberships repository required")
	}
	return &Resolver{memberships: memberships}, nil
}

// Resolve returns the active studio id for the user, or nil when the user
// belongs to no studio. Order: valid selector, then owned studio (earliest),
// then earliest membership.
func (r *Resolver) Resolve(ctx context.Context, userID uuid.UUID, selector *uuid.UUID) (*uuid.UUID, error) {
	if selector != nil && *selector != uuid.Nil {
		_, err := r.memberships.GetMembership(ctx, userID, *selector)
		if err == nil {
			resolved := *selector
			return &resolved, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check selected membership")
		}
	}

	owned, err := r.memberships.FindOwnedStudio(ctx, userID)
	if err == nil {
		resolved := owned.StudioID
		return &resolved, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find owned studio")
	}

	first, err := r.memberships.FindFirstMembership(ctx, userID)
	if err == nil {
		resolved := first.StudioID
		return &resolved, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find first membership")
	}

	return nil, nil
}
