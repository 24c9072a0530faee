package studios

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/framewell/framewell-backend/internal/clients"
	"github.com/framewell/framewell-backend/internal/memberships"
	"github.com/framewell/framewell-backend/internal/tenant"
	"github.com/framewell/framewell-backend/pkg/db/models"
	"github.com/framewell/framewell-backend/pkg/enums"
	pkgerrors "github.com/framewell/framewell-backend/pkg/errors"
	"github.com/framewell/framewell-backend/pkg/outbox"
	"github.com/framewell/framewell-backend/pkg/outbox/payloads"
)

type studioRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Studio, error)
	Update(ctx context.Context, studio *models.Studio) error
	CreateTx(tx *gorm.DB, studio *models.Studio) error
	ListPhotoObjectKeysTx(tx *gorm.DB, studioID uuid.UUID) ([]string, error)
	DeleteCascadeTx(tx *gorm.DB, studioID uuid.UUID) error
}

type membershipsRepository interface {
	GetMembership(ctx context.Context, userID, studioID uuid.UUID) (*models.StudioMembership, error)
	CreateMembershipTx(tx *gorm.DB, studioID, userID uuid.UUID, role enums.MemberRole, invitedBy *uuid.UUID) (*models.StudioMembership, error)
	DeleteMembership(ctx context.Context, studioID, userID uuid.UUID) error
	UserHasRole(ctx context.Context, userID, studioID uuid.UUID, roles ...enums.MemberRole) (bool, error)
	CountUserMemberships(ctx context.Context, userID uuid.UUID) (int64, error)
	ListStudioUsers(ctx context.Context, studioID uuid.UUID) ([]memberships.StudioUserDTO, error)
}

type clientsRepository interface {
	GetClient(ctx context.Context, userID, studioID uuid.UUID) (*models.StudioClient, error)
	ListStudioClients(ctx context.Context, studioID uuid.UUID) ([]clients.StudioClientDTO, error)
	DeleteClientTx(tx *gorm.DB, studioID, userID uuid.UUID) error
	DeleteGrantsForClientTx(tx *gorm.DB, studioClientID uuid.UUID) error
}

type authorizer interface {
	Authorize(ctx context.Context, actor tenant.Actor, resourceStudioID uuid.UUID, level tenant.AccessLevel) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes studio operations.
type Service interface {
	GetByID(ctx context.Context, actor tenant.Actor, studioID uuid.UUID) (*StudioDTO, error)
	Create(ctx context.Context, ownerID uuid.UUID, input CreateStudioInput) (*StudioDTO, error)
	CreateInTx(tx *gorm.DB, ownerID uuid.UUID, input CreateStudioInput) (*models.Studio, error)
	Update(ctx context.Context, actor tenant.Actor, studioID uuid.UUID, input UpdateStudioInput) (*StudioDTO, error)
	Delete(ctx context.Context, actor tenant.Actor, studioID uuid.UUID) error
	ListUsers(ctx context.Context, actor tenant.Actor, studioID uuid.UUID) ([]memberships.StudioUserDTO, error)
	RemoveUser(ctx context.Context, actor tenant.Actor, studioID, targetUserID uuid.UUID) error
	ListClients(ctx context.Context, actor tenant.Actor, studioID uuid.UUID) ([]clients.StudioClientDTO, error)
	RemoveClient(ctx context.Context, actor tenant.Actor, studioID, clientUserID uuid.UUID) error
}

type service struct {
	repo        studioRepository
	memberships membershipsRepository
	clients     clientsRepository
	guard       authorizer
	tx          txRunner
	outbox      outboxEmitter
}

// ServiceParams wires the studio service dependencies.
type ServiceParams struct {
	Repo        studioRepository
	Memberships membershipsRepository
	Clients     clientsRepository
	Guard       authorizer
	Tx          txRunner
	Outbox      outboxEmitter
}

// NewService builds a studio service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("studio repository required")
	}
	if params.Memberships == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	if params.Clients == nil {
		return nil, fmt.Errorf("clients repository required")
	}
	if params.Guard == nil {
		return nil, fmt.Errorf("guard required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{
		repo:        params.Repo,
		memberships: params.Memberships,
		clients:     params.Clients,
		guard:       params.Guard,
		tx:          params.Tx,
		outbox:      params.Outbox,
	}, nil
}

func (s *service) GetByID(ctx context.Context, actor tenant.Actor, studioID uuid.UUID) (*StudioDTO, error) {
	studio, err := s.loadStudio(ctx, studioID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(ctx, actor, studio.ID, tenant.AccessMember); err != nil {
		return nil, err
	}
	return FromModel(studio), nil
}

// Create opens a studio with the caller as its owner. The studio row and the
// owner membership commit together.
func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input CreateStudioInput) (*StudioDTO, error) {
	var created *models.Studio
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		studio, err := s.CreateInTx(tx, ownerID, input)
		if err != nil {
			return err
		}
		created = studio
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(created), nil
}

// CreateInTx inserts the studio and its owner membership using the caller's
// transaction. Registration uses this to keep user, studio, and membership in
// a single commit.
func (s *service) CreateInTx(tx *gorm.DB, ownerID uuid.UUID, input CreateStudioInput) (*models.Studio, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "studio name is required")
	}
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner is required")
	}

	studio := &models.Studio{
		Name:        name,
		LogoURL:     cloneStringPtr(input.LogoURL),
		CreatedByID: ownerID,
	}
	if err := s.repo.CreateTx(tx, studio); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create studio")
	}
	if _, err := s.memberships.CreateMembershipTx(tx, studio.ID, ownerID, enums.MemberRoleOwner, nil); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create owner membership")
	}
	return studio, nil
}

func (s *service) Update(ctx context.Context, actor tenant.Actor, studioID uuid.UUID, input UpdateStudioInput) (*StudioDTO, error) {
	studio, err := s.loadStudio(ctx, studioID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(ctx, actor, studio.ID, tenant.AccessManager); err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "studio name is required")
		}
		studio.Name = name
	}
	if input.LogoURL != nil {
		studio.LogoURL = cloneStringPtr(input.LogoURL)
	}

	if err := s.repo.Update(ctx, studio); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update studio")
	}
	return FromModel(studio), nil
}

// Delete removes the studio and everything scoped to it. Owner only; the
// caller's last studio cannot be deleted, which keeps every photographer
// attached to at least one tenant.
func (s *service) Delete(ctx context.Context, actor tenant.Actor, studioID uuid.UUID) error {
	studio, err := s.loadStudio(ctx, studioID)
	if err != nil {
		return err
	}
	if err := s.guard.Authorize(ctx, actor, studio.ID, tenant.AccessManager); err != nil {
		return err
	}

	isOwner, err := s.memberships.UserHasRole(ctx, *actor.UserID, studio.ID, enums.MemberRoleOwner)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check owner role")
	}
	if !isOwner {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}

	count, err := s.memberships.CountUserMemberships(ctx, *actor.UserID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count memberships")
	}
	if count <= 1 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot delete your only studio")
	}

	deletedBy := *actor.UserID
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		objectKeys, err := s.repo.ListPhotoObjectKeysTx(tx, studio.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list photo object keys")
		}
		if err := s.repo.DeleteCascadeTx(tx, studio.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete studio")
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventStudioDeleted,
			AggregateType: enums.AggregateStudio,
			AggregateID:   studio.ID,
			Actor:         &outbox.ActorRef{UserID: deletedBy, StudioID: &studio.ID},
			Data: payloads.StudioDeletedEvent{
				StudioID:   studio.ID,
				ObjectKeys: objectKeys,
				DeletedBy:  deletedBy,
				DeletedAt:  time.Now().UTC(),
			},
			Version: 1,
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit studio deleted event")
		}
		return nil
	})
}

func (s *service) ListUsers(ctx context.Context, actor tenant.Actor, studioID uuid.UUID) ([]memberships.StudioUserDTO, error) {
	if err := s.guard.Authorize(ctx, actor, studioID, tenant.AccessManager); err != nil {
		return nil, err
	}
	users, err := s.memberships.ListStudioUsers(ctx, studioID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list studio users")
	}
	return users, nil
}

// RemoveUser detaches a member from the studio. Owners are permanent, nobody
// removes themselves, and an admin cannot remove a peer admin.
func (s *service) RemoveUser(ctx context.Context, actor tenant.Actor, studioID, targetUserID uuid.UUID) error {
	if err := s.guard.Authorize(ctx, actor, studioID, tenant.AccessManager); err != nil {
		return err
	}

	target, err := s.memberships.GetMembership(ctx, targetUserID, studioID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
	}

	if target.Role == enums.MemberRoleOwner {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "the studio owner cannot be removed")
	}
	if targetUserID == *actor.UserID {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot remove yourself from the studio")
	}
	if target.Role == enums.MemberRoleAdmin {
		actorMembership, err := s.memberships.GetMembership(ctx, *actor.UserID, studioID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load actor membership")
		}
		if actorMembership.Role != enums.MemberRoleOwner {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only the owner can remove an admin")
		}
	}

	if err := s.memberships.DeleteMembership(ctx, studioID, targetUserID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete membership")
	}
	return nil
}

func (s *service) ListClients(ctx context.Context, actor tenant.Actor, studioID uuid.UUID) ([]clients.StudioClientDTO, error) {
	if err := s.guard.Authorize(ctx, actor, studioID, tenant.AccessManager); err != nil {
		return nil, err
	}
	list, err := s.clients.ListStudioClients(ctx, studioID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list studio clients")
	}
	return list, nil
}

// RemoveClient detaches a client and drops their album grants in one commit.
func (s *service) RemoveClient(ctx context.Context, actor tenant.Actor, studioID, clientUserID uuid.UUID) error {
	if err := s.guard.Authorize(ctx, actor, studioID, tenant.AccessManager); err != nil {
		return err
	}

	client, err := s.clients.GetClient(ctx, clientUserID, studioID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.clients.DeleteGrantsForClientTx(tx, client.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete album grants")
		}
		if err := s.clients.DeleteClientTx(tx, studioID, clientUserID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete client")
		}
		return nil
	})
}

func (s *service) loadStudio(ctx context.Context, studioID uuid.UUID) (*models.Studio, error) {
	studio, err := s.repo.FindByID(ctx, studioID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "studio not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load studio")
	}
	return studio, nil
}
