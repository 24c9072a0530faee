package albums

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/framewell/framewell-backend/internal/tenant"
	dbpkg "github.com/framewell/framewell-backend/pkg/db"
	"github.com/framewell/framewell-backend/pkg/db/models"
	"github.com/framewell/framewell-backend/pkg/enums"
	pkgerrors "github.com/framewell/framewell-backend/pkg/errors"
	"github.com/framewell/framewell-backend/pkg/outbox"
	"github.com/framewell/framewell-backend/pkg/outbox/payloads"
	"github.com/framewell/framewell-backend/pkg/pagination"
)

const grantConstraint = "ux_album_client_grants_album_client"

type albumRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Album, error)
	Create(ctx context.Context, album *models.Album) error
	Update(ctx context.Context, album *models.Album) error
	GetAlbumPhoto(ctx context.Context, albumID, photoID uuid.UUID) (*models.Photo, error)
	List(ctx context.Context, query listQuery) ([]models.Album, error)
	ListGrantedToUser(ctx context.Context, userID uuid.UUID) ([]models.Album, error)
	ListAlbumPhotosTx(tx *gorm.DB, albumID uuid.UUID) ([]models.Photo, error)
	DeleteCascadeTx(tx *gorm.DB, albumID uuid.UUID) error
}

type clientsRepository interface {
	GetClient(ctx context.Context, userID, studioID uuid.UUID) (*models.StudioClient, error)
	CreateGrant(ctx context.Context, albumID, studioClientID, grantedBy uuid.UUID) (*models.AlbumClientGrant, error)
	DeleteGrant(ctx context.Context, albumID, studioClientID uuid.UUID) error
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

// Service exposes album operations.
type Service interface {
	Get(ctx context.Context, actor tenant.Actor, albumID uuid.UUID) (*AlbumDTO, error)
	Create(ctx context.Context, actor tenant.Actor, input CreateAlbumInput) (*AlbumDTO, error)
	Update(ctx context.Context, actor tenant.Actor, albumID uuid.UUID, input UpdateAlbumInput) (*AlbumDTO, error)
	Delete(ctx context.Context, actor tenant.Actor, albumID uuid.UUID) error
	List(ctx context.Context, actor tenant.Actor, params ListParams) (*ListResult, error)
	ListSharedWithMe(ctx context.Context, userID uuid.UUID) ([]AlbumDTO, error)
	ShareWithClient(ctx context.Context, actor tenant.Actor, albumID, clientUserID uuid.UUID) error
	UnshareWithClient(ctx context.Context, actor tenant.Actor, albumID, clientUserID uuid.UUID) error
}

type service struct {
	repo    albumRepository
	clients clientsRepository
	guard   authorizer
	tx      txRunner
	outbox  outboxEmitter
}

// ServiceParams wires the album service dependencies.
type ServiceParams struct {
	Repo    albumRepository
	Clients clientsRepository
	Guard   authorizer
	Tx      txRunner
	Outbox  outboxEmitter
}

// NewService builds an album service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("album repository required")
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
		repo:    params.Repo,
		clients: params.Clients,
		guard:   params.Guard,
		tx:      params.Tx,
		outbox:  params.Outbox,
	}, nil
}

func (s *service) Get(ctx context.Context, actor tenant.Actor, albumID uuid.UUID) (*AlbumDTO, error) {
	album, err := s.loadAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(ctx, actor, album.StudioID, tenant.AccessMember); err != nil {
		return nil, err
	}
	return FromModel(album), nil
}

// Create opens an album in the actor's active studio. Any member may create.
func (s *service) Create(ctx context.Context, actor tenant.Actor, input CreateAlbumInput) (*AlbumDTO, error) {
	if actor.ActiveStudioID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}
	if err := s.guard.Authorize(ctx, actor, *actor.ActiveStudioID, tenant.AccessMember); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "album name is required")
	}

	album := &models.Album{
		StudioID:    *actor.ActiveStudioID,
		Name:        name,
		Description: cloneStringPtr(input.Description),
		CreatedByID: *actor.UserID,
	}
	if len(input.Tags) > 0 {
		album.Tags = append(album.Tags, input.Tags...)
	}

	if err := s.repo.Create(ctx, album); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create album")
	}
	return FromModel(album), nil
}

func (s *service) Update(ctx context.Context, actor tenant.Actor, albumID uuid.UUID, input UpdateAlbumInput) (*AlbumDTO, error) {
	album, err := s.loadAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(ctx, actor, album.StudioID, tenant.AccessMember); err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "album name is required")
		}
		album.Name = name
	}
	if input.Description != nil {
		album.Description = cloneStringPtr(input.Description)
	}
	if input.Tags != nil {
		album.Tags = append(album.Tags[:0], *input.Tags...)
	}
	if input.CoverPhotoID != nil {
		if _, err := s.repo.GetAlbumPhoto(ctx, album.ID, *input.CoverPhotoID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "cover photo must belong to the album")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cover photo")
		}
		id := *input.CoverPhotoID
		album.CoverPhotoID = &id
	}

	if err := s.repo.Update(ctx, album); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update album")
	}
	return FromModel(album), nil
}

// Delete removes the album with its photos and grants. Manager only. One
// cleanup event per photo keeps the worker's deletes idempotent and
// per-object.
func (s *service) Delete(ctx context.Context, actor tenant.Actor, albumID uuid.UUID) error {
	album, err := s.loadAlbum(ctx, albumID)
	if err != nil {
		return err
	}
	if err := s.guard.Authorize(ctx, actor, album.StudioID, tenant.AccessManager); err != nil {
		return err
	}

	deletedBy := *actor.UserID
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		photos, err := s.repo.ListAlbumPhotosTx(tx, album.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list album photos")
		}
		if err := s.repo.DeleteCascadeTx(tx, album.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete album")
		}
		deletedAt := time.Now().UTC()
		for _, photo := range photos {
			event := outbox.DomainEvent{
				EventType:     enums.EventPhotoDeleted,
				AggregateType: enums.AggregatePhoto,
				AggregateID:   photo.ID,
				Actor:         &outbox.ActorRef{UserID: deletedBy, StudioID: &album.StudioID},
				Data: payloads.PhotoDeletedEvent{
					PhotoID:   photo.ID,
					StudioID:  photo.StudioID,
					AlbumID:   photo.AlbumID,
					ObjectKey: photo.ObjectKey,
					DeletedBy: deletedBy,
					DeletedAt: deletedAt,
				},
				Version: 1,
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit photo deleted event")
			}
		}
		return nil
	})
}

// List pages the active studio's albums. Sort fields are enumerated and
// unknown fields fail loudly instead of being skipped.
func (s *service) List(ctx context.Context, actor tenant.Actor, params ListParams) (*ListResult, error) {
	if actor.ActiveStudioID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient permissions")
	}
	if err := s.guard.Authorize(ctx, actor, *actor.ActiveStudioID, tenant.AccessMember); err != nil {
		return nil, err
	}

	sort := params.Sort
	if sort == "" {
		sort = enums.AlbumSortCreatedAt
	}
	if !sort.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown sort field %q", params.Sort))
	}

	limit := pagination.NormalizeLimit(params.Limit)
	query := listQuery{
		studioID: *actor.ActiveStudioID,
		sort:     sort,
		desc:     params.Desc,
		limit:    limit + 1,
	}
	if params.Cursor != "" {
		if sort != enums.AlbumSortCreatedAt {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cursor pagination requires created_at ordering")
		}
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list albums")
	}

	nextCursor := ""
	if len(rows) > limit {
		next := rows[limit]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID})
		rows = rows[:limit]
	}

	items := make([]AlbumDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return &ListResult{Items: items, Cursor: nextCursor}, nil
}

// ListSharedWithMe returns the albums granted to the user as a client. No
// guard: the grants join is the authorization.
func (s *service) ListSharedWithMe(ctx context.Context, userID uuid.UUID) ([]AlbumDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	rows, err := s.repo.ListGrantedToUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list granted albums")
	}
	items := make([]AlbumDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return items, nil
}

// ShareWithClient grants a studio client access to the album.
func (s *service) ShareWithClient(ctx context.Context, actor tenant.Actor, albumID, clientUserID uuid.UUID) error {
	album, err := s.loadAlbum(ctx, albumID)
	if err != nil {
		return err
	}
	if err := s.guard.Authorize(ctx, actor, album.StudioID, tenant.AccessManager); err != nil {
		return err
	}

	client, err := s.clients.GetClient(ctx, clientUserID, album.StudioID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
	}

	if _, err := s.clients.CreateGrant(ctx, album.ID, client.ID, *actor.UserID); err != nil {
		if dbpkg.IsUniqueViolation(err, grantConstraint) {
			return pkgerrors.New(pkgerrors.CodeConflict, "album already shared with this client")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create grant")
	}
	return nil
}

// UnshareWithClient withdraws the client's access to the album.
func (s *service) UnshareWithClient(ctx context.Context, actor tenant.Actor, albumID, clientUserID uuid.UUID) error {
	album, err := s.loadAlbum(ctx, albumID)
	if err != nil {
		return err
	}
	if err := s.guard.Authorize(ctx, actor, album.StudioID, tenant.AccessManager); err != nil {
		return err
	}

	client, err := s.clients.GetClient(ctx, clientUserID, album.StudioID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
	}

	if err := s.clients.DeleteGrant(ctx, album.ID, client.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete grant")
	}
	return nil
}

func (s *service) loadAlbum(ctx context.Context, albumID uuid.UUID) (*models.Album, error) {
	album, err := s.repo.FindByID(ctx, albumID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "album not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load album")
	}
	return album, nil
}
