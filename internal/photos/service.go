package photos

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/framewell/framewell-backend/internal/tenant"
	"github.com/framewell/framewell-backend/pkg/config"
	"github.com/framewell/framewell-backend/pkg/db/models"
	"github.com/framewell/framewell-backend/pkg/enums"
	pkgerrors "github.com/framewell/framewell-backend/pkg/errors"
	"github.com/framewell/framewell-backend/pkg/outbox"
	"github.com/framewell/framewell-backend/pkg/outbox/payloads"
	"github.com/framewell/framewell-backend/pkg/pagination"
)

var allowedContentTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"image/tiff",
	"image/heic",
}

type photoRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Photo, error)
	Create(ctx context.Context, photo *models.Photo) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	MarkUploaded(ctx context.Context, id uuid.UUID, at time.Time) error
	List(ctx context.Context, query listQuery) ([]models.Photo, error)
}

type albumsRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Album, error)
}

type clientsRepository interface {
	GetClient(ctx context.Context, userID, studioID uuid.UUID) (*models.StudioClient, error)
	HasGrant(ctx context.Context, albumID, studioClientID uuid.UUID) (bool, error)
}

type objectSigner interface {
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
	SignedReadURL(bucket, object string, expires time.Duration) (string, error)
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

// Service exposes photo upload, listing, and deletion semantics.
type Service interface {
	PresignUpload(ctx context.Context, actor tenant.Actor, input PresignInput) (*PresignOutput, error)
	ConfirmUpload(ctx context.Context, actor tenant.Actor, photoID uuid.UUID) (*PhotoDTO, error)
	Delete(ctx context.Context, actor tenant.Actor, photoID uuid.UUID) error
	List(ctx context.Context, actor tenant.Actor, albumID uuid.UUID, params ListParams) (*ListResult, error)
	ListForClient(ctx context.Context, userID, albumID uuid.UUID, params ListParams) (*ListResult, error)
}

type service struct {
	repo        photoRepository
	albums      albumsRepository
	clients     clientsRepository
	gcs         objectSigner
	guard       authorizer
	tx          txRunner
	outbox      outboxEmitter
	bucket      string
	uploadTTL   time.Duration
	downloadTTL time.Duration
	maxBytes    int64
}

// ServiceParams wires the photo service dependencies.
type ServiceParams struct {
	Repo    photoRepository
	Albums  albumsRepository
	Clients clientsRepository
	GCS     objectSigner
	Guard   authorizer
	Tx      txRunner
	Outbox  outboxEmitter
	GCSCfg  config.GCSConfig
	Photos  config.PhotosConfig
}

// NewService builds a photo service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("photo repository required")
	}
	if params.Albums == nil {
		return nil, fmt.Errorf("albums repository required")
	}
	if params.Clients == nil {
		return nil, fmt.Errorf("clients repository required")
	}
	if params.GCS == nil {
		return nil, fmt.Errorf("gcs client required")
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
	if params.GCSCfg.BucketName == "" {
		return nil, fmt.Errorf("gcs bucket required")
	}
	if params.GCSCfg.UploadURLExpiry <= 0 || params.GCSCfg.DownloadURLExpiry <= 0 {
		return nil, fmt.Errorf("signed url expiries must be positive")
	}
	maxMB := params.Photos.MaxUploadMB
	if maxMB <= 0 {
		maxMB = 200
	}
	return &service{
		repo:        params.Repo,
		albums:      params.Albums,
		clients:     params.Clients,
		gcs:         params.GCS,
		guard:       params.Guard,
		tx:          params.Tx,
		outbox:      params.Outbox,
		bucket:      params.GCSCfg.BucketName,
		uploadTTL:   params.GCSCfg.UploadURLExpiry,
		downloadTTL: params.GCSCfg.DownloadURLExpiry,
		maxBytes:    int64(maxMB) * 1024 * 1024,
	}, nil
}

// PresignUpload records a pending photo row and returns a signed PUT URL for
// the bytes. The row is removed again when signing fails so no orphan
// pendings accumulate.
func (s *service) PresignUpload(ctx context.Context, actor tenant.Actor, input PresignInput) (*PresignOutput, error) {
	album, err := s.loadAlbum(ctx, input.AlbumID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(ctx, actor, album.StudioID, tenant.AccessMember); err != nil {
		return nil, err
	}

	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file_name is required")
	}
	if input.SizeBytes <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size_bytes must be positive")
	}
	if input.SizeBytes > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("size_bytes must be at most %d", s.maxBytes))
	}
	contentType := strings.ToLower(strings.TrimSpace(input.ContentType))
	if !isAllowedContentType(contentType) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content_type not allowed")
	}

	photoID := uuid.New()
	objectKey := buildObjectKey(album.StudioID, album.ID, photoID, fileName)

	photo := &models.Photo{
		ID:          photoID,
		StudioID:    album.StudioID,
		AlbumID:     album.ID,
		ObjectKey:   objectKey,
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   input.SizeBytes,
		Status:      enums.PhotoStatusPending,
		UploadedBy:  *actor.UserID,
	}
	if err := s.repo.Create(ctx, photo); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist photo row")
	}

	expiresAt := time.Now().Add(s.uploadTTL)
	signedURL, err := s.gcs.SignedURL(s.bucket, objectKey, contentType, s.uploadTTL)
	if err != nil {
		_ = s.repo.Delete(ctx, photoID)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
	}

	return &PresignOutput{
		PhotoID:      photoID,
		ObjectKey:    objectKey,
		SignedPUTURL: signedURL,
		ContentType:  contentType,
		ExpiresAt:    expiresAt,
	}, nil
}

// ConfirmUpload marks the pending row uploaded once the client finished the
// PUT. Confirming an already-uploaded photo is a no-op.
func (s *service) ConfirmUpload(ctx context.Context, actor tenant.Actor, photoID uuid.UUID) (*PhotoDTO, error) {
	photo, err := s.loadPhoto(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(ctx, actor, photo.StudioID, tenant.AccessMember); err != nil {
		return nil, err
	}

	if photo.Status == enums.PhotoStatusPending {
		now := time.Now().UTC()
		if err := s.repo.MarkUploaded(ctx, photo.ID, now); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark photo uploaded")
		}
		photo.Status = enums.PhotoStatusUploaded
		photo.UploadedAt = &now
	}
	return FromModel(photo), nil
}

// Delete removes the photo row and queues the object cleanup. The row delete
// and the event commit together; the object removal is best-effort work for
// the worker.
func (s *service) Delete(ctx context.Context, actor tenant.Actor, photoID uuid.UUID) error {
	photo, err := s.loadPhoto(ctx, photoID)
	if err != nil {
		return err
	}
	if err := s.guard.Authorize(ctx, actor, photo.StudioID, tenant.AccessMember); err != nil {
		return err
	}

	deletedBy := *actor.UserID
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.DeleteTx(tx, photo.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete photo")
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventPhotoDeleted,
			AggregateType: enums.AggregatePhoto,
			AggregateID:   photo.ID,
			Actor:         &outbox.ActorRef{UserID: deletedBy, StudioID: &photo.StudioID},
			Data: payloads.PhotoDeletedEvent{
				PhotoID:   photo.ID,
				StudioID:  photo.StudioID,
				AlbumID:   photo.AlbumID,
				ObjectKey: photo.ObjectKey,
				DeletedBy: deletedBy,
				DeletedAt: time.Now().UTC(),
			},
			Version: 1,
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit photo deleted event")
		}
		return nil
	})
}

// List pages an album's photos for studio members, signing read URLs for
// uploaded items.
func (s *service) List(ctx context.Context, actor tenant.Actor, albumID uuid.UUID, params ListParams) (*ListResult, error) {
	album, err := s.loadAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(ctx, actor, album.StudioID, tenant.AccessMember); err != nil {
		return nil, err
	}
	return s.list(ctx, album.ID, params, false)
}

// ListForClient pages an album's photos for a studio client holding a grant.
// A client without the grant learns nothing beyond "not found".
func (s *service) ListForClient(ctx context.Context, userID, albumID uuid.UUID, params ListParams) (*ListResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	album, err := s.loadAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}

	client, err := s.clients.GetClient(ctx, userID, album.StudioID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "album not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
	}
	granted, err := s.clients.HasGrant(ctx, album.ID, client.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check grant")
	}
	if !granted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "album not found")
	}

	return s.list(ctx, album.ID, params, true)
}

func (s *service) list(ctx context.Context, albumID uuid.UUID, params ListParams, uploadedOnly bool) (*ListResult, error) {
	sort := params.Sort
	if sort == "" {
		sort = enums.PhotoSortCreatedAt
	}
	if !sort.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown sort field %q", params.Sort))
	}

	limit := pagination.NormalizeLimit(params.Limit)
	query := listQuery{
		albumID:      albumID,
		sort:         sort,
		desc:         params.Desc,
		limit:        limit + 1,
		uploadedOnly: uploadedOnly,
	}
	if params.Cursor != "" {
		if sort != enums.PhotoSortCreatedAt {
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list photos")
	}

	nextCursor := ""
	if len(rows) > limit {
		next := rows[limit]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID})
		rows = rows[:limit]
	}

	items := make([]PhotoDTO, 0, len(rows))
	for i := range rows {
		item := *FromModel(&rows[i])
		if rows[i].Status == enums.PhotoStatusUploaded {
			url, err := s.gcs.SignedReadURL(s.bucket, rows[i].ObjectKey, s.downloadTTL)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "generate signed read url")
			}
			item.SignedURL = url
		}
		items = append(items, item)
	}
	return &ListResult{Items: items, Cursor: nextCursor}, nil
}

func (s *service) loadAlbum(ctx context.Context, albumID uuid.UUID) (*models.Album, error) {
	album, err := s.albums.FindByID(ctx, albumID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "album not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load album")
	}
	return album, nil
}

func (s *service) loadPhoto(ctx context.Context, photoID uuid.UUID) (*models.Photo, error) {
	photo, err := s.repo.FindByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "photo not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load photo")
	}
	return photo, nil
}

func isAllowedContentType(contentType string) bool {
	for _, candidate := range allowedContentTypes {
		if candidate == contentType {
			return true
		}
	}
	return false
}

func buildObjectKey(studioID, albumID, photoID uuid.UUID, fileName string) string {
	cleanName := sanitizeFileName(fileName)
	if cleanName == "" {
		cleanName = photoID.String()
	}
	return fmt.Sprintf("studios/%s/albums/%s/%s/%s", studioID, albumID, photoID, cleanName)
}

func sanitizeFileName(name string) string {
	clean := path.Base(strings.TrimSpace(name))
	if clean == "." || clean == "/" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case r == '/' || r == '\\' || unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_.")
}
