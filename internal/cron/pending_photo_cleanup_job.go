package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/framewell/framewell-backend/pkg/db/models"
	"github.com/framewell/framewell-backend/pkg/enums"
	"github.com/framewell/framewell-backend/pkg/logger"
	"github.com/framewell/framewell-backend/pkg/outbox"
	"github.com/framewell/framewell-backend/pkg/outbox/payloads"
)

const pendingPhotoRetentionDays = 7

type PendingPhotoCleanupJobParams struct {
	Logger        *logger.Logger
	DB            txRunner
	PhotoRepo     pendingPhotoCleanupRepo
	Outbox        outboxEmitter
	RetentionDays int
}

type pendingPhotoCleanupRepo interface {
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]models.Photo, error)
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// NewPendingPhotoCleanupJob removes photo rows whose upload was presigned but
// never confirmed. A deletion event is emitted for each row so the cleanup
// worker also removes any bytes that landed in the bucket without a confirm.
func NewPendingPhotoCleanupJob(params PendingPhotoCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.PhotoRepo == nil {
		return nil, fmt.Errorf("photo repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	retention := params.RetentionDays
	if retention <= 0 {
		retention = pendingPhotoRetentionDays
	}
	return &pendingPhotoCleanupJob{
		logg:          params.Logger,
		db:            params.DB,
		repo:          params.PhotoRepo,
		outbox:        params.Outbox,
		retentionDays: retention,
		now:           time.Now,
	}, nil
}

type pendingPhotoCleanupJob struct {
	logg          *logger.Logger
	db            txRunner
	repo          pendingPhotoCleanupRepo
	outbox        outboxEmitter
	retentionDays int
	now           func() time.Time
}

func (j *pendingPhotoCleanupJob) Name() string { return "pending-photo-cleanup" }

func (j *pendingPhotoCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retentionDays) * 24 * time.Hour)
	var (
		candidates int
		deleted    int64
	)
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.repo.ListPendingBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("query pending photos: %w", err)
		}
		candidates = len(rows)
		deletedAt := j.now().UTC()
		for _, photo := range rows {
			if err := j.repo.DeleteTx(tx, photo.ID); err != nil {
				return fmt.Errorf("delete photo row: %w", err)
			}
			event := outbox.DomainEvent{
				EventType:     enums.EventPhotoDeleted,
				AggregateType: enums.AggregatePhoto,
				AggregateID:   photo.ID,
				Data: payloads.PhotoDeletedEvent{
					PhotoID:   photo.ID,
					StudioID:  photo.StudioID,
					AlbumID:   photo.AlbumID,
					ObjectKey: photo.ObjectKey,
					DeletedBy: photo.UploadedBy,
					DeletedAt: deletedAt,
				},
				Version: 1,
			}
			if err := j.outbox.Emit(ctx, tx, event); err != nil {
				return fmt.Errorf("emit photo deleted event: %w", err)
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("pending photo cleanup: %w", err)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":           cutoff,
		"retention_days":   j.retentionDays,
		"photo_candidates": candidates,
		"photos_deleted":   deleted,
	})
	j.logg.Info(logCtx, "pending photo cleanup complete")
	return nil
}
