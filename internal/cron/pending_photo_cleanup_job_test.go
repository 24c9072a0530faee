package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/framewell/framewell-backend/pkg/db/models"
	"github.com/framewell/framewell-backend/pkg/enums"
	"github.com/framewell/framewell-backend/pkg/logger"
	"github.com/framewell/framewell-backend/pkg/outbox"
)

func TestPendingPhotoCleanupJobDeletesAndEmits(t *testing.T) {
	photos := []models.Photo{
		{ID: uuid.New(), StudioID: uuid.New(), AlbumID: uuid.New(), ObjectKey: "studios/s/albums/a/p1/one.jpg", UploadedBy: uuid.New(), Status: enums.PhotoStatusPending},
		{ID: uuid.New(), StudioID: uuid.New(), AlbumID: uuid.New(), ObjectKey: "studios/s/albums/a/p2/two.jpg", UploadedBy: uuid.New(), Status: enums.PhotoStatusPending},
	}
	repo := &fakePendingPhotoRepo{pending: photos}
	emitter := &fakeOutboxEmitter{}
	job := newPendingPhotoCleanupJob(t, repo, emitter)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(repo.deleted) != len(photos) {
		t.Fatalf("expected %d deletions, got %d", len(photos), len(repo.deleted))
	}
	if len(emitter.events) != len(photos) {
		t.Fatalf("expected %d events, got %d", len(photos), len(emitter.events))
	}
	for i, event := range emitter.events {
		if event.EventType != enums.EventPhotoDeleted {
			t.Fatalf("unexpected event type %s", event.EventType)
		}
		if event.AggregateID != photos[i].ID {
			t.Fatalf("event aggregate mismatch")
		}
	}
}

func TestPendingPhotoCleanupJobStopsOnEmitError(t *testing.T) {
	repo := &fakePendingPhotoRepo{pending: []models.Photo{
		{ID: uuid.New(), ObjectKey: "studios/s/albums/a/p/one.jpg", Status: enums.PhotoStatusPending},
	}}
	emitter := &fakeOutboxEmitter{err: errors.New("boom")}
	job := newPendingPhotoCleanupJob(t, repo, emitter)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestPendingPhotoCleanupJobNoCandidates(t *testing.T) {
	repo := &fakePendingPhotoRepo{}
	emitter := &fakeOutboxEmitter{}
	job := newPendingPhotoCleanupJob(t, repo, emitter)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(repo.deleted) != 0 || len(emitter.events) != 0 {
		t.Fatalf("expected no work, got %d deletions and %d events", len(repo.deleted), len(emitter.events))
	}
}

func newPendingPhotoCleanupJob(t *testing.T, repo *fakePendingPhotoRepo, emitter *fakeOutboxEmitter) Job {
	t.Helper()
	job, err := NewPendingPhotoCleanupJob(PendingPhotoCleanupJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
		DB:        cronTestTxRunner{},
		PhotoRepo: repo,
		Outbox:    emitter,
	})
	if err != nil {
		t.Fatalf("NewPendingPhotoCleanupJob: %v", err)
	}
	return job
}

type fakePendingPhotoRepo struct {
	pending []models.Photo
	deleted []uuid.UUID
}

func (f *fakePendingPhotoRepo) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]models.Photo, error) {
	return f.pending, nil
}

func (f *fakePendingPhotoRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeOutboxEmitter struct {
	events []outbox.DomainEvent
	err    error
}

func (f *fakeOutboxEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}
