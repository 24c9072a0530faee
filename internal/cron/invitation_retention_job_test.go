package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/framewell/framewell-backend/pkg/logger"
)

func TestInvitationRetentionJobDeletesExpiredRows(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	repo := &fakeInvitationRetentionRepo{}
	job := newInvitationRetentionJob(t, repo)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	expectedCutoff := now.UTC().Add(-invitationRetentionDays * 24 * time.Hour)
	if !repo.lastCutoff.Equal(expectedCutoff) {
		t.Fatalf("expected cutoff %s, got %s", expectedCutoff, repo.lastCutoff)
	}
	if repo.called != 1 {
		t.Fatalf("expected repo called once, got %d", repo.called)
	}
}

func TestInvitationRetentionJobPropagatesError(t *testing.T) {
	repo := &fakeInvitationRetentionRepo{err: errors.New("boom")}
	job := newInvitationRetentionJob(t, repo)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func newInvitationRetentionJob(t *testing.T, repo *fakeInvitationRetentionRepo) *invitationRetentionJob {
	t.Helper()
	jobIface, err := NewInvitationRetentionJob(InvitationRetentionJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		DB:         cronTestTxRunner{},
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("NewInvitationRetentionJob: %v", err)
	}
	job, ok := jobIface.(*invitationRetentionJob)
	if !ok {
		t.Fatalf("expected invitationRetentionJob, got %T", jobIface)
	}
	return job
}

type fakeInvitationRetentionRepo struct {
	lastCutoff time.Time
	called     int
	err        error
}

func (f *fakeInvitationRetentionRepo) DeleteExpiredBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	f.called++
	f.lastCutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return 3, nil
}

type cronTestTxRunner struct{}

func (cronTestTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}
