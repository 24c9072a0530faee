package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/framewell/framewell-backend/pkg/logger"
)

const invitationRetentionDays = 30

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type InvitationRetentionJobParams struct {
	Logger        *logger.Logger
	DB            txRunner
	Repository    invitationRetentionRepo
	RetentionDays int
}

type invitationRetentionRepo interface {
	DeleteExpiredBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

// NewInvitationRetentionJob sweeps pending invitations that expired long
// enough ago that no one can redeem them. Expiry itself stays a read-time
// check; this keeps the table from accumulating dead rows.
func NewInvitationRetentionJob(params InvitationRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("invitation repository required")
	}
	retention := params.RetentionDays
	if retention <= 0 {
		retention = invitationRetentionDays
	}
	return &invitationRetentionJob{
		logg:      params.Logger,
		db:        params.DB,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

type invitationRetentionJob struct {
	logg      *logger.Logger
	db        txRunner
	repo      invitationRetentionRepo
	retention int
	now       func() time.Time
}

func (j *invitationRetentionJob) Name() string { return "invitation-retention" }

func (j *invitationRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.repo.DeleteExpiredBefore(ctx, tx, cutoff)
		if err != nil {
			return err
		}
		deleted = rows
		return nil
	})
	if err != nil {
		return fmt.Errorf("invitation retention: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "invitation retention cleanup complete")
	return nil
}
