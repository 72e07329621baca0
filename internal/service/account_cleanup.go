package service

import (
	"bitwise74/shop-api/internal/metrics"
	"bitwise74/shop-api/internal/model"
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PurgeUnverified deletes accounts that never verified their email and were
// registered more than olderThan ago. It returns how many were removed.
func PurgeUnverified(ctx context.Context, db *gorm.DB, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)

	var purged int64

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint

		err := tx.Model(&model.User{}).
			Where("is_verified = ? AND created_at < ?", false, cutoff).
			Pluck("id", &ids).
			Error
		if err != nil {
			return err
		}

		if err := DeleteUsers(tx, ids); err != nil {
			return err
		}

		purged = int64(len(ids))
		return nil
	})
	if err != nil {
		return 0, err
	}

	metrics.RecordPurged(purged)
	return purged, nil
}

// NewAccountCleanup schedules PurgeUnverified on the given cron spec. The
// returned scheduler is not started.
func NewAccountCleanup(db *gorm.DB, schedule string, grace time.Duration) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		n, err := PurgeUnverified(context.Background(), db, grace)
		if err != nil {
			zap.L().Error("Failed to purge unverified accounts", zap.Error(err))
			return
		}

		zap.L().Info("Account cleanup finished", zap.Int64("purged", n))
	})
	if err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q, %w", schedule, err)
	}

	zap.L().Debug("Account cleanup attached", zap.String("schedule", schedule), zap.Duration("grace", grace))

	return c, nil
}
