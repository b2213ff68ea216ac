package workers

import (
	"context"
	"time"

	"gigwork_backend/internal/logger"
	"gigwork_backend/internal/repositories"
)

// GigWorker runs the background maintenance loops: closing expired gigs and
// purging notifications past the retention window.
type GigWorker struct {
	gigRepo          repositories.GigRepository
	notificationRepo repositories.NotificationRepository
	retention        time.Duration
}

func NewGigWorker(gigRepo repositories.GigRepository, notificationRepo repositories.NotificationRepository, retentionDays int) *GigWorker {
	return &GigWorker{
		gigRepo:          gigRepo,
		notificationRepo: notificationRepo,
		retention:        time.Duration(retentionDays) * 24 * time.Hour,
	}
}

func (w *GigWorker) Start(ctx context.Context) {
	go w.autoCloseExpiredGigs(ctx)
	go w.purgeOldNotifications(ctx)
}

func (w *GigWorker) autoCloseExpiredGigs(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Gig auto-close worker stopped")
			return
		case <-ticker.C:
			closed, err := w.gigRepo.CloseExpired(ctx, time.Now())
			if err != nil {
				logger.WorkerLog("gig", "auto_close_expired", err)
			} else if closed > 0 {
				logger.Info("Auto-closed expired gigs", "count", closed)
			}
		}
	}
}

func (w *GigWorker) purgeOldNotifications(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification purge worker stopped")
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-w.retention)
			deleted, err := w.notificationRepo.DeleteOlderThan(ctx, cutoff)
			if err != nil {
				logger.WorkerLog("notifications", "purge_old", err)
			} else if deleted > 0 {
				logger.Info("Purged old notifications", "count", deleted)
			}
		}
	}
}
