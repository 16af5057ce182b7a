package service

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SyncScheduler runs a periodic background sync over every linked user.
// Per-user failures are logged and skipped so one broken item cannot stall
// the rest; retries are just the next scheduled run, which is safe because
// every sync mutation is idempotent.
type SyncScheduler struct {
	userStore   UserStore
	syncService *SyncService
	timeout     time.Duration
	logger      *zap.Logger
	cron        *cron.Cron
}

func NewSyncScheduler(userStore UserStore, syncService *SyncService, timeout time.Duration, logger *zap.Logger) *SyncScheduler {
	return &SyncScheduler{
		userStore:   userStore,
		syncService: syncService,
		timeout:     timeout,
		logger:      logger,
		cron:        cron.New(),
	}
}

// Start registers the job under the given cron spec and starts the scheduler.
func (s *SyncScheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("Background sync scheduler started", zap.String("schedule", spec))
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *SyncScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *SyncScheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	users, err := s.userStore.ListBankConnected(ctx)
	if err != nil {
		s.logger.Error("Scheduled sync: listing linked users failed", zap.Error(err))
		return
	}

	for _, user := range users {
		result, err := s.syncService.Sync(ctx, user.ID)
		if err != nil {
			if errors.Is(err, ErrNotLinked) {
				continue
			}
			s.logger.Warn("Scheduled sync failed for user",
				zap.String("user_id", user.ID.String()),
				zap.Error(err))
			continue
		}
		if result.Added+result.Modified+result.Removed > 0 {
			s.logger.Info("Scheduled sync applied changes",
				zap.String("user_id", user.ID.String()),
				zap.Int("added", result.Added),
				zap.Int("modified", result.Modified),
				zap.Int("removed", result.Removed))
		}
	}
}
