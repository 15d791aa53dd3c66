package store

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/verustcode/verustcode/pkg/logger"
)

// ReliabilitySweepSchedule is the cron schedule for expiring idempotency
// and response-cache rows (hourly, offset from the feedback harvester's
// on-the-hour run).
const ReliabilitySweepSchedule = "30 * * * *"

// ReliabilitySweepService periodically deletes expired idempotency and
// response-cache rows. Row-level TTL checks already treat expired rows
// as absent; the sweep reclaims the storage.
type ReliabilitySweepService struct {
	idempotency IdempotencyStore
	cache       ResponseCacheStore
	cron        *cron.Cron
	mu          sync.RWMutex
}

// NewReliabilitySweepService creates a new reliability sweep service.
func NewReliabilitySweepService(idempotency IdempotencyStore, cache ResponseCacheStore) *ReliabilitySweepService {
	return &ReliabilitySweepService{
		idempotency: idempotency,
		cache:       cache,
		cron:        cron.New(),
	}
}

// Start schedules the sweep and runs one pass immediately.
func (s *ReliabilitySweepService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.cron.AddFunc(ReliabilitySweepSchedule, s.sweep); err != nil {
		logger.Error("Failed to schedule reliability sweep", zap.Error(err))
		return err
	}
	s.cron.Start()

	logger.Info("Reliability sweep service started",
		zap.String("schedule", ReliabilitySweepSchedule),
	)

	go s.sweep()
	return nil
}

// Stop stops the sweep service gracefully.
func (s *ReliabilitySweepService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		logger.Info("Reliability sweep service stopped")
	}
}

// sweep deletes expired rows from both tables. Each table's failure is
// logged independently so one broken table does not shield the other.
func (s *ReliabilitySweepService) sweep() {
	now := time.Now()
	startTime := now

	idempotencyDeleted, err := s.idempotency.DeleteExpired(now)
	if err != nil {
		logger.Error("Failed to sweep expired idempotency rows", zap.Error(err))
	}
	cacheDeleted, err := s.cache.DeleteExpired(now)
	if err != nil {
		logger.Error("Failed to sweep expired response-cache rows", zap.Error(err))
	}

	logger.Info("Reliability sweep completed",
		zap.Int64("idempotency_deleted", idempotencyDeleted),
		zap.Int64("cache_deleted", cacheDeleted),
		zap.Duration("duration", time.Since(startTime)),
	)
}
