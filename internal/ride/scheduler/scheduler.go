package scheduler

import (
	"context"
	"sync"
	"time"

	"roadbuddy-backend/internal/ride/dto"
	"roadbuddy-backend/pkg/logger"

	"go.uber.org/zap"
)

// Sweeper is the operation the scheduler runs on every tick.
type Sweeper interface {
	SweepExpired(ctx context.Context) (*dto.SweepResult, error)
}

// ExpiryScheduler periodically deletes rides whose date has passed. It runs
// on its own goroutine, independent of request handling.
type ExpiryScheduler struct {
	sweeper  Sweeper
	interval time.Duration
	timeout  time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewExpiryScheduler creates a new scheduler
func NewExpiryScheduler(sweeper Sweeper, interval time.Duration) *ExpiryScheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &ExpiryScheduler{
		sweeper:  sweeper,
		interval: interval,
		timeout:  interval,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *ExpiryScheduler) Start() {
	logger.Info("[Sweep] Starting ride expiry scheduler", zap.Duration("interval", s.interval))

	go func() {
		defer close(s.done)

		// Run immediately on start
		s.runOnce()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runOnce()
			case <-s.stopChan:
				logger.Info("[Sweep] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop halts the loop and waits for an in-flight sweep to return.
func (s *ExpiryScheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	<-s.done
}

func (s *ExpiryScheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	// a stop request aborts the remaining items of the current sweep
	go func() {
		select {
		case <-s.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	if _, err := s.sweeper.SweepExpired(ctx); err != nil {
		logger.Error("[Sweep] Sweep failed", zap.Error(err))
	}
}
