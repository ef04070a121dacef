package usecase

import (
	"context"
	"sync"
	"time"

	"roadbuddy-backend/internal/notification/repository"
	"roadbuddy-backend/pkg/fcm"
	"roadbuddy-backend/pkg/logger"
	"roadbuddy-backend/pkg/metrics"

	"github.com/codeGROOVE-dev/retry"
	"go.uber.org/zap"
)

// PushSender delivers a notification to device tokens and reports the
// tokens that should be forgotten.
type PushSender interface {
	SendToDevices(ctx context.Context, tokens []string, n fcm.NotificationData) ([]string, error)
}

// PushJob is one push notification for one user
type PushJob struct {
	UserID string
	RideID string
	Title  string
	Body   string
}

// PushWorkerService delivers push notifications in the background
type PushWorkerService struct {
	tokenRepo   repository.DeviceTokenRepository
	sender      PushSender
	jobQueue    chan PushJob
	workerWg    sync.WaitGroup
	workerCount int
	attempts    uint
	retryDelay  time.Duration
	started     bool
	stopped     bool
	mu          sync.Mutex
}

// NewPushWorkerService creates a push worker pool
func NewPushWorkerService(tokenRepo repository.DeviceTokenRepository, sender PushSender, workerCount int) *PushWorkerService {
	if workerCount <= 0 {
		workerCount = 3
	}

	return &PushWorkerService{
		tokenRepo:   tokenRepo,
		sender:      sender,
		jobQueue:    make(chan PushJob, 500),
		workerCount: workerCount,
		attempts:    3,
		retryDelay:  500 * time.Millisecond,
	}
}

// Start starts the workers
func (s *PushWorkerService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}

	for i := 0; i < s.workerCount; i++ {
		s.workerWg.Add(1)
		go s.worker(i)
	}
	s.started = true
	logger.Infof("[PushWorker] Started %d workers", s.workerCount)
}

// Stop drains the queue and waits for the workers
func (s *PushWorkerService) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.jobQueue)
	s.mu.Unlock()

	s.workerWg.Wait()
	logger.Info("[PushWorker] All workers stopped")
}

func (s *PushWorkerService) worker(id int) {
	defer s.workerWg.Done()

	for job := range s.jobQueue {
		s.processJob(job)
	}

	logger.Debugf("[PushWorker] Worker %d stopped", id)
}

func (s *PushWorkerService) processJob(job PushJob) {
	tokens, err := s.tokenRepo.GetTokensByUserID(job.UserID)
	if err != nil {
		logger.Error("[PushWorker] Error getting device tokens", zap.String("user_id", job.UserID), zap.Error(err))
		metrics.RecordPush("error")
		return
	}
	if len(tokens) == 0 {
		metrics.RecordPush("no_device")
		return
	}

	tokenStrings := make([]string, 0, len(tokens))
	for _, t := range tokens {
		tokenStrings = append(tokenStrings, t.Token)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var failedTokens []string
	err = retry.Do(
		func() error {
			var sendErr error
			failedTokens, sendErr = s.sender.SendToDevices(ctx, tokenStrings, fcm.NotificationData{
				Title: job.Title,
				Body:  job.Body,
				Data: map[string]string{
					"type":    "ride_notification",
					"ride_id": job.RideID,
				},
			})
			return sendErr
		},
		retry.Attempts(s.attempts),
		retry.Delay(s.retryDelay),
		retry.MaxDelay(5*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("[PushWorker] Retrying push", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil {
		logger.Error("[PushWorker] Push failed", zap.String("user_id", job.UserID), zap.Error(err))
		metrics.RecordPush("error")
		return
	}
	metrics.RecordPush("sent")

	for _, token := range failedTokens {
		if err := s.tokenRepo.DeleteToken(token); err != nil {
			logger.Warn("[PushWorker] Failed to forget token", zap.Error(err))
		}
	}
}

// QueueJob adds a job without blocking; it reports false when the queue is
// full or the pool is stopped.
func (s *PushWorkerService) QueueJob(job PushJob) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}

	select {
	case s.jobQueue <- job:
		return true
	default:
		return false
	}
}
