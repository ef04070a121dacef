package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"roadbuddy-backend/internal/ride/dto"

	"github.com/stretchr/testify/assert"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (s *countingSweeper) SweepExpired(ctx context.Context) (*dto.SweepResult, error) {
	s.calls.Add(1)
	return &dto.SweepResult{}, s.err
}

func TestSchedulerRunsImmediatelyAndOnEveryTick(t *testing.T) {
	sweeper := &countingSweeper{}
	s := NewExpiryScheduler(sweeper, 10*time.Millisecond)
	s.Start()

	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()

	after := sweeper.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, sweeper.calls.Load())
}

func TestSchedulerKeepsRunningAfterFailure(t *testing.T) {
	sweeper := &countingSweeper{err: errors.New("store unavailable")}
	s := NewExpiryScheduler(sweeper, 10*time.Millisecond)
	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestStopIsIdempotent(t *testing.T) {
	s := NewExpiryScheduler(&countingSweeper{}, time.Hour)
	s.Start()
	s.Stop()
	s.Stop()
}

func TestDefaultInterval(t *testing.T) {
	s := NewExpiryScheduler(&countingSweeper{}, 0)
	assert.Equal(t, 5*time.Minute, s.interval)
}
