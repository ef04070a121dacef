package usecase

import (
	"context"
	"fmt"

	"roadbuddy-backend/internal/event"
	"roadbuddy-backend/internal/ride/domain"
	"roadbuddy-backend/internal/ride/dto"
	"roadbuddy-backend/pkg/apperror"
	"roadbuddy-backend/pkg/logger"
	"roadbuddy-backend/pkg/metrics"

	"go.uber.org/zap"
)

// SweepExpired deletes every ride dated before today in the service
// timezone. A ride that fails is logged and left for the next run.
func (u *rideUsecase) SweepExpired(ctx context.Context) (*dto.SweepResult, error) {
	today := u.clock.Today()
	rides, err := u.rideRepo.FindBefore(ctx, today)
	if err != nil {
		return nil, apperror.NewDependencyError("failed to list expired rides", err)
	}

	result := &dto.SweepResult{}
	for _, ride := range rides {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := u.expire(ctx, ride); err != nil {
			result.Failed++
			metrics.RecordSweep("failed")
			logger.Error("[Sweep] Failed to expire ride",
				zap.String("ride_id", ride.ID),
				zap.String("date", ride.Date),
				zap.Error(err),
			)
			continue
		}
		result.Expired++
		metrics.RecordSweep("expired")
	}

	if len(rides) > 0 {
		logger.Info("[Sweep] Expiry sweep finished",
			zap.String("today", today),
			zap.Int("expired", result.Expired),
			zap.Int("failed", result.Failed),
		)
	}
	return result, nil
}

func (u *rideUsecase) expire(ctx context.Context, ride *domain.Ride) error {
	if err := u.members.dropPosted(ctx, ride.OwnerID, ride.ID); err != nil {
		return fmt.Errorf("detach from owner %s: %w", ride.OwnerID, err)
	}
	for _, passenger := range ride.CurrentPassengers {
		if err := u.members.dropJoined(ctx, passenger, ride.ID); err != nil {
			return fmt.Errorf("detach passenger %s: %w", passenger, err)
		}
	}
	// The chat goes first: a ride left behind is found again by the next
	// sweep, a chat without its ride is not.
	if err := u.chats.Teardown(ctx, ride.ID); err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	if err := u.rideRepo.Delete(ctx, ride.ID); err != nil {
		return fmt.Errorf("delete ride: %w", err)
	}

	u.emit(ctx, event.RideEvent{Type: event.RideExpired, RideID: ride.ID, OwnerID: ride.OwnerID, Passengers: ride.CurrentPassengers})
	return nil
}
