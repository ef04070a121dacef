package event

import (
	"context"

	"roadbuddy-backend/pkg/logger"

	"go.uber.org/zap"
)

type logPublisher struct{}

// NewLogPublisher returns a Publisher that only logs. Used when no Google
// project is configured.
func NewLogPublisher() Publisher {
	return logPublisher{}
}

func (logPublisher) Publish(_ context.Context, e RideEvent) {
	logger.Debug("[Event] Ride event",
		zap.String("type", string(e.Type)),
		zap.String("ride_id", e.RideID),
		zap.String("user_id", e.UserID),
	)
}

func (logPublisher) Close() error { return nil }
