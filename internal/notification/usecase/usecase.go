package usecase

import (
	"context"

	"roadbuddy-backend/internal/notification/dto"
)

// NotificationUsecase appends notifications, tracks the unread counter and
// manages push devices.
type NotificationUsecase interface {
	Notify(ctx context.Context, userID, rideID, message string) error
	NotifyMany(ctx context.Context, userIDs []string, rideID, message string) error
	ListAndMarkRead(ctx context.Context, userID string) ([]dto.NotificationResponse, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)

	RegisterDevice(userID, token, deviceInfo string) error
	UnregisterDevice(userID, token string) error
}
