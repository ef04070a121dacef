package usecase

import (
	"context"
	"errors"
	"strings"

	"roadbuddy-backend/internal/notification/dto"
	"roadbuddy-backend/internal/notification/repository"
	"roadbuddy-backend/pkg/apperror"
	"roadbuddy-backend/pkg/clock"
	"roadbuddy-backend/pkg/logger"

	"go.uber.org/zap"
)

// ErrPushDisabled is returned by device operations when push is not configured.
var ErrPushDisabled = errors.New("push notifications are not configured")

type notificationUsecase struct {
	repo      repository.NotificationRepository
	tokenRepo repository.DeviceTokenRepository
	push      *PushWorkerService
	clock     *clock.Clock
}

// NewNotificationUsecase wires the notification manager. tokenRepo and push
// may be nil, which disables push delivery.
func NewNotificationUsecase(
	repo repository.NotificationRepository,
	tokenRepo repository.DeviceTokenRepository,
	push *PushWorkerService,
	clk *clock.Clock,
) NotificationUsecase {
	return &notificationUsecase{
		repo:      repo,
		tokenRepo: tokenRepo,
		push:      push,
		clock:     clk,
	}
}

func (u *notificationUsecase) Notify(ctx context.Context, userID, rideID, message string) error {
	if err := u.repo.Add(ctx, userID, rideID, message); err != nil {
		return apperror.NewDependencyError("failed to create notification", err)
	}
	u.queuePush(userID, rideID, message)
	return nil
}

func (u *notificationUsecase) NotifyMany(ctx context.Context, userIDs []string, rideID, message string) error {
	if len(userIDs) == 0 {
		return nil
	}
	if err := u.repo.AddMany(ctx, userIDs, rideID, message); err != nil {
		return apperror.NewDependencyError("failed to create notifications", err)
	}
	for _, userID := range userIDs {
		u.queuePush(userID, rideID, message)
	}
	return nil
}

// ListAndMarkRead returns every notification newest first, already marked
// read. New reports which ones were unread before this call.
func (u *notificationUsecase) ListAndMarkRead(ctx context.Context, userID string) ([]dto.NotificationResponse, error) {
	notifications, err := u.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.NewDependencyError("failed to list notifications", err)
	}

	result := make([]dto.NotificationResponse, 0, len(notifications))
	var unread []string
	for _, n := range notifications {
		if !n.Read {
			unread = append(unread, n.ID)
		}
		result = append(result, dto.NotificationResponse{
			ID:        n.ID,
			Message:   n.Message,
			RideID:    n.RideID,
			Read:      true,
			New:       !n.Read,
			CreatedAt: u.clock.Display(n.CreatedAt),
		})
	}

	if err := u.repo.MarkRead(ctx, userID, unread); err != nil {
		return nil, apperror.NewDependencyError("failed to mark notifications read", err)
	}
	return result, nil
}

func (u *notificationUsecase) UnreadCount(ctx context.Context, userID string) (int64, error) {
	count, err := u.repo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, apperror.NewDependencyError("failed to read unread count", err)
	}
	return count, nil
}

func (u *notificationUsecase) RegisterDevice(userID, token, deviceInfo string) error {
	if u.tokenRepo == nil {
		return apperror.NewDependencyError("cannot register device", ErrPushDisabled)
	}
	if err := u.tokenRepo.SaveToken(userID, token, deviceInfo); err != nil {
		return apperror.NewDependencyError("failed to save device token", err)
	}
	return nil
}

func (u *notificationUsecase) UnregisterDevice(userID, token string) error {
	if u.tokenRepo == nil {
		return apperror.NewDependencyError("cannot unregister device", ErrPushDisabled)
	}
	if err := u.tokenRepo.DeleteUserToken(userID, token); err != nil {
		return apperror.NewDependencyError("failed to delete device token", err)
	}
	return nil
}

func (u *notificationUsecase) queuePush(userID, rideID, message string) {
	if u.push == nil {
		return
	}
	title, body := splitMessage(message)
	if !u.push.QueueJob(PushJob{UserID: userID, RideID: rideID, Title: title, Body: body}) {
		logger.Warn("[Notification] Push queue full, dropping push", zap.String("user_id", userID))
	}
}

// splitMessage uses the first line of a notification as the push title.
func splitMessage(message string) (string, string) {
	title, body, found := strings.Cut(message, "\n")
	if !found {
		return "RoadBuddy", message
	}
	return title, body
}
