package usecase

import (
	"context"

	"roadbuddy-backend/internal/chat/domain"
	"roadbuddy-backend/internal/chat/dto"
)

// ChatUsecase manages ride-scoped chat rooms.
type ChatUsecase interface {
	CreateChat(ctx context.Context, chat *domain.RideChat) error
	AddParticipant(ctx context.Context, rideID, userID string) error
	RemoveParticipant(ctx context.Context, rideID, userID string) error
	SendMessage(ctx context.Context, rideID, senderID, senderName, text string) (*dto.MessageResponse, error)
	ListMessages(ctx context.Context, rideID, viewerID string) ([]dto.MessageResponse, error)
	ChatExists(ctx context.Context, rideID string) (bool, error)
	ListUserChats(ctx context.Context, userID string) ([]dto.ChatSummary, error)
	Teardown(ctx context.Context, rideID string) error
}

// Notifier fans a message out to chat participants.
type Notifier interface {
	NotifyMany(ctx context.Context, userIDs []string, rideID, message string) error
}
