package usecase

import (
	"context"
	"fmt"
	"strings"

	"roadbuddy-backend/internal/chat/domain"
	"roadbuddy-backend/internal/chat/dto"
	"roadbuddy-backend/internal/chat/repository"
	"roadbuddy-backend/pkg/apperror"
	"roadbuddy-backend/pkg/clock"
	"roadbuddy-backend/pkg/logger"

	"go.uber.org/zap"
)

type chatUsecase struct {
	chatRepo repository.ChatRepository
	notifier Notifier
	clock    *clock.Clock
}

func NewChatUsecase(chatRepo repository.ChatRepository, notifier Notifier, clk *clock.Clock) ChatUsecase {
	return &chatUsecase{
		chatRepo: chatRepo,
		notifier: notifier,
		clock:    clk,
	}
}

// CreateChat opens the room for a ride with the owner as its only participant.
func (u *chatUsecase) CreateChat(ctx context.Context, chat *domain.RideChat) error {
	chat.Participants = []string{chat.OwnerID}
	if err := u.chatRepo.Create(ctx, chat); err != nil {
		return apperror.NewDependencyError("failed to create ride chat", err)
	}
	return nil
}

func (u *chatUsecase) loadChat(ctx context.Context, rideID string) (*domain.RideChat, error) {
	chat, err := u.chatRepo.FindByRideID(ctx, rideID)
	if err != nil {
		return nil, apperror.NewDependencyError("failed to load ride chat", err)
	}
	if chat == nil {
		return nil, apperror.ErrChatNotFound
	}
	return chat, nil
}

func (u *chatUsecase) AddParticipant(ctx context.Context, rideID, userID string) error {
	chat, err := u.loadChat(ctx, rideID)
	if err != nil {
		return err
	}
	if chat.HasParticipant(userID) {
		return nil
	}
	if err := u.chatRepo.AddParticipant(ctx, rideID, userID); err != nil {
		return apperror.NewDependencyError("failed to add chat participant", err)
	}
	return nil
}

func (u *chatUsecase) RemoveParticipant(ctx context.Context, rideID, userID string) error {
	chat, err := u.loadChat(ctx, rideID)
	if err != nil {
		return err
	}
	if !chat.HasParticipant(userID) {
		return nil
	}
	if err := u.chatRepo.RemoveParticipant(ctx, rideID, userID); err != nil {
		return apperror.NewDependencyError("failed to remove chat participant", err)
	}
	return nil
}

// SendMessage rejects non-participants before writing anything.
func (u *chatUsecase) SendMessage(ctx context.Context, rideID, senderID, senderName, text string) (*dto.MessageResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.NewValidationError("message text is required")
	}

	chat, err := u.loadChat(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(senderID) {
		return nil, apperror.ErrNotAParticipant
	}
	if strings.TrimSpace(senderName) == "" {
		senderName = "A rider"
	}

	msg := &domain.Message{
		SenderID:   senderID,
		SenderName: senderName,
		Text:       text,
		IsOwner:    senderID == chat.OwnerID,
	}
	id, err := u.chatRepo.AppendMessage(ctx, rideID, msg)
	if err != nil {
		return nil, apperror.NewDependencyError("failed to send message", err)
	}
	msg.ID = id
	// The store assigns the timestamp, so read it back.
	stored, err := u.chatRepo.FindMessage(ctx, rideID, id)
	switch {
	case err != nil:
		logger.Warn("[Chat] Could not read back sent message", zap.String("ride_id", rideID), zap.String("message_id", id), zap.Error(err))
		msg.Timestamp = u.clock.Now()
	case stored == nil:
		msg.Timestamp = u.clock.Now()
	default:
		msg = stored
	}

	recipients := make([]string, 0, len(chat.Participants))
	for _, p := range chat.Participants {
		if p != senderID {
			recipients = append(recipients, p)
		}
	}
	notice := fmt.Sprintf("%s has sent a message.\nFrom: %s\nTo: %s", senderName, chat.From, chat.To)
	if err := u.notifier.NotifyMany(ctx, recipients, rideID, notice); err != nil {
		logger.Warn("[Chat] Message sent but notifications failed", zap.String("ride_id", rideID), zap.Error(err))
	}

	resp := u.toMessageResponse(msg)
	return &resp, nil
}

// ListMessages returns messages oldest first. Messages sharing a timestamp
// have no guaranteed order.
func (u *chatUsecase) ListMessages(ctx context.Context, rideID, viewerID string) ([]dto.MessageResponse, error) {
	chat, err := u.loadChat(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if viewerID != "" && !chat.HasParticipant(viewerID) {
		return nil, apperror.ErrNotAParticipant
	}

	messages, err := u.chatRepo.ListMessages(ctx, rideID)
	if err != nil {
		return nil, apperror.NewDependencyError("failed to list messages", err)
	}

	result := make([]dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		result = append(result, u.toMessageResponse(m))
	}
	return result, nil
}

func (u *chatUsecase) ChatExists(ctx context.Context, rideID string) (bool, error) {
	chat, err := u.chatRepo.FindByRideID(ctx, rideID)
	if err != nil {
		return false, apperror.NewDependencyError("failed to load ride chat", err)
	}
	return chat != nil, nil
}

func (u *chatUsecase) ListUserChats(ctx context.Context, userID string) ([]dto.ChatSummary, error) {
	chats, err := u.chatRepo.FindByParticipant(ctx, userID)
	if err != nil {
		return nil, apperror.NewDependencyError("failed to list chats", err)
	}

	result := make([]dto.ChatSummary, 0, len(chats))
	for _, c := range chats {
		summary := dto.ChatSummary{
			RideID:            c.RideID,
			OwnerName:         c.OwnerName,
			From:              c.From,
			To:                c.To,
			Date:              c.Date,
			DepartureTime:     c.DepartureTime,
			IsOwner:           c.OwnerID == userID,
			LastMessage:       c.LastMessage,
			LastMessageSender: c.LastMessageSender,
		}
		if c.LastMessage != "" {
			summary.LastMessageTime = u.clock.Display(c.LastMessageTimestamp)
		}
		result = append(result, summary)
	}
	return result, nil
}

func (u *chatUsecase) Teardown(ctx context.Context, rideID string) error {
	if err := u.chatRepo.Delete(ctx, rideID); err != nil {
		return apperror.NewDependencyError("failed to delete ride chat", err)
	}
	return nil
}

func (u *chatUsecase) toMessageResponse(m *domain.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:          m.ID,
		SenderID:    m.SenderID,
		SenderName:  m.SenderName,
		Text:        m.Text,
		IsOwner:     m.IsOwner,
		Timestamp:   m.Timestamp,
		DisplayTime: u.clock.Display(m.Timestamp),
	}
}
