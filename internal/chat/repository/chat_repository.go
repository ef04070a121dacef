package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"roadbuddy-backend/internal/chat/domain"
	"roadbuddy-backend/pkg/docstore"
)

const chatsCollection = "ride_chats"

// ChatRepository stores ride chats and their messages.
type ChatRepository interface {
	Create(ctx context.Context, chat *domain.RideChat) error
	// FindByRideID returns nil, nil when the chat does not exist.
	FindByRideID(ctx context.Context, rideID string) (*domain.RideChat, error)
	// FindByParticipant returns the user's chats, most recent activity first.
	FindByParticipant(ctx context.Context, userID string) ([]*domain.RideChat, error)
	AddParticipant(ctx context.Context, rideID, userID string) error
	RemoveParticipant(ctx context.Context, rideID, userID string) error
	// AppendMessage writes the message and the chat preview in one commit.
	AppendMessage(ctx context.Context, rideID string, msg *domain.Message) (string, error)
	// FindMessage returns nil, nil when the message does not exist.
	FindMessage(ctx context.Context, rideID, messageID string) (*domain.Message, error)
	ListMessages(ctx context.Context, rideID string) ([]*domain.Message, error)
	// Delete removes the messages, then the chat.
	Delete(ctx context.Context, rideID string) error
}

type chatRepository struct {
	store docstore.Store
}

func NewChatRepository(store docstore.Store) ChatRepository {
	return &chatRepository{store: store}
}

func messagesPath(rideID string) string {
	return docstore.Path(chatsCollection, rideID, "messages")
}

func (r *chatRepository) Create(ctx context.Context, chat *domain.RideChat) error {
	return r.store.Set(ctx, chatsCollection, chat.RideID, chat)
}

func (r *chatRepository) FindByRideID(ctx context.Context, rideID string) (*domain.RideChat, error) {
	doc, err := r.store.Get(ctx, chatsCollection, rideID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return decodeChat(doc)
}

func (r *chatRepository) FindByParticipant(ctx context.Context, userID string) ([]*domain.RideChat, error) {
	docs, err := r.store.Query(ctx, docstore.Collection(chatsCollection).Where("participants", "array-contains", userID))
	if err != nil {
		return nil, err
	}

	chats := make([]*domain.RideChat, 0, len(docs))
	for _, doc := range docs {
		chat, err := decodeChat(doc)
		if err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	// Sorted here rather than in the query to avoid a composite index.
	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].LastMessageTimestamp.After(chats[j].LastMessageTimestamp)
	})
	return chats, nil
}

func (r *chatRepository) AddParticipant(ctx context.Context, rideID, userID string) error {
	return r.store.Update(ctx, chatsCollection, rideID, docstore.Update{Path: "participants", Value: docstore.ArrayUnion(userID)})
}

func (r *chatRepository) RemoveParticipant(ctx context.Context, rideID, userID string) error {
	return r.store.Update(ctx, chatsCollection, rideID, docstore.Update{Path: "participants", Value: docstore.ArrayRemove(userID)})
}

func (r *chatRepository) AppendMessage(ctx context.Context, rideID string, msg *domain.Message) (string, error) {
	coll := messagesPath(rideID)
	id := r.store.NewID(coll)

	err := r.store.Commit(ctx,
		docstore.SetOp(coll, id, map[string]any{
			"senderId":   msg.SenderID,
			"senderName": msg.SenderName,
			"text":       msg.Text,
			"timestamp":  docstore.ServerTimestamp,
			"isOwner":    msg.IsOwner,
		}),
		docstore.UpdateOp(chatsCollection, rideID,
			docstore.Update{Path: "lastMessage", Value: msg.Text},
			docstore.Update{Path: "lastMessageSender", Value: msg.SenderName},
			docstore.Update{Path: "lastMessageTimestamp", Value: docstore.ServerTimestamp},
		),
	)
	if err != nil {
		return "", fmt.Errorf("append message to %s: %w", rideID, err)
	}
	return id, nil
}

func (r *chatRepository) ListMessages(ctx context.Context, rideID string) ([]*domain.Message, error) {
	docs, err := r.store.Query(ctx, docstore.Collection(messagesPath(rideID)).Order("timestamp", docstore.Asc))
	if err != nil {
		return nil, err
	}

	messages := make([]*domain.Message, 0, len(docs))
	for _, doc := range docs {
		m, err := decodeMessage(doc)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, nil
}

func (r *chatRepository) FindMessage(ctx context.Context, rideID, messageID string) (*domain.Message, error) {
	doc, err := r.store.Get(ctx, messagesPath(rideID), messageID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return decodeMessage(doc)
}

func (r *chatRepository) Delete(ctx context.Context, rideID string) error {
	if _, err := docstore.DeleteCollection(ctx, r.store, messagesPath(rideID)); err != nil {
		return fmt.Errorf("delete messages of %s: %w", rideID, err)
	}
	return r.store.Delete(ctx, chatsCollection, rideID)
}

func decodeChat(doc *docstore.Document) (*domain.RideChat, error) {
	var chat domain.RideChat
	if err := doc.DataTo(&chat); err != nil {
		return nil, fmt.Errorf("decode chat %s: %w", doc.ID, err)
	}
	chat.RideID = doc.ID
	return &chat, nil
}

func decodeMessage(doc *docstore.Document) (*domain.Message, error) {
	var m domain.Message
	if err := doc.DataTo(&m); err != nil {
		return nil, fmt.Errorf("decode message %s: %w", doc.ID, err)
	}
	m.ID = doc.ID
	return &m, nil
}
