package repository

import (
	"context"
	"errors"
	"fmt"

	"roadbuddy-backend/internal/notification/domain"
	"roadbuddy-backend/pkg/docstore"
)

const (
	usersCollection = "users"
	unreadField     = "unreadNotificationCount"
	// Each notification costs two writes: the entry and the counter.
	usersPerBatch = 250
)

// NotificationRepository stores per-user notifications and the unread counter
// on the user document.
type NotificationRepository interface {
	// Add creates an unread notification and increments the counter in one commit.
	Add(ctx context.Context, userID, rideID, message string) error
	// AddMany is Add for several users, committed together when they fit in one batch.
	AddMany(ctx context.Context, userIDs []string, rideID, message string) error
	// ListByUser returns notifications newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error)
	// MarkRead flags ids as read and resets the counter to zero.
	MarkRead(ctx context.Context, userID string, ids []string) error
	UnreadCount(ctx context.Context, userID string) (int64, error)
}

type notificationRepository struct {
	store docstore.Store
}

func NewNotificationRepository(store docstore.Store) NotificationRepository {
	return &notificationRepository{store: store}
}

func notificationsPath(userID string) string {
	return docstore.Path(usersCollection, userID, "notifications")
}

func (r *notificationRepository) writesFor(userID, rideID, message string) []docstore.Write {
	coll := notificationsPath(userID)
	return []docstore.Write{
		docstore.SetOp(coll, r.store.NewID(coll), map[string]any{
			"message":   message,
			"rideId":    rideID,
			"read":      false,
			"createdAt": docstore.ServerTimestamp,
		}),
		docstore.MergeOp(usersCollection, userID, map[string]any{
			unreadField: docstore.Increment(1),
		}),
	}
}

func (r *notificationRepository) Add(ctx context.Context, userID, rideID, message string) error {
	if err := r.store.Commit(ctx, r.writesFor(userID, rideID, message)...); err != nil {
		return fmt.Errorf("add notification for %s: %w", userID, err)
	}
	return nil
}

func (r *notificationRepository) AddMany(ctx context.Context, userIDs []string, rideID, message string) error {
	for start := 0; start < len(userIDs); start += usersPerBatch {
		end := start + usersPerBatch
		if end > len(userIDs) {
			end = len(userIDs)
		}
		var writes []docstore.Write
		for _, userID := range userIDs[start:end] {
			writes = append(writes, r.writesFor(userID, rideID, message)...)
		}
		if err := r.store.Commit(ctx, writes...); err != nil {
			return fmt.Errorf("add notifications: %w", err)
		}
	}
	return nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error) {
	docs, err := r.store.Query(ctx, docstore.Collection(notificationsPath(userID)).Order("createdAt", docstore.Desc))
	if err != nil {
		return nil, err
	}

	notifications := make([]*domain.Notification, 0, len(docs))
	for _, doc := range docs {
		var n domain.Notification
		if err := doc.DataTo(&n); err != nil {
			return nil, fmt.Errorf("decode notification %s: %w", doc.ID, err)
		}
		n.ID = doc.ID
		notifications = append(notifications, &n)
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID string, ids []string) error {
	coll := notificationsPath(userID)
	writes := make([]docstore.Write, 0, len(ids)+1)
	for _, id := range ids {
		writes = append(writes, docstore.UpdateOp(coll, id, docstore.Update{Path: "read", Value: true}))
	}
	writes = append(writes, docstore.MergeOp(usersCollection, userID, map[string]any{unreadField: 0}))

	// Keep the counter reset in the final chunk so it lands after every flag.
	const chunk = 500
	for start := 0; start < len(writes); start += chunk {
		end := start + chunk
		if end > len(writes) {
			end = len(writes)
		}
		if err := r.store.Commit(ctx, writes[start:end]...); err != nil {
			return fmt.Errorf("mark notifications read: %w", err)
		}
	}
	return nil
}

func (r *notificationRepository) UnreadCount(ctx context.Context, userID string) (int64, error) {
	doc, err := r.store.Get(ctx, usersCollection, userID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	var counter struct {
		Unread int64 `json:"unreadNotificationCount" firestore:"unreadNotificationCount"`
	}
	if err := doc.DataTo(&counter); err != nil {
		return 0, err
	}
	return counter.Unread, nil
}
