package fcm

import (
	"context"
	"fmt"

	"roadbuddy-backend/pkg/logger"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// Client wraps Firebase Cloud Messaging
type Client struct {
	messagingClient *messaging.Client
}

// NewClient creates an FCM client from an initialized Firebase app
func NewClient(ctx context.Context, app *firebase.App) (*Client, error) {
	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	logger.Info("[FCM] Client initialized")
	return &Client{messagingClient: messagingClient}, nil
}

// NotificationData is the payload of a push notification
type NotificationData struct {
	Title string
	Body  string
	Data  map[string]string
}

func (n NotificationData) notification() *messaging.Notification {
	return &messaging.Notification{Title: n.Title, Body: n.Body}
}

// SendToDevices pushes one notification to every token.
// It returns the tokens FCM rejected so callers can forget them.
func (c *Client) SendToDevices(ctx context.Context, tokens []string, n NotificationData) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	message := &messaging.MulticastMessage{
		Tokens:       tokens,
		Notification: n.notification(),
		Data:         n.Data,
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}

	response, err := c.messagingClient.SendEachForMulticast(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("failed to send FCM multicast message: %w", err)
	}

	logger.Debug("[FCM] Multicast sent",
		zap.Int("success", response.SuccessCount),
		zap.Int("failure", response.FailureCount),
	)

	var failed []string
	for i, resp := range response.Responses {
		if resp.Success {
			continue
		}
		if messaging.IsUnregistered(resp.Error) || messaging.IsInvalidArgument(resp.Error) {
			failed = append(failed, tokens[i])
		}
		logger.Warn("[FCM] Delivery failed", zap.String("token", shorten(tokens[i])), zap.Error(resp.Error))
	}
	return failed, nil
}

func shorten(token string) string {
	if len(token) <= 12 {
		return token
	}
	return token[:12] + "..."
}
