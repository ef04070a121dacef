package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"roadbuddy-backend/pkg/logger"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

type pubsubPublisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// NewPubSubPublisher connects to projectID and makes sure topicName exists.
func NewPubSubPublisher(ctx context.Context, projectID, topicName, credentialsFile string) (Publisher, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	topic := client.Topic(topicName)
	exists, err := topic.Exists(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to check topic %s: %w", topicName, err)
	}
	if !exists {
		topic, err = client.CreateTopic(ctx, topicName)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to create topic %s: %w", topicName, err)
		}
		logger.Info("[PubSub] Created topic", zap.String("topic", topicName))
	}

	logger.Info("[PubSub] Publishing ride events", zap.String("topic", topicName))
	return &pubsubPublisher{client: client, topic: topic}, nil
}

func (p *pubsubPublisher) Publish(ctx context.Context, e RideEvent) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		logger.Error("[PubSub] Failed to encode event", zap.String("type", string(e.Type)), zap.Error(err))
		return
	}

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"type":   string(e.Type),
			"rideId": e.RideID,
		},
	})

	go func() {
		getCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := result.Get(getCtx); err != nil {
			logger.Warn("[PubSub] Publish failed",
				zap.String("type", string(e.Type)),
				zap.String("ride_id", e.RideID),
				zap.Error(err),
			)
		}
	}()
}

// Close flushes pending messages.
func (p *pubsubPublisher) Close() error {
	p.topic.Stop()
	return p.client.Close()
}
