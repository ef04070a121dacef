// Package event publishes ride lifecycle events for downstream consumers.
package event

import (
	"context"
	"time"
)

// Type names a ride lifecycle transition.
type Type string

const (
	RidePosted    Type = "ride.posted"
	RideJoined    Type = "ride.joined"
	RideCancelled Type = "ride.cancelled"
	RideDeleted   Type = "ride.deleted"
	RideExpired   Type = "ride.expired"
)

// RideEvent is the payload published for every transition. UserID is the
// passenger for joined and cancelled events and empty otherwise.
type RideEvent struct {
	Type       Type      `json:"type"`
	RideID     string    `json:"rideId"`
	OwnerID    string    `json:"ownerId"`
	UserID     string    `json:"userId,omitempty"`
	Passengers []string  `json:"passengers,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher delivers ride events. Publish must not block on delivery.
type Publisher interface {
	Publish(ctx context.Context, e RideEvent)
	Close() error
}
