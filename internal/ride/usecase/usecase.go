package usecase

import (
	"context"

	authdomain "roadbuddy-backend/internal/auth/domain"
	chatdomain "roadbuddy-backend/internal/chat/domain"
	"roadbuddy-backend/internal/ride/dto"
)

// RideUsecase owns the ride lifecycle: posting, joining, cancelling,
// owner deletion and the expiry sweep.
type RideUsecase interface {
	PostRide(ctx context.Context, owner *authdomain.Identity, req *dto.PostRideRequest) (string, error)
	GetRide(ctx context.Context, rideID, viewerID string) (*dto.RideResponse, error)
	ListAvailable(ctx context.Context, userID, query string) ([]dto.RideResponse, error)
	ListUpcoming(ctx context.Context, userID string) (*dto.UpcomingRidesResponse, error)

	// AddPassenger is the ride side of joining. It reports true when the
	// user was already a passenger and nothing changed.
	AddPassenger(ctx context.Context, rideID, userID string) (bool, error)
	JoinRide(ctx context.Context, rideID string, user *authdomain.Identity) (*dto.JoinRideResponse, error)
	Cancel(ctx context.Context, rideID string, user *authdomain.Identity) error
	Delete(ctx context.Context, rideID, ownerID string) (*dto.DeleteRideResponse, error)
	SweepExpired(ctx context.Context) (*dto.SweepResult, error)

	IsDuplicateRide(ctx context.Context, existingRideIDs []string, candidate *dto.PostRideRequest) (bool, error)
}

// ChatRooms is the part of the chat feature the ride lifecycle drives.
type ChatRooms interface {
	CreateChat(ctx context.Context, chat *chatdomain.RideChat) error
	AddParticipant(ctx context.Context, rideID, userID string) error
	RemoveParticipant(ctx context.Context, rideID, userID string) error
	Teardown(ctx context.Context, rideID string) error
}

// Notifier delivers in-app notifications.
type Notifier interface {
	Notify(ctx context.Context, userID, rideID, message string) error
}
