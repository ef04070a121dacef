package usecase

import (
	"context"
	"errors"

	authrepo "roadbuddy-backend/internal/auth/repository"
	"roadbuddy-backend/internal/ride/domain"
	"roadbuddy-backend/internal/ride/repository"
	"roadbuddy-backend/pkg/apperror"
	"roadbuddy-backend/pkg/docstore"
	"roadbuddy-backend/pkg/logger"

	"go.uber.org/zap"
)

// membership keeps ride.currentPassengers and user.ridesJoined pointing at
// each other, and ride existence matching owner.ridesPosted. Seat checks and
// the ride-side write share one transaction on the ride document. There is no
// cross-document transaction: the ride side is always written first and a
// failed user-side write is compensated on the ride side.
type membership struct {
	rides repository.RideRepository
	users authrepo.UserRepository
}

// addPassenger writes the ride side only. added is false when the user was
// already a passenger.
func (m *membership) addPassenger(ctx context.Context, rideID, userID string, admit repository.Guard) (*domain.Ride, bool, error) {
	ride, added, err := m.rides.AddPassenger(ctx, rideID, userID, admit)
	if err != nil {
		return nil, false, rideWriteError("failed to add passenger to ride", err)
	}
	return ride, added, nil
}

// join adds both sides. If the user side fails the passenger is removed from
// the ride again.
func (m *membership) join(ctx context.Context, rideID, userID string, admit repository.Guard) (*domain.Ride, bool, error) {
	ride, added, err := m.addPassenger(ctx, rideID, userID, admit)
	if err != nil || !added {
		return ride, added, err
	}
	if err := m.users.AddJoinedRide(ctx, userID, rideID); err != nil {
		if _, cerr := m.rides.RemovePassenger(ctx, rideID, userID, nil); cerr != nil {
			logger.Error("[Membership] Compensation failed, passenger left on ride",
				zap.String("ride_id", rideID),
				zap.String("user_id", userID),
				zap.Error(cerr),
			)
			return nil, false, apperror.NewDependencyError("failed to record joined ride; removing the passenger from the ride also failed", err)
		}
		return nil, false, apperror.NewDependencyError("failed to record joined ride; passenger was removed from the ride", err)
	}
	return ride, true, nil
}

// leave removes both sides. If the user side fails the passenger is added
// back unless the seat was taken in the meantime.
func (m *membership) leave(ctx context.Context, rideID, userID string, guard repository.Guard) (*domain.Ride, error) {
	ride, err := m.rides.RemovePassenger(ctx, rideID, userID, guard)
	if err != nil {
		return nil, rideWriteError("failed to remove passenger from ride", err)
	}
	if err := m.users.RemoveJoinedRide(ctx, userID, rideID); err != nil {
		if _, _, cerr := m.rides.AddPassenger(ctx, rideID, userID, seatFree(userID)); cerr != nil {
			logger.Error("[Membership] Compensation failed, passenger dropped from ride only",
				zap.String("ride_id", rideID),
				zap.String("user_id", userID),
				zap.Error(cerr),
			)
			return nil, apperror.NewDependencyError("failed to update joined rides; re-adding the passenger to the ride also failed", err)
		}
		return nil, apperror.NewDependencyError("failed to update joined rides; passenger was restored on the ride", err)
	}
	return ride, nil
}

func seatFree(userID string) repository.Guard {
	return func(ride *domain.Ride) error {
		if !ride.HasPassenger(userID) && ride.IsFull() {
			return apperror.ErrRideFull
		}
		return nil
	}
}

// rideWriteError keeps guard rejections as they are and maps a vanished
// ride to not found.
func rideWriteError(message string, err error) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, docstore.ErrNotFound) {
		return apperror.ErrRideNotFound
	}
	return apperror.NewDependencyError(message, err)
}

// dropJoined removes a ride from one user's joined list. A user document
// that no longer exists has nothing to clean up.
func (m *membership) dropJoined(ctx context.Context, userID, rideID string) error {
	if err := m.users.RemoveJoinedRide(ctx, userID, rideID); err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return err
	}
	return nil
}

func (m *membership) addPosted(ctx context.Context, ownerID, rideID string) error {
	return m.users.AddPostedRide(ctx, ownerID, rideID)
}

func (m *membership) dropPosted(ctx context.Context, ownerID, rideID string) error {
	if err := m.users.RemovePostedRide(ctx, ownerID, rideID); err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return err
	}
	return nil
}
