package usecase

import (
	"context"

	"roadbuddy-backend/internal/ride/domain"
	"roadbuddy-backend/internal/ride/dto"
)

// IsDuplicateRide reports whether any of existingRideIDs has the same route,
// date and departure time as candidate. IDs that no longer resolve to a ride
// are skipped.
func (u *rideUsecase) IsDuplicateRide(ctx context.Context, existingRideIDs []string, candidate *dto.PostRideRequest) (bool, error) {
	want := &domain.Ride{
		From:          candidate.From,
		To:            candidate.To,
		Date:          candidate.Date,
		DepartureTime: candidate.DepartureTime,
	}
	for _, id := range existingRideIDs {
		ride, err := u.rideRepo.FindByID(ctx, id)
		if err != nil {
			return false, err
		}
		if ride == nil {
			continue
		}
		if ride.SameTrip(want) {
			return true, nil
		}
	}
	return false, nil
}
