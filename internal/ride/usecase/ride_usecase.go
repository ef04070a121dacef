package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	authdomain "roadbuddy-backend/internal/auth/domain"
	authrepo "roadbuddy-backend/internal/auth/repository"
	chatdomain "roadbuddy-backend/internal/chat/domain"
	"roadbuddy-backend/internal/event"
	"roadbuddy-backend/internal/ride/domain"
	"roadbuddy-backend/internal/ride/dto"
	"roadbuddy-backend/internal/ride/repository"
	"roadbuddy-backend/pkg/apperror"
	"roadbuddy-backend/pkg/clock"
	"roadbuddy-backend/pkg/fuzzy"
	"roadbuddy-backend/pkg/logger"
	"roadbuddy-backend/pkg/metrics"
	"roadbuddy-backend/pkg/money"
	"roadbuddy-backend/pkg/validation"

	"go.uber.org/zap"
)

type rideUsecase struct {
	rideRepo  repository.RideRepository
	userRepo  authrepo.UserRepository
	members   *membership
	chats     ChatRooms
	notifier  Notifier
	publisher event.Publisher
	clock     *clock.Clock
	validator *validation.Validator
}

// NewRideUsecase creates a new instance of rideUsecase
func NewRideUsecase(
	rideRepo repository.RideRepository,
	userRepo authrepo.UserRepository,
	chats ChatRooms,
	notifier Notifier,
	publisher event.Publisher,
	clk *clock.Clock,
) RideUsecase {
	return &rideUsecase{
		rideRepo:  rideRepo,
		userRepo:  userRepo,
		members:   &membership{rides: rideRepo, users: userRepo},
		chats:     chats,
		notifier:  notifier,
		publisher: publisher,
		clock:     clk,
		validator: validation.New(),
	}
}

func (u *rideUsecase) PostRide(ctx context.Context, owner *authdomain.Identity, req *dto.PostRideRequest) (string, error) {
	req.From = strings.TrimSpace(req.From)
	req.To = strings.TrimSpace(req.To)
	req.DepartureTime = strings.TrimSpace(req.DepartureTime)
	if err := u.validator.Struct(req); err != nil {
		return "", err
	}

	user, err := u.userRepo.FindByID(ctx, owner.UID)
	if err != nil {
		return "", apperror.NewDependencyError("failed to load user", err)
	}
	if user == nil {
		return "", apperror.ErrUserNotFound
	}

	dup, err := u.IsDuplicateRide(ctx, user.RidesPosted, req)
	if err != nil {
		return "", apperror.NewDependencyError("failed to check for duplicate rides", err)
	}
	if dup {
		return "", apperror.ErrDuplicateRide
	}

	ownerName := owner.Name
	if ownerName == "" {
		ownerName = user.Name
	}
	ride := &domain.Ride{
		ID:                u.rideRepo.NewID(),
		OwnerID:           owner.UID,
		OwnerName:         ownerName,
		From:              req.From,
		To:                req.To,
		Date:              req.Date,
		DepartureTime:     req.DepartureTime,
		MaxPassengers:     req.MaxPassengers,
		Cost:              *req.Cost,
		CurrentPassengers: []string{},
		Car:               req.Car,
		LicensePlate:      req.LicensePlate,
		Status:            domain.RideStatusOpen,
	}
	if err := u.rideRepo.Create(ctx, ride); err != nil {
		return "", apperror.NewDependencyError("failed to create ride", err)
	}

	if err := u.members.addPosted(ctx, owner.UID, ride.ID); err != nil {
		// Leaving the ride would orphan it from the owner's list.
		if derr := u.rideRepo.Delete(ctx, ride.ID); derr != nil {
			logger.Error("[Ride] Orphaned ride after failed posting", zap.String("ride_id", ride.ID), zap.Error(derr))
		}
		return "", apperror.NewDependencyError("failed to record posted ride; the ride was withdrawn", err)
	}

	err = u.chats.CreateChat(ctx, &chatdomain.RideChat{
		RideID:        ride.ID,
		OwnerID:       ride.OwnerID,
		OwnerName:     ride.OwnerName,
		From:          ride.From,
		To:            ride.To,
		Date:          ride.Date,
		DepartureTime: ride.DepartureTime,
	})
	if err != nil {
		logger.Warn("[Ride] Ride posted without chat", zap.String("ride_id", ride.ID), zap.Error(err))
	}

	u.emit(ctx, event.RideEvent{Type: event.RidePosted, RideID: ride.ID, OwnerID: ride.OwnerID})
	logger.Info("[Ride] Ride posted", zap.String("ride_id", ride.ID), zap.String("owner_id", ride.OwnerID))
	return ride.ID, nil
}

func (u *rideUsecase) GetRide(ctx context.Context, rideID, viewerID string) (*dto.RideResponse, error) {
	ride, err := u.loadRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	resp := u.toResponse(ride, viewerID)
	return &resp, nil
}

// ListAvailable returns open rides from today on that the user neither owns
// nor has joined. A non-empty query keeps only rides whose route matches it,
// best match first.
func (u *rideUsecase) ListAvailable(ctx context.Context, userID, query string) ([]dto.RideResponse, error) {
	rides, err := u.rideRepo.FindOpen(ctx)
	if err != nil {
		return nil, apperror.NewDependencyError("failed to list rides", err)
	}

	today := u.clock.Today()
	query = strings.TrimSpace(query)
	scores := make(map[string]float64)
	var available []*domain.Ride
	for _, ride := range rides {
		if ride.OwnerID == userID || ride.HasPassenger(userID) || ride.Date < today || ride.IsFull() {
			continue
		}
		if query != "" {
			score := fuzzy.RouteScore(query, ride.From, ride.To)
			if score == 0 {
				continue
			}
			scores[ride.ID] = score
		}
		available = append(available, ride)
	}

	sortByDeparture(available)
	if query != "" {
		sort.SliceStable(available, func(i, j int) bool {
			return scores[available[i].ID] > scores[available[j].ID]
		})
	}

	result := make([]dto.RideResponse, 0, len(available))
	for _, ride := range available {
		result = append(result, u.toResponse(ride, userID))
	}
	return result, nil
}

// ListUpcoming returns the rides the user posted and joined, soonest first.
// References to rides that no longer exist are skipped.
func (u *rideUsecase) ListUpcoming(ctx context.Context, userID string) (*dto.UpcomingRidesResponse, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.NewDependencyError("failed to load user", err)
	}
	if user == nil {
		return nil, apperror.ErrUserNotFound
	}

	posted, err := u.resolve(ctx, user.RidesPosted, userID)
	if err != nil {
		return nil, err
	}
	joined, err := u.resolve(ctx, user.RidesJoined, userID)
	if err != nil {
		return nil, err
	}
	return &dto.UpcomingRidesResponse{Posted: posted, Joined: joined}, nil
}

func (u *rideUsecase) resolve(ctx context.Context, ids []string, viewerID string) ([]dto.RideResponse, error) {
	rides := make([]*domain.Ride, 0, len(ids))
	for _, id := range ids {
		ride, err := u.rideRepo.FindByID(ctx, id)
		if err != nil {
			return nil, apperror.NewDependencyError("failed to load ride", err)
		}
		if ride != nil {
			rides = append(rides, ride)
		}
	}
	sortByDeparture(rides)

	result := make([]dto.RideResponse, 0, len(rides))
	for _, ride := range rides {
		result = append(result, u.toResponse(ride, viewerID))
	}
	return result, nil
}

// joinGuard admits a user onto a ride with a free seat. A user who already
// rides along passes and nothing is written.
func joinGuard(userID string) repository.Guard {
	return func(ride *domain.Ride) error {
		if ride.OwnerID == userID {
			return apperror.ErrOwnerCannotJoin
		}
		if ride.HasPassenger(userID) {
			return nil
		}
		if ride.IsFull() {
			return apperror.ErrRideFull
		}
		return nil
	}
}

func cancelGuard(userID string) repository.Guard {
	return func(ride *domain.Ride) error {
		if ride.OwnerID == userID {
			return apperror.ErrOwnerCannotCancel
		}
		if !ride.HasPassenger(userID) {
			return apperror.ErrNotAPassenger
		}
		return nil
	}
}

func (u *rideUsecase) AddPassenger(ctx context.Context, rideID, userID string) (bool, error) {
	_, added, err := u.members.addPassenger(ctx, rideID, userID, joinGuard(userID))
	if err != nil {
		return false, err
	}
	return !added, nil
}

func (u *rideUsecase) JoinRide(ctx context.Context, rideID string, user *authdomain.Identity) (*dto.JoinRideResponse, error) {
	ride, added, err := u.members.join(ctx, rideID, user.UID, joinGuard(user.UID))
	if err != nil {
		return nil, err
	}
	if !added {
		return &dto.JoinRideResponse{Ride: u.toResponse(ride, user.UID), AlreadyPassenger: true}, nil
	}

	if err := u.chats.AddParticipant(ctx, ride.ID, user.UID); err != nil {
		logger.Warn("[Ride] Joined ride but chat membership failed", zap.String("ride_id", ride.ID), zap.String("user_id", user.UID), zap.Error(err))
	}

	name := u.displayName(ctx, user)
	message := fmt.Sprintf("%s has booked a ride with you.\nFrom: %s\nTo: %s", name, ride.From, ride.To)
	if err := u.notifier.Notify(ctx, ride.OwnerID, ride.ID, message); err != nil {
		logger.Warn("[Ride] Failed to notify owner of booking", zap.String("ride_id", ride.ID), zap.Error(err))
	}

	u.emit(ctx, event.RideEvent{Type: event.RideJoined, RideID: ride.ID, OwnerID: ride.OwnerID, UserID: user.UID})
	return &dto.JoinRideResponse{Ride: u.toResponse(ride, user.UID)}, nil
}

func (u *rideUsecase) Cancel(ctx context.Context, rideID string, user *authdomain.Identity) error {
	ride, err := u.members.leave(ctx, rideID, user.UID, cancelGuard(user.UID))
	if err != nil {
		return err
	}

	if err := u.chats.RemoveParticipant(ctx, ride.ID, user.UID); err != nil {
		logger.Warn("[Ride] Cancelled ride but chat membership remains", zap.String("ride_id", ride.ID), zap.String("user_id", user.UID), zap.Error(err))
	}

	name := u.displayName(ctx, user)
	message := fmt.Sprintf("%s has cancelled a ride with you.\nFrom: %s\nTo: %s", name, ride.From, ride.To)
	if err := u.notifier.Notify(ctx, ride.OwnerID, ride.ID, message); err != nil {
		logger.Warn("[Ride] Failed to notify owner of cancellation", zap.String("ride_id", ride.ID), zap.Error(err))
	}

	u.emit(ctx, event.RideEvent{Type: event.RideCancelled, RideID: ride.ID, OwnerID: ride.OwnerID, UserID: user.UID})
	return nil
}

// Delete tears a ride down in a fixed order: passengers first, then the
// owner's reference, then the chat and finally the ride. A failure part way
// leaves stale references to an existing ride, so the owner can retry.
// Refund notices are sent only after the ride is gone.
func (u *rideUsecase) Delete(ctx context.Context, rideID, ownerID string) (*dto.DeleteRideResponse, error) {
	ride, err := u.loadRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.OwnerID != ownerID {
		return nil, apperror.ErrNotOwner
	}

	refund := money.Format(money.Refund(money.FromFloat(ride.Cost)))
	message := fmt.Sprintf("$%s has been refunded to you.\n%s (ride's owner) has deleted the ride.\nFrom: %s\nTo: %s",
		refund, ride.OwnerName, ride.From, ride.To)

	for _, passenger := range ride.CurrentPassengers {
		if err := u.members.dropJoined(ctx, passenger, ride.ID); err != nil {
			return nil, apperror.NewDependencyError("failed to detach passenger; the ride was not deleted", err)
		}
	}
	if err := u.members.dropPosted(ctx, ride.OwnerID, ride.ID); err != nil {
		return nil, apperror.NewDependencyError("failed to detach ride from owner; the ride was not deleted", err)
	}
	if err := u.chats.Teardown(ctx, ride.ID); err != nil {
		return nil, apperror.NewDependencyError("failed to remove the ride chat; the ride was not deleted", err)
	}
	if err := u.rideRepo.Delete(ctx, ride.ID); err != nil {
		return nil, apperror.NewDependencyError("failed to delete ride", err)
	}

	// Notices go out once the ride is gone so a retried delete cannot repeat them.
	refunded := make([]string, 0, len(ride.CurrentPassengers))
	for _, passenger := range ride.CurrentPassengers {
		if err := u.notifier.Notify(ctx, passenger, ride.ID, message); err != nil {
			logger.Warn("[Ride] Failed to send refund notice", zap.String("ride_id", ride.ID), zap.String("user_id", passenger), zap.Error(err))
		}
		refunded = append(refunded, passenger)
	}

	u.emit(ctx, event.RideEvent{Type: event.RideDeleted, RideID: ride.ID, OwnerID: ride.OwnerID, Passengers: refunded})
	logger.Info("[Ride] Ride deleted", zap.String("ride_id", ride.ID), zap.Int("refunded", len(refunded)))
	return &dto.DeleteRideResponse{RideID: ride.ID, RefundedUsers: refunded, RefundPerUser: refund}, nil
}

func (u *rideUsecase) loadRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	ride, err := u.rideRepo.FindByID(ctx, rideID)
	if err != nil {
		return nil, apperror.NewDependencyError("failed to load ride", err)
	}
	if ride == nil {
		return nil, apperror.ErrRideNotFound
	}
	return ride, nil
}

// displayName prefers the verified token name and falls back to the profile.
func (u *rideUsecase) displayName(ctx context.Context, user *authdomain.Identity) string {
	if user.Name != "" {
		return user.Name
	}
	profile, err := u.userRepo.FindByID(ctx, user.UID)
	if err == nil && profile != nil && profile.Name != "" {
		return profile.Name
	}
	return "A passenger"
}

func (u *rideUsecase) emit(ctx context.Context, e event.RideEvent) {
	e.OccurredAt = time.Now().UTC()
	metrics.RecordRideEvent(string(e.Type))
	u.publisher.Publish(ctx, e)
}

func (u *rideUsecase) toResponse(ride *domain.Ride, viewerID string) dto.RideResponse {
	return dto.NewRideResponse(ride, viewerID, money.Format(money.FromFloat(ride.Cost)))
}

func sortByDeparture(rides []*domain.Ride) {
	sort.SliceStable(rides, func(i, j int) bool {
		if rides[i].Date != rides[j].Date {
			return rides[i].Date < rides[j].Date
		}
		return rides[i].DepartureTime < rides[j].DepartureTime
	})
}
