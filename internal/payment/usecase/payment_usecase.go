package usecase

import (
	"context"
	"strings"

	authdomain "roadbuddy-backend/internal/auth/domain"
	authrepo "roadbuddy-backend/internal/auth/repository"
	"roadbuddy-backend/internal/payment/domain"
	"roadbuddy-backend/internal/payment/dto"
	"roadbuddy-backend/internal/payment/repository"
	"roadbuddy-backend/pkg/apperror"
	"roadbuddy-backend/pkg/logger"
	"roadbuddy-backend/pkg/money"
	"roadbuddy-backend/pkg/payment"

	"go.uber.org/zap"
)

const currencyUSD = "usd"

type paymentUsecase struct {
	rides          RideReader
	userRepo       authrepo.UserRepository
	processor      payment.Processor
	ledger         repository.PaymentRepository
	publishableKey string
}

// NewPaymentUsecase wires the payment flow. ledger may be nil when no
// Postgres database is configured.
func NewPaymentUsecase(
	rides RideReader,
	userRepo authrepo.UserRepository,
	processor payment.Processor,
	ledger repository.PaymentRepository,
	publishableKey string,
) PaymentUsecase {
	return &paymentUsecase{
		rides:          rides,
		userRepo:       userRepo,
		processor:      processor,
		ledger:         ledger,
		publishableKey: publishableKey,
	}
}

// CreatePaymentSheet checks the booking preconditions, which a refund skips,
// then creates the Stripe customer (once per user), an ephemeral key and a
// card payment intent.
func (u *paymentUsecase) CreatePaymentSheet(ctx context.Context, user *authdomain.Identity, req *dto.PaymentSheetRequest) (*dto.PaymentSheetResponse, error) {
	rideID := strings.TrimSpace(req.RideID)
	if rideID == "" {
		return nil, apperror.NewValidationError("rideId is required")
	}

	ride, err := u.rides.FindByID(ctx, rideID)
	if err != nil {
		return nil, apperror.NewDependencyError("failed to load ride", err)
	}
	if ride == nil {
		return nil, apperror.ErrRideNotFound
	}

	if !req.Refund {
		switch {
		case ride.OwnerID == user.UID:
			return nil, apperror.ErrOwnerCannotJoin
		case ride.IsFull():
			return nil, apperror.ErrRideFull
		case ride.HasPassenger(user.UID):
			return nil, apperror.ErrAlreadyPassenger
		}
	}

	cents := money.ToMinorUnits(req.Amount)
	if cents <= 0 {
		return nil, apperror.NewValidationError("amount must be at least 0.01")
	}

	customerID, err := u.customerFor(ctx, user, rideID)
	if err != nil {
		return nil, err
	}

	ephemeralKey, err := u.processor.CreateEphemeralKey(ctx, customerID)
	if err != nil {
		return nil, apperror.NewDependencyError("failed to create ephemeral key", err)
	}

	description := "Payment for ride request"
	if req.Refund {
		description = "Refund top-up for deleted ride"
	}
	intent, err := u.processor.CreatePaymentIntent(ctx, payment.IntentRequest{
		CustomerID:  customerID,
		AmountCents: cents,
		Currency:    currencyUSD,
		Description: description,
		Metadata: map[string]string{
			"ride_id": rideID,
			"user_id": user.UID,
		},
	})
	if err != nil {
		return nil, apperror.NewDependencyError("failed to create payment intent", err)
	}

	u.record(&domain.PaymentRecord{
		UserID:      user.UID,
		RideID:      rideID,
		IntentID:    intent.ID,
		CustomerID:  customerID,
		AmountCents: cents,
		Currency:    currencyUSD,
		Refund:      req.Refund,
	})

	return &dto.PaymentSheetResponse{
		PaymentIntent:  intent.ClientSecret,
		EphemeralKey:   ephemeralKey,
		Customer:       customerID,
		PublishableKey: u.publishableKey,
	}, nil
}

// customerFor returns the user's persisted Stripe customer, creating and
// saving one on first use.
func (u *paymentUsecase) customerFor(ctx context.Context, user *authdomain.Identity, rideID string) (string, error) {
	profile, err := u.userRepo.FindByID(ctx, user.UID)
	if err != nil {
		return "", apperror.NewDependencyError("failed to load user", err)
	}
	if profile == nil {
		return "", apperror.ErrUserNotFound
	}
	if profile.StripeCustomerID != "" {
		return profile.StripeCustomerID, nil
	}

	customerID, err := u.processor.CreateCustomer(ctx, user.UID, profile.Email, profile.Name)
	if err != nil {
		return "", apperror.NewDependencyError("failed to create payment customer", err)
	}
	if err := u.userRepo.SetStripeCustomerID(ctx, user.UID, customerID); err != nil {
		logger.Warn("[Payment] Customer created but not saved",
			zap.String("user_id", user.UID),
			zap.String("ride_id", rideID),
			zap.Error(err),
		)
	}
	return customerID, nil
}

func (u *paymentUsecase) record(rec *domain.PaymentRecord) {
	if u.ledger == nil {
		return
	}
	if err := u.ledger.Create(rec); err != nil {
		logger.Error("[Payment] Failed to record payment intent", zap.String("intent_id", rec.IntentID), zap.Error(err))
	}
}
