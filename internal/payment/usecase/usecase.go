package usecase

import (
	"context"

	authdomain "roadbuddy-backend/internal/auth/domain"
	"roadbuddy-backend/internal/payment/dto"
	ridedomain "roadbuddy-backend/internal/ride/domain"
)

// PaymentUsecase prepares the client payment sheet for a ride booking or a
// refund top-up.
type PaymentUsecase interface {
	CreatePaymentSheet(ctx context.Context, user *authdomain.Identity, req *dto.PaymentSheetRequest) (*dto.PaymentSheetResponse, error)
}

// RideReader loads rides for the booking preconditions.
type RideReader interface {
	FindByID(ctx context.Context, id string) (*ridedomain.Ride, error)
}
