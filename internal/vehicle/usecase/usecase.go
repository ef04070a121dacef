package usecase

import (
	"context"

	"roadbuddy-backend/internal/vehicle/domain"
	"roadbuddy-backend/internal/vehicle/dto"
)

type VehicleUsecase interface {
	AddVehicle(ctx context.Context, userID string, req *dto.AddVehicleRequest) (*domain.Vehicle, error)
	ListVehicles(ctx context.Context, userID string) ([]*domain.Vehicle, error)
	IsDuplicateVehicle(ctx context.Context, userID string, candidate *domain.Vehicle) (bool, error)
}
