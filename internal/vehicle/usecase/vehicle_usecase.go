package usecase

import (
	"context"
	"sort"
	"strings"

	"roadbuddy-backend/internal/vehicle/domain"
	"roadbuddy-backend/internal/vehicle/dto"
	"roadbuddy-backend/internal/vehicle/repository"
	"roadbuddy-backend/pkg/apperror"
	"roadbuddy-backend/pkg/logger"
	"roadbuddy-backend/pkg/validation"

	"go.uber.org/zap"
)

type vehicleUsecase struct {
	vehicleRepo repository.VehicleRepository
	validator   *validation.Validator
}

func NewVehicleUsecase(vehicleRepo repository.VehicleRepository) VehicleUsecase {
	return &vehicleUsecase{
		vehicleRepo: vehicleRepo,
		validator:   validation.New(),
	}
}

// AddVehicle stores a car for the user. Marking it primary demotes every
// other primary car of the user.
func (u *vehicleUsecase) AddVehicle(ctx context.Context, userID string, req *dto.AddVehicleRequest) (*domain.Vehicle, error) {
	if err := u.validator.Struct(req); err != nil {
		return nil, err
	}

	v := &domain.Vehicle{
		Make:         strings.TrimSpace(req.Make),
		Model:        strings.TrimSpace(req.Model),
		LicensePlate: strings.TrimSpace(req.LicensePlate),
		VIN:          strings.TrimSpace(req.VIN),
		Year:         req.Year,
		Color:        strings.TrimSpace(req.Color),
		IsPrimary:    req.IsPrimary,
	}

	dup, err := u.IsDuplicateVehicle(ctx, userID, v)
	if err != nil {
		return nil, apperror.NewDependencyError("failed to check for duplicate vehicles", err)
	}
	if dup {
		return nil, apperror.ErrDuplicateVehicle
	}

	var demote []string
	if v.IsPrimary {
		existing, err := u.vehicleRepo.ListByUser(ctx, userID)
		if err != nil {
			return nil, apperror.NewDependencyError("failed to load vehicles", err)
		}
		for _, e := range existing {
			if e.IsPrimary {
				demote = append(demote, e.ID)
			}
		}
	}

	if err := u.vehicleRepo.Add(ctx, userID, v, demote); err != nil {
		return nil, apperror.NewDependencyError("failed to add vehicle", err)
	}
	logger.Info("[Vehicle] Vehicle added", zap.String("user_id", userID), zap.Bool("primary", v.IsPrimary), zap.Int("demoted", len(demote)))
	return v, nil
}

// ListVehicles returns the user's cars, primary first.
func (u *vehicleUsecase) ListVehicles(ctx context.Context, userID string) ([]*domain.Vehicle, error) {
	vehicles, err := u.vehicleRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.NewDependencyError("failed to load vehicles", err)
	}
	sort.SliceStable(vehicles, func(i, j int) bool {
		return vehicles[i].IsPrimary && !vehicles[j].IsPrimary
	})
	return vehicles, nil
}

// IsDuplicateVehicle matches on the license plate and VIN together, so the
// same VIN under a new plate is accepted.
func (u *vehicleUsecase) IsDuplicateVehicle(ctx context.Context, userID string, candidate *domain.Vehicle) (bool, error) {
	existing, err := u.vehicleRepo.ListByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, e := range existing {
		if e.Matches(candidate) {
			return true, nil
		}
	}
	return false, nil
}
