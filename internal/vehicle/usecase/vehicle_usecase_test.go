package usecase

import (
	"context"
	"errors"
	"testing"

	"roadbuddy-backend/internal/vehicle/domain"
	"roadbuddy-backend/internal/vehicle/dto"
	"roadbuddy-backend/internal/vehicle/repository"
	"roadbuddy-backend/pkg/apperror"
	"roadbuddy-backend/pkg/docstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVehicles(t *testing.T) (VehicleUsecase, *docstore.MemoryStore) {
	t.Helper()
	store := docstore.NewMemoryStore()
	return NewVehicleUsecase(repository.NewVehicleRepository(store)), store
}

func car(plate, vin string, primary bool) *dto.AddVehicleRequest {
	return &dto.AddVehicleRequest{
		Make:         "Toyota",
		Model:        "Corolla",
		LicensePlate: plate,
		VIN:          vin,
		Year:         2019,
		Color:        "blue",
		IsPrimary:    primary,
	}
}

func TestAddVehicleDuplicateMatchesPlateAndVIN(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestVehicles(t)
	_, err := uc.AddVehicle(ctx, "olga", car("7ABC123", "VIN1", false))
	require.NoError(t, err)

	tests := []struct {
		name    string
		plate   string
		vin     string
		wantDup bool
	}{
		{name: "same plate and vin", plate: "7ABC123", vin: "VIN1", wantDup: true},
		{name: "same vin new plate", plate: "8XYZ999", vin: "VIN1", wantDup: false},
		{name: "same plate new vin", plate: "7ABC123", vin: "VIN2", wantDup: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dup, err := uc.IsDuplicateVehicle(ctx, "olga", &domain.Vehicle{LicensePlate: tt.plate, VIN: tt.vin})
			require.NoError(t, err)
			assert.Equal(t, tt.wantDup, dup)
		})
	}

	_, err = uc.AddVehicle(ctx, "olga", car("7ABC123", "VIN1", true))
	assert.ErrorIs(t, err, apperror.ErrDuplicateVehicle)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	// another user may register the same car
	_, err = uc.AddVehicle(ctx, "bob", car("7ABC123", "VIN1", false))
	assert.NoError(t, err)
}

func TestAddVehicleAppliesDuplicateCheckToTrimmedInput(t *testing.T) {
	ctx := context.Background()
	uc, store := newTestVehicles(t)
	_, err := uc.AddVehicle(ctx, "olga", car("7ABC123", "VIN1", false))
	require.NoError(t, err)

	_, err = uc.AddVehicle(ctx, "olga", car("  7ABC123 ", " VIN1", false))
	assert.ErrorIs(t, err, apperror.ErrDuplicateVehicle)

	dup, err := uc.IsDuplicateVehicle(ctx, "olga", &domain.Vehicle{LicensePlate: "7ABC123", VIN: "VIN1"})
	require.NoError(t, err)
	assert.True(t, dup)

	docs, err := store.Query(ctx, docstore.Collection(docstore.Path("users", "olga", "cars")))
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestAddVehicleKeepsSinglePrimary(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestVehicles(t)

	first, err := uc.AddVehicle(ctx, "olga", car("A1", "V1", true))
	require.NoError(t, err)
	_, err = uc.AddVehicle(ctx, "olga", car("A2", "V2", false))
	require.NoError(t, err)
	third, err := uc.AddVehicle(ctx, "olga", car("A3", "V3", true))
	require.NoError(t, err)

	vehicles, err := uc.ListVehicles(ctx, "olga")
	require.NoError(t, err)
	require.Len(t, vehicles, 3)

	var primaries []string
	for _, v := range vehicles {
		if v.IsPrimary {
			primaries = append(primaries, v.ID)
		}
	}
	assert.Equal(t, []string{third.ID}, primaries)
	assert.Equal(t, third.ID, vehicles[0].ID)
	assert.NotEqual(t, first.ID, vehicles[0].ID)
}

func TestAddVehicleValidation(t *testing.T) {
	uc, store := newTestVehicles(t)
	req := car("A1", "V1", false)
	req.Year = 1800
	req.VIN = ""

	_, err := uc.AddVehicle(context.Background(), "olga", req)
	appErr := apperror.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	assert.Equal(t, map[string]string{"year": "min", "vin": "required"}, appErr.Details)

	docs, err := store.Query(context.Background(), docstore.Collection(docstore.Path("users", "olga", "cars")))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestAddVehicleStoreFailure(t *testing.T) {
	uc, store := newTestVehicles(t)
	store.InjectFailure(docstore.OpQuery, docstore.Path("users", "olga", "cars"), "", errors.New("unavailable"))

	_, err := uc.AddVehicle(context.Background(), "olga", car("A1", "V1", false))
	assert.Equal(t, apperror.KindDependency, apperror.KindOf(err))
}
