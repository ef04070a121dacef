package repository

import (
	"context"
	"fmt"

	"roadbuddy-backend/internal/vehicle/domain"
	"roadbuddy-backend/pkg/docstore"
)

type VehicleRepository interface {
	ListByUser(ctx context.Context, userID string) ([]*domain.Vehicle, error)
	// Add stores v and clears isPrimary on demote in the same commit.
	Add(ctx context.Context, userID string, v *domain.Vehicle, demote []string) error
}

type vehicleRepository struct {
	store docstore.Store
}

func NewVehicleRepository(store docstore.Store) VehicleRepository {
	return &vehicleRepository{store: store}
}

func carsPath(userID string) string {
	return docstore.Path("users", userID, "cars")
}

func (r *vehicleRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Vehicle, error) {
	docs, err := r.store.Query(ctx, docstore.Collection(carsPath(userID)))
	if err != nil {
		return nil, err
	}

	vehicles := make([]*domain.Vehicle, 0, len(docs))
	for _, doc := range docs {
		var v domain.Vehicle
		if err := doc.DataTo(&v); err != nil {
			return nil, fmt.Errorf("decode vehicle %s: %w", doc.ID, err)
		}
		v.ID = doc.ID
		vehicles = append(vehicles, &v)
	}
	return vehicles, nil
}

func (r *vehicleRepository) Add(ctx context.Context, userID string, v *domain.Vehicle, demote []string) error {
	coll := carsPath(userID)
	if v.ID == "" {
		v.ID = r.store.NewID(coll)
	}

	writes := make([]docstore.Write, 0, len(demote)+1)
	for _, id := range demote {
		writes = append(writes, docstore.UpdateOp(coll, id, docstore.Update{Path: "isPrimary", Value: false}))
	}
	writes = append(writes, docstore.SetOp(coll, v.ID, v))
	return r.store.Commit(ctx, writes...)
}
