package repository

import (
	"context"
	"errors"
	"fmt"

	"roadbuddy-backend/internal/ride/domain"
	"roadbuddy-backend/pkg/docstore"
)

const ridesCollection = "rides"

// RideRepository stores rides/{id} documents and the ride side of membership.
type RideRepository interface {
	NewID() string
	Create(ctx context.Context, ride *domain.Ride) error
	// FindByID returns nil, nil when the ride does not exist.
	FindByID(ctx context.Context, id string) (*domain.Ride, error)
	FindOpen(ctx context.Context) ([]*domain.Ride, error)
	// FindBefore returns rides dated strictly before date (YYYY-MM-DD).
	FindBefore(ctx context.Context, date string) ([]*domain.Ride, error)
	// AddPassenger appends userID inside a transaction on the ride document.
	// admit sees the current ride and may veto the join. The status is set to
	// closed when the new passenger takes the last seat. added is false when
	// userID was already a passenger, in which case nothing is written.
	AddPassenger(ctx context.Context, rideID, userID string, admit Guard) (ride *domain.Ride, added bool, err error)
	// RemovePassenger removes userID inside a transaction and reopens the
	// ride. guard may veto the removal; nil accepts it.
	RemovePassenger(ctx context.Context, rideID, userID string, guard Guard) (*domain.Ride, error)
	Delete(ctx context.Context, id string) error
}

// Guard inspects the ride read inside a membership transaction. A non-nil
// error aborts the transaction and is returned unchanged.
type Guard func(ride *domain.Ride) error

type rideRepository struct {
	store docstore.Store
}

func NewRideRepository(store docstore.Store) RideRepository {
	return &rideRepository{store: store}
}

func (r *rideRepository) NewID() string {
	return r.store.NewID(ridesCollection)
}

func (r *rideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	if ride.CurrentPassengers == nil {
		ride.CurrentPassengers = []string{}
	}
	return r.store.Set(ctx, ridesCollection, ride.ID, ride)
}

func (r *rideRepository) FindByID(ctx context.Context, id string) (*domain.Ride, error) {
	doc, err := r.store.Get(ctx, ridesCollection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return decodeRide(doc)
}

func (r *rideRepository) FindOpen(ctx context.Context) ([]*domain.Ride, error) {
	return r.query(ctx, docstore.Collection(ridesCollection).Where("status", "==", string(domain.RideStatusOpen)))
}

func (r *rideRepository) FindBefore(ctx context.Context, date string) ([]*domain.Ride, error) {
	return r.query(ctx, docstore.Collection(ridesCollection).Where("date", "<", date))
}

func (r *rideRepository) AddPassenger(ctx context.Context, rideID, userID string, admit Guard) (*domain.Ride, bool, error) {
	var (
		result *domain.Ride
		added  bool
	)
	err := r.store.Transact(ctx, ridesCollection, rideID, func(doc *docstore.Document) ([]docstore.Update, error) {
		ride, err := decodeRide(doc)
		if err != nil {
			return nil, err
		}
		result, added = ride, false
		if admit != nil {
			if err := admit(ride); err != nil {
				return nil, err
			}
		}
		if ride.HasPassenger(userID) {
			return nil, nil
		}
		ride.CurrentPassengers = append(ride.CurrentPassengers, userID)
		ride.Status = ride.StatusForSeats()
		added = true
		return []docstore.Update{
			{Path: "currentPassengers", Value: docstore.ArrayUnion(userID)},
			{Path: "status", Value: string(ride.Status)},
		}, nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("add passenger %s to ride %s: %w", userID, rideID, err)
	}
	return result, added, nil
}

func (r *rideRepository) RemovePassenger(ctx context.Context, rideID, userID string, guard Guard) (*domain.Ride, error) {
	var result *domain.Ride
	err := r.store.Transact(ctx, ridesCollection, rideID, func(doc *docstore.Document) ([]docstore.Update, error) {
		ride, err := decodeRide(doc)
		if err != nil {
			return nil, err
		}
		result = ride
		if guard != nil {
			if err := guard(ride); err != nil {
				return nil, err
			}
		}
		kept := make([]string, 0, len(ride.CurrentPassengers))
		for _, id := range ride.CurrentPassengers {
			if id != userID {
				kept = append(kept, id)
			}
		}
		ride.CurrentPassengers = kept
		ride.Status = ride.StatusForSeats()
		return []docstore.Update{
			{Path: "currentPassengers", Value: docstore.ArrayRemove(userID)},
			{Path: "status", Value: string(ride.Status)},
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("remove passenger %s from ride %s: %w", userID, rideID, err)
	}
	return result, nil
}

func (r *rideRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, ridesCollection, id)
}

func (r *rideRepository) query(ctx context.Context, q docstore.Query) ([]*domain.Ride, error) {
	docs, err := r.store.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	rides := make([]*domain.Ride, 0, len(docs))
	for _, doc := range docs {
		ride, err := decodeRide(doc)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, nil
}

func decodeRide(doc *docstore.Document) (*domain.Ride, error) {
	var ride domain.Ride
	if err := doc.DataTo(&ride); err != nil {
		return nil, fmt.Errorf("decode ride %s: %w", doc.ID, err)
	}
	ride.ID = doc.ID
	return &ride, nil
}
