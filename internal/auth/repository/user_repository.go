package repository

import (
	"context"
	"errors"
	"fmt"

	authdomain "roadbuddy-backend/internal/auth/domain"
	"roadbuddy-backend/pkg/docstore"
)

const usersCollection = "users"

// UserRepository stores users/{uid} documents and maintains the user side
// of ride membership.
type UserRepository interface {
	Create(ctx context.Context, user *authdomain.User) error
	// FindByID returns nil, nil when the user does not exist.
	FindByID(ctx context.Context, id string) (*authdomain.User, error)
	FindByEmail(ctx context.Context, email string) (*authdomain.User, error)

	AddPostedRide(ctx context.Context, userID, rideID string) error
	RemovePostedRide(ctx context.Context, userID, rideID string) error
	AddJoinedRide(ctx context.Context, userID, rideID string) error
	RemoveJoinedRide(ctx context.Context, userID, rideID string) error

	SetStripeCustomerID(ctx context.Context, userID, customerID string) error
}

// userRepository implements UserRepository interface
type userRepository struct {
	store docstore.Store
}

// NewUserRepository creates a new instance of userRepository
func NewUserRepository(store docstore.Store) UserRepository {
	return &userRepository{
		store: store,
	}
}

func (r *userRepository) Create(ctx context.Context, user *authdomain.User) error {
	if user.RidesPosted == nil {
		user.RidesPosted = []string{}
	}
	if user.RidesJoined == nil {
		user.RidesJoined = []string{}
	}
	return r.store.Set(ctx, usersCollection, user.ID, user)
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*authdomain.User, error) {
	doc, err := r.store.Get(ctx, usersCollection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return decodeUser(doc)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*authdomain.User, error) {
	docs, err := r.store.Query(ctx, docstore.Collection(usersCollection).Where("email", "==", email).Take(1))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return decodeUser(docs[0])
}

func (r *userRepository) AddPostedRide(ctx context.Context, userID, rideID string) error {
	return r.updateArray(ctx, userID, "ridesPosted", docstore.ArrayUnion(rideID))
}

func (r *userRepository) RemovePostedRide(ctx context.Context, userID, rideID string) error {
	return r.updateArray(ctx, userID, "ridesPosted", docstore.ArrayRemove(rideID))
}

func (r *userRepository) AddJoinedRide(ctx context.Context, userID, rideID string) error {
	return r.updateArray(ctx, userID, "ridesJoined", docstore.ArrayUnion(rideID))
}

func (r *userRepository) RemoveJoinedRide(ctx context.Context, userID, rideID string) error {
	return r.updateArray(ctx, userID, "ridesJoined", docstore.ArrayRemove(rideID))
}

func (r *userRepository) SetStripeCustomerID(ctx context.Context, userID, customerID string) error {
	return r.store.Update(ctx, usersCollection, userID, docstore.Update{Path: "stripeCustomerId", Value: customerID})
}

func (r *userRepository) updateArray(ctx context.Context, userID, field string, transform any) error {
	if err := r.store.Update(ctx, usersCollection, userID, docstore.Update{Path: field, Value: transform}); err != nil {
		return fmt.Errorf("update %s of user %s: %w", field, userID, err)
	}
	return nil
}

func decodeUser(doc *docstore.Document) (*authdomain.User, error) {
	var user authdomain.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", doc.ID, err)
	}
	user.ID = doc.ID
	return &user, nil
}
