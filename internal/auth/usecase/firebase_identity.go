package usecase

import (
	"context"
	"fmt"

	authdomain "roadbuddy-backend/internal/auth/domain"
	"roadbuddy-backend/pkg/apperror"

	"firebase.google.com/go/v4/auth"
)

// firebaseIdentity delegates accounts and ID tokens to Firebase Auth.
type firebaseIdentity struct {
	client *auth.Client
}

func NewFirebaseIdentity(client *auth.Client) IdentityProvider {
	return &firebaseIdentity{client: client}
}

func (f *firebaseIdentity) CreateAccount(ctx context.Context, email, password, name string) (string, string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(name)

	record, err := f.client.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", "", apperror.ErrEmailExists
		}
		return "", "", fmt.Errorf("firebase create user: %w", err)
	}
	// Clients sign in with the Firebase SDK, so no token is issued here.
	return record.UID, "", nil
}

func (f *firebaseIdentity) Verify(ctx context.Context, token string) (*authdomain.Identity, error) {
	decoded, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, err
	}

	identity := &authdomain.Identity{UID: decoded.UID}
	if name, ok := decoded.Claims["name"].(string); ok {
		identity.Name = name
	}
	if email, ok := decoded.Claims["email"].(string); ok {
		identity.Email = email
	}
	return identity, nil
}
