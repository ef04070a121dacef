package usecase

import (
	"context"

	authdomain "roadbuddy-backend/internal/auth/domain"
	authdto "roadbuddy-backend/internal/auth/dto"
)

// AuthUsecase covers signup, token verification and profile lookup.
type AuthUsecase interface {
	Signup(ctx context.Context, req *authdto.SignupRequest) (*authdto.SignupResponse, error)
	ValidateToken(ctx context.Context, token string) (*authdomain.Identity, error)
	GetUser(ctx context.Context, userID string) (*authdomain.User, error)
}

// IdentityProvider creates accounts and verifies bearer tokens.
type IdentityProvider interface {
	// CreateAccount returns the new user's ID and, for providers that issue
	// their own tokens, a bearer token.
	CreateAccount(ctx context.Context, email, password, name string) (uid, token string, err error)
	Verify(ctx context.Context, token string) (*authdomain.Identity, error)
}
