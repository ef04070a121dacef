package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	authdomain "roadbuddy-backend/internal/auth/domain"
	"roadbuddy-backend/internal/auth/repository"
	"roadbuddy-backend/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// devIdentity issues and verifies HS256 tokens locally. It stands in for
// Firebase Auth when no Firebase project is configured.
type devIdentity struct {
	userRepo repository.UserRepository
	secret   []byte
	expiry   time.Duration
}

func NewDevIdentity(userRepo repository.UserRepository, secret string, expiry time.Duration) IdentityProvider {
	return &devIdentity{
		userRepo: userRepo,
		secret:   []byte(secret),
		expiry:   expiry,
	}
}

func (d *devIdentity) CreateAccount(ctx context.Context, email, password, name string) (string, string, error) {
	existing, err := d.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", "", err
	}
	if existing != nil {
		return "", "", apperror.ErrEmailExists
	}

	uid := uuid.New().String()
	token, err := d.IssueToken(uid, name, email)
	if err != nil {
		return "", "", err
	}
	return uid, token, nil
}

// IssueToken signs an access token for the given identity.
func (d *devIdentity) IssueToken(uid, name, email string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   uid,
		"name":  name,
		"email": email,
		"exp":   time.Now().Add(d.expiry).Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(d.secret)
}

func (d *devIdentity) Verify(ctx context.Context, tokenString string) (*authdomain.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return d.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	uid, _ := claims["sub"].(string)
	if uid == "" {
		return nil, errors.New("invalid token claims")
	}
	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	return &authdomain.Identity{UID: uid, Name: name, Email: email}, nil
}
