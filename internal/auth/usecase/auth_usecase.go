package usecase

import (
	"context"
	"errors"

	authdomain "roadbuddy-backend/internal/auth/domain"
	authdto "roadbuddy-backend/internal/auth/dto"
	"roadbuddy-backend/internal/auth/repository"
	"roadbuddy-backend/pkg/apperror"
	"roadbuddy-backend/pkg/logger"

	"go.uber.org/zap"
)

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	userRepo repository.UserRepository
	identity IdentityProvider
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(userRepo repository.UserRepository, identity IdentityProvider) AuthUsecase {
	return &authUsecase{
		userRepo: userRepo,
		identity: identity,
	}
}

func (u *authUsecase) Signup(ctx context.Context, req *authdto.SignupRequest) (*authdto.SignupResponse, error) {
	uid, token, err := u.identity.CreateAccount(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, apperror.ErrEmailExists) {
			return nil, err
		}
		return nil, apperror.NewDependencyError("failed to create account", err)
	}

	user := &authdomain.User{
		ID:    uid,
		Name:  req.Name,
		Email: req.Email,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		logger.Error("[Auth] Account created but user document failed", zap.String("uid", uid), zap.Error(err))
		return nil, apperror.NewDependencyError("account created but profile could not be saved", err)
	}

	logger.Info("[Auth] User signed up", zap.String("uid", uid))
	return &authdto.SignupResponse{
		User:  authdto.NewUserResponse(user),
		Token: token,
	}, nil
}

func (u *authUsecase) ValidateToken(ctx context.Context, token string) (*authdomain.Identity, error) {
	identity, err := u.identity.Verify(ctx, token)
	if err != nil {
		return nil, apperror.ErrUnauthenticated.Wrap(err)
	}
	return identity, nil
}

func (u *authUsecase) GetUser(ctx context.Context, userID string) (*authdomain.User, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.NewDependencyError("failed to load user", err)
	}
	if user == nil {
		return nil, apperror.ErrUserNotFound
	}
	return user, nil
}
