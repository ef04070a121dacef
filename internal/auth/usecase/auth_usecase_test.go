package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	authdto "roadbuddy-backend/internal/auth/dto"
	"roadbuddy-backend/internal/auth/repository"
	"roadbuddy-backend/pkg/apperror"
	"roadbuddy-backend/pkg/docstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth(t *testing.T) (AuthUsecase, *docstore.MemoryStore) {
	t.Helper()
	store := docstore.NewMemoryStore()
	userRepo := repository.NewUserRepository(store)
	identity := NewDevIdentity(userRepo, "test-secret", time.Hour)
	return NewAuthUsecase(userRepo, identity), store
}

func TestSignupCreatesUserDocument(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestAuth(t)

	resp, err := uc.Signup(ctx, &authdto.SignupRequest{Email: "ana@example.com", Password: "secret1", Name: "Ana"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, "Ana", resp.User.Name)
	assert.Empty(t, resp.User.RidesPosted)
	assert.Zero(t, resp.User.UnreadNotificationCount)

	user, err := uc.GetUser(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)

	identity, err := uc.ValidateToken(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, identity.UID)
	assert.Equal(t, "Ana", identity.Name)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestAuth(t)

	_, err := uc.Signup(ctx, &authdto.SignupRequest{Email: "ana@example.com", Password: "secret1", Name: "Ana"})
	require.NoError(t, err)

	_, err = uc.Signup(ctx, &authdto.SignupRequest{Email: "ana@example.com", Password: "secret2", Name: "Other"})
	assert.ErrorIs(t, err, apperror.ErrEmailExists)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestSignupReportsStoreFailure(t *testing.T) {
	ctx := context.Background()
	uc, store := newTestAuth(t)
	store.InjectFailure(docstore.OpSet, "users", "", errors.New("unavailable"))

	_, err := uc.Signup(ctx, &authdto.SignupRequest{Email: "ana@example.com", Password: "secret1", Name: "Ana"})
	assert.Equal(t, apperror.KindDependency, apperror.KindOf(err))
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	uc, _ := newTestAuth(t)

	_, err := uc.ValidateToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	other := NewDevIdentity(nil, "another-secret", time.Hour).(*devIdentity)
	token, err := other.IssueToken("u1", "Ana", "ana@example.com")
	require.NoError(t, err)

	uc, _ := newTestAuth(t)
	_, err = uc.ValidateToken(context.Background(), token)
	assert.Error(t, err)
}

func TestGetUserNotFound(t *testing.T) {
	uc, _ := newTestAuth(t)

	_, err := uc.GetUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperror.ErrUserNotFound)
}
