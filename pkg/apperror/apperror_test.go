package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", NewValidationError("bad"), http.StatusBadRequest},
		{"not found", ErrRideNotFound, http.StatusNotFound},
		{"conflict", ErrRideFull, http.StatusConflict},
		{"authorization", ErrNotOwner, http.StatusForbidden},
		{"dependency", NewDependencyError("store down", errors.New("boom")), http.StatusBadGateway},
		{"foreign", errors.New("plain"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("join: %w", ErrDuplicateRide), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrorsIsMatchesCode(t *testing.T) {
	err := ErrRideFull.WithMessage("Ride abc is full")
	assert.True(t, errors.Is(err, ErrRideFull))
	assert.False(t, errors.Is(err, ErrRideNotFound))
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("deadline exceeded")
	err := NewDependencyError("failed to update user", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "deadline exceeded", err.Details)
	assert.Contains(t, err.Error(), "failed to update user")
}
