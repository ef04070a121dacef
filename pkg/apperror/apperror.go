// Package apperror provides the error taxonomy shared by every feature package.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP layer.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindAuthorization Kind = "authorization"
	KindDependency    Kind = "dependency"
	KindUnexpected    Kind = "unexpected"
)

// Error is the structured error returned by usecases.
type Error struct {
	Kind    Kind   `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches on Code so sentinels below can be compared with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetails returns a copy of the error carrying extra detail.
func (e *Error) WithDetails(details any) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// WithMessage returns a copy of the error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	cp := *e
	cp.Message = message
	return &cp
}

// Wrap returns a copy of the error with cause attached.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.cause = cause
	if cp.Details == nil && cause != nil {
		cp.Details = cause.Error()
	}
	return &cp
}

// StatusCode returns the HTTP status for the error kind.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindAuthorization:
		return http.StatusForbidden
	case KindDependency:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Domain errors
var (
	ErrDuplicateRide    = &Error{Kind: KindConflict, Code: "duplicate_ride", Message: "You already posted a ride with the same route, date and departure time"}
	ErrDuplicateVehicle = &Error{Kind: KindConflict, Code: "duplicate_vehicle", Message: "A vehicle with this license plate and VIN already exists"}
	ErrRideFull         = &Error{Kind: KindConflict, Code: "ride_full", Message: "Ride is full"}
	ErrNotAPassenger    = &Error{Kind: KindConflict, Code: "not_a_passenger", Message: "You are not a passenger on this ride"}
	ErrAlreadyPassenger = &Error{Kind: KindConflict, Code: "already_passenger", Message: "You are already a passenger on this ride"}
	ErrEmailExists      = &Error{Kind: KindConflict, Code: "email_exists", Message: "An account with this email already exists"}

	ErrRideNotFound = &Error{Kind: KindNotFound, Code: "ride_not_found", Message: "Ride not found"}
	ErrChatNotFound = &Error{Kind: KindNotFound, Code: "chat_not_found", Message: "Ride chat not found"}
	ErrUserNotFound = &Error{Kind: KindNotFound, Code: "user_not_found", Message: "User not found"}

	ErrNotOwner          = &Error{Kind: KindAuthorization, Code: "not_owner", Message: "Only the ride owner can perform this action"}
	ErrOwnerCannotCancel = &Error{Kind: KindAuthorization, Code: "owner_cannot_cancel", Message: "The ride owner cannot cancel; delete the ride instead"}
	ErrOwnerCannotJoin   = &Error{Kind: KindAuthorization, Code: "owner_cannot_join", Message: "You cannot book your own ride"}
	ErrNotAParticipant   = &Error{Kind: KindAuthorization, Code: "not_a_participant", Message: "You are not a participant in this chat"}
	ErrUnauthenticated   = &Error{Kind: KindAuthorization, Code: "unauthenticated", Message: "Invalid or expired token"}
)

// NewValidationError creates a validation error for the given message.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Code: "validation_error", Message: message}
}

// NewNotFoundError creates a not-found error for a resource name.
func NewNotFoundError(resource string) *Error {
	return &Error{Kind: KindNotFound, Code: "not_found", Message: resource + " not found"}
}

// NewConflictError creates a conflict error.
func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Code: "conflict", Message: message}
}

// NewDependencyError wraps a failure from the document store or payment processor.
func NewDependencyError(message string, cause error) *Error {
	return (&Error{Kind: KindDependency, Code: "dependency_error", Message: message}).Wrap(cause)
}

// NewUnexpectedError wraps anything that has no better classification.
func NewUnexpectedError(cause error) *Error {
	return (&Error{Kind: KindUnexpected, Code: "unexpected_error", Message: "Unexpected error"}).Wrap(cause)
}

// As extracts an *Error from err. Unclassified errors become unexpected errors.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewUnexpectedError(err)
}

// KindOf returns the kind of err, or KindUnexpected for foreign errors.
func KindOf(err error) Kind {
	return As(err).Kind
}

// HTTPStatus returns the status code to pair with err.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return As(err).StatusCode()
}
