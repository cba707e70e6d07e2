package service

import (
	"errors"

	"cab_booking/internal/identity"
	"cab_booking/internal/model"
)

var (
	ErrUserAlreadyExists  = errors.New("User already exists with this email")
	ErrInvalidCredentials = errors.New("Invalid email or password")

	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
	ErrUnknownUser  = errors.New("token user no longer exists")

	ErrCabNotFound           = errors.New("Cab not found")
	ErrCabInUse              = errors.New("Cab has an active booking")
	ErrDuplicateLicensePlate = errors.New("Cab with this license plate already exists")
	ErrCabNotAvailable       = errors.New("Cab is not available")

	ErrBookingNotFound = errors.New("Booking not found")
	ErrStatusConflict  = errors.New("booking status was changed concurrently")
)

// publicErrors may be shown to API clients as they are
var publicErrors = []error{
	ErrValidation,
	ErrUserAlreadyExists,
	ErrInvalidCredentials,
	ErrCabNotFound,
	ErrCabInUse,
	ErrDuplicateLicensePlate,
	ErrCabNotAvailable,
	ErrBookingNotFound,
	ErrStatusConflict,
	model.ErrInvalidStatus,
	model.ErrInvalidTransition,
	identity.ErrUnauthenticated,
	identity.ErrForbidden,
}

// IsPublic reports whether err carries a message meant for API clients.
// Anything else is an internal failure and must be masked.
func IsPublic(err error) bool {
	for _, target := range publicErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
