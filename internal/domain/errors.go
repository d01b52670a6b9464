package domain

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

var (
	ErrListingNotFound = fmt.Errorf("listing %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrBookingNotFound = fmt.Errorf("booking %w", ErrNotFound)
)

var (
	ErrInvalidTransition        = errors.New("booking status transition not allowed")
	ErrConcurrentUpdate         = errors.New("concurrent update conflict, retry the operation")
	ErrListingHasActiveBookings = errors.New("listing has active bookings")

	// ErrStatusConflict is returned by repositories when a conditional
	// status update matched no row because the current status is not one
	// of the expected ones.
	ErrStatusConflict = errors.New("booking status changed")
)

var (
	ErrUsernameTaken      = errors.New("username or email is already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("access denied")
)

var (
	ErrValidation = errors.New("validation error")
)
