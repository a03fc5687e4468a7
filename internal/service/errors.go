package service

import (
	"errors"
	"fmt"
)

// Error kinds.  Every error returned by the Catalog and the Scheduler wraps
// exactly one of these, so transports can pick a response with errors.Is
// instead of parsing messages.
var (
	// ErrValidation marks malformed or missing input the caller can correct.
	ErrValidation = errors.New("validation error")
	// ErrConflict marks a request that overlaps an existing booking.
	ErrConflict = errors.New("conflict")
	// ErrNotFound marks an unknown pitch or booking identifier.
	ErrNotFound = errors.New("not found")
	// ErrStorage marks a failure of the underlying document store.
	ErrStorage = errors.New("storage error")
)

// Specific rules.  The message names the violated rule.
var (
	ErrMissingField   = fmt.Errorf("%w: missing field", ErrValidation)
	ErrInvalidEmail   = fmt.Errorf("%w: invalid email", ErrValidation)
	ErrInvalidDate    = fmt.Errorf("%w: invalid date, expected YYYY-MM-DD", ErrValidation)
	ErrInvalidTime    = fmt.Errorf("%w: invalid time, expected HH:MM", ErrValidation)
	ErrEndBeforeStart = fmt.Errorf("%w: end time must be after start time", ErrValidation)
	ErrInvalidPrice   = fmt.Errorf("%w: price per hour must be positive", ErrValidation)

	ErrSlotBooked = fmt.Errorf("%w: time slot is already booked", ErrConflict)

	ErrPitchNotFound   = fmt.Errorf("%w: pitch not found", ErrNotFound)
	ErrBookingNotFound = fmt.Errorf("%w: booking not found", ErrNotFound)
)

func missingField(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, name)
}

func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
