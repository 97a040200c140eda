package errs

import "errors"

// Domain-specific sentinel errors shared across usecase layers
var (
	// Destination errors
	ErrDestinationNotFound = errors.New("destination not found")

	// Booking errors
	ErrBookingNotFound        = errors.New("booking not found")
	ErrInvalidQuantity        = errors.New("invalid participant count")
	ErrDuplicateBookingNumber = errors.New("duplicate booking number")

	// Lifecycle errors
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrConflict          = errors.New("booking state changed concurrently")
	ErrForbidden         = errors.New("caller may not perform this transition")

	// Operation errors
	ErrStoreUnavailable = errors.New("booking store unavailable")
)
