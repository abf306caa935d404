package booking

import (
	"errors"
	"fmt"
)

// Sentinel errors of the calculator.  Every value returned by
// ValidateBookingRequest and CheckTransition matches one of them through
// errors.Is.
var (
	ErrInvalidDateRange   = errors.New("invalid_date_range")
	ErrGuestCountExceeded = errors.New("guest_count_exceeded")
	ErrInvalidGuestCount  = errors.New("invalid_guest_count")
	ErrRoomUnavailable    = errors.New("room_unavailable")
	ErrInvalidTransition  = errors.New("invalid_transition")
)

// ValidationError carries a human readable message next to one of the
// sentinel kinds above.
type ValidationError struct {
	Kind    error
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Kind }

// Code returns the machine readable error code, e.g. "room_unavailable".
func (e *ValidationError) Code() string { return e.Kind.Error() }

func newError(kind error, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
