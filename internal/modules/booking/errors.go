package booking

import "errors"

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrFundiNotFound     = errors.New("fundi not found")
	ErrServiceNotFound   = errors.New("service not found")
	ErrFundiUnavailable  = errors.New("fundi is not accepting bookings")
	ErrPastBookingDate   = errors.New("booking date must be in the future")
	ErrInvalidHours      = errors.New("estimated hours must be at least 1")
	ErrNotAllowed        = errors.New("you are not a participant of this booking")
	ErrInvalidStatus     = errors.New("invalid booking status")
	ErrInvalidTransition = errors.New("illegal booking status transition")
)
