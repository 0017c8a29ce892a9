package payment

import "errors"

var (
	ErrBookingNotFound     = errors.New("booking not found")
	ErrNotAllowed          = errors.New("booking does not belong to requester")
	ErrDuplicatePayment    = errors.New("payment already exists for this booking")
	ErrInvalidMethod       = errors.New("unknown payment method")
	ErrMissingPhone        = errors.New("phone number is required for mobile money payments")
	ErrCallbackUnreachable = errors.New("callback URL is missing or not publicly reachable")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrInvalidStatus       = errors.New("unknown payment status")
	ErrNotQueryable        = errors.New("payment has no checkout request id to query")
)
