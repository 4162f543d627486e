package billing

import "errors"

// Contract violations surfaced by the billing core. These are programming or
// validation errors, not transient failures; callers must not retry them.
var (
	// ErrInvalidTransition is returned when a requested status change is not
	// in the allowed-next set for the document's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrOverpayment is returned when a payment amount exceeds the remaining
	// amount due. Paying the exact amount due is allowed.
	ErrOverpayment = errors.New("payment exceeds amount due")

	// ErrInvalidPaymentAmount is returned when a payment amount is zero or negative.
	ErrInvalidPaymentAmount = errors.New("payment amount must be positive")

	// ErrUnknownAmountType is returned for amount types outside the enum.
	ErrUnknownAmountType = errors.New("unknown amount type")

	// ErrUnknownFrequency is returned for recurrence frequencies outside the enum.
	ErrUnknownFrequency = errors.New("unknown recurrence frequency")
)
