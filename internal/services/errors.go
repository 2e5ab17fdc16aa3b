package services

import "errors"

// Domain errors surfaced by the tip and redemption engines. Handlers map
// these onto HTTP status codes; anything else is an internal error.
var (
	ErrValidation        = errors.New("validation failed")
	ErrSelfTip           = errors.New("sender and recipient must differ")
	ErrAccountNotFound   = errors.New("account not found")
	ErrStreamNotFound    = errors.New("stream not found")
	ErrItemNotFound      = errors.New("tip menu item not found")
	ErrGoalNotFound      = errors.New("goal not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrBelowMinimum      = errors.New("redemption below minimum")
	ErrConflict          = errors.New("transaction conflict")
	ErrPayoutProvider    = errors.New("payout provider error")
)
