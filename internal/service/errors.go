package service

import "errors"

var (
	ErrValidation = errors.New("validation") // 400
	ErrNotFound   = errors.New("not found")  // 404

	ErrEmptyCart             = errors.New("cart is empty")
	ErrAddressNotFound       = errors.New("address not found")
	ErrOfferUnavailable      = errors.New("offer unavailable")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrPaymentIntentConflict = errors.New("payment already settled for order")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrReturnWindowClosed    = errors.New("return window closed")
)
