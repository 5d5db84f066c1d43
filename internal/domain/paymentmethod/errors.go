package paymentmethod

import "errors"

var (
	ErrMethodNotFound = errors.New("payment method not found")
	ErrInvalidType    = errors.New("invalid payment method type")
	ErrInvalidCard    = errors.New("invalid card number")
	ErrLabelRequired  = errors.New("label is required")
)
