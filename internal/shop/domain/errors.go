package domain

import "errors"

var (
	ErrSKUNotFound       = errors.New("sku not found")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrPaymentDeclined   = errors.New("payment declined")
)
