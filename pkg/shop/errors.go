package shop

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrCartNotFound      = errors.New("active cart not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrProductNotFound   = errors.New("product not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrCartBusy          = errors.New("cart is being updated")
	ErrNotifyFailed      = errors.New("notification failed")
	ErrUnauthorized      = errors.New("unauthorized")
)
