package service

import "errors"

var (
	ErrEmptyLines           = errors.New("order must have at least one line")
	ErrInvalidQuantity      = errors.New("quantity must be greater than zero")
	ErrInvalidProductID     = errors.New("invalid product id")
	ErrInvalidCustomerID    = errors.New("invalid customer id")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidDeliveryDate  = errors.New("invalid delivery date")
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrSchoolRequired       = errors.New("school is required")
	ErrProductNotFound      = errors.New("product not found")
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrDeliveredImmutable   = errors.New("delivered orders cannot be modified")
	ErrCustomerHasOrders    = errors.New("customer has orders")
)
