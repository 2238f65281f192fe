package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmptyOrder         = errors.New("order has no lines")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrInvalidPIN         = errors.New("pin must be exactly four digits")
	ErrPINMismatch        = errors.New("pin mismatch")
	ErrUnknownStatus      = errors.New("unknown order status")
	ErrCardIDRequired     = errors.New("card id required")
	ErrInvalidID          = errors.New("invalid id")
	ErrNoScan             = errors.New("no card scan observed")
	ErrStaleScan          = errors.New("card scan predates current attempt")
)

// InvalidTransitionError reports a status-machine violation.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

// InsufficientStockError names the first product whose current stock cannot
// cover an order line at settlement time.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Required    int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: required %d, available %d",
		e.ProductName, e.Required, e.Available)
}

// InsufficientBalanceError reports a payer balance that cannot cover an
// order total.
type InsufficientBalanceError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: required %s, available %s",
		e.Required.StringFixed(2), e.Available.StringFixed(2))
}
