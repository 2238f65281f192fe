package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ParseOrderStatus validates an externally supplied status value.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusReady, OrderStatusCompleted, OrderStatusCancelled:
		return OrderStatus(s), nil
	}
	return "", ErrUnknownStatus
}

// CanTransitionTo reports whether the status machine allows moving from s to
// next. Completed and cancelled are terminal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusReady || next == OrderStatusCompleted || next == OrderStatusCancelled
	case OrderStatusReady:
		return next == OrderStatusCompleted || next == OrderStatusCancelled
	}
	return false
}

// IsSettleable reports whether an order in this status may still be settled.
func (s OrderStatus) IsSettleable() bool {
	return s == OrderStatusPending || s == OrderStatusReady
}

// Order is a purchase built by an operator and settled against a payer's
// stored balance. TotalAmount always equals the sum of line subtotals.
// At most one of HolderID/SecondaryHolderID is set, and only once settled.
type Order struct {
	ID                string
	Status            OrderStatus
	TotalAmount       decimal.Decimal
	PaymentMethod     string
	HolderID          *string
	SecondaryHolderID *string
	Lines             []OrderLine
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// PayerRef returns the attached payer reference, if any.
func (o Order) PayerRef() (PayerKind, string, bool) {
	if o.HolderID != nil {
		return PayerKindHolder, *o.HolderID, true
	}
	if o.SecondaryHolderID != nil {
		return PayerKindSecondaryHolder, *o.SecondaryHolderID, true
	}
	return "", "", false
}

// OrderLine is one product position on an order. UnitPrice is snapshotted at
// order creation and never follows later catalog price changes.
type OrderLine struct {
	ID          string
	OrderID     string
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}
