package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable catalog entry. Stock is never reserved at order
// creation; the settlement-time re-check is the only binding one.
type Product struct {
	ID            string
	Name          string
	Price         decimal.Decimal
	StockQuantity int
	IsAvailable   bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CanFulfill reports whether the product can currently cover quantity units.
func (p Product) CanFulfill(quantity int) bool {
	return p.IsAvailable && p.StockQuantity >= quantity
}
