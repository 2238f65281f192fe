package postgres

import (
	"context"
	"fmt"

	"github.com/Charvyearl/cashless/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// getProduct loads one catalog row, optionally locking it FOR UPDATE for the
// settlement-time re-validation.
func getProduct(ctx context.Context, pool *pgxpool.Pool, productID string, forUpdate bool) (domain.Product, error) {
	q := `
SELECT id, name, price, stock_quantity, is_available, created_at, updated_at
FROM products
WHERE id = $1`
	if forUpdate {
		q += `
FOR UPDATE`
	}

	var p domain.Product
	err := queryRow(ctx, pool, q, productID).Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.StockQuantity,
		&p.IsAvailable,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Product{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// decrementStock applies a guarded decrement. The guard never fires when the
// caller holds the product row lock and has re-validated quantity, but a
// zero-row update is still surfaced as an insufficiency rather than silently
// succeeding.
func decrementStock(ctx context.Context, pool *pgxpool.Pool, productID string, quantity int) error {
	const stmt = `
UPDATE products
SET stock_quantity = stock_quantity - $2, updated_at = NOW()
WHERE id = $1 AND stock_quantity >= $2`

	tag, err := exec(ctx, pool, stmt, productID, quantity)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		product, err := getProduct(ctx, pool, productID, false)
		if err != nil {
			return err
		}
		return &domain.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Required:    quantity,
			Available:   product.StockQuantity,
		}
	}
	return nil
}
