package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Charvyearl/cashless/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderRepository backs the order ledger: creation, reads and operator
// status transitions.
type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *OrderRepository) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	return getProduct(ctx, r.pool, productID, false)
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order domain.Order) error {
	const orderStmt = `
INSERT INTO orders (id, status, total_amount, payment_method, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := exec(ctx, r.pool, orderStmt,
		order.ID,
		order.Status,
		order.TotalAmount,
		order.PaymentMethod,
		order.CreatedAt,
		order.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	const lineStmt = `
INSERT INTO order_lines (id, order_id, product_id, quantity, unit_price, subtotal)
VALUES ($1, $2, $3, $4, $5, $6)`

	for _, line := range order.Lines {
		if _, err := exec(ctx, r.pool, lineStmt,
			line.ID,
			line.OrderID,
			line.ProductID,
			line.Quantity,
			line.UnitPrice,
			line.Subtotal,
		); err != nil {
			return fmt.Errorf("create order line: %w", err)
		}
	}
	return nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return getOrder(ctx, r.pool, orderID, false)
}

func (r *OrderRepository) GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error) {
	return getOrder(ctx, r.pool, orderID, true)
}

func (r *OrderRepository) SetOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus, at time.Time) error {
	return setOrderStatus(ctx, r.pool, orderID, status, at)
}

func (r *OrderRepository) GetPayer(ctx context.Context, kind domain.PayerKind, payerID string) (domain.Payer, error) {
	return getPayerByID(ctx, r.pool, kind, payerID)
}

// getOrder loads the order row (optionally FOR UPDATE) and its lines joined
// with product display names. Lines are immutable after creation, so only
// the order row itself is ever locked.
func getOrder(ctx context.Context, pool *pgxpool.Pool, orderID string, forUpdate bool) (domain.Order, error) {
	orderQuery := `
SELECT id, status, total_amount, payment_method, holder_id, secondary_holder_id, created_at, updated_at
FROM orders
WHERE id = $1`
	if forUpdate {
		orderQuery += `
FOR UPDATE`
	}

	var o domain.Order
	var status string
	err := queryRow(ctx, pool, orderQuery, orderID).Scan(
		&o.ID,
		&status,
		&o.TotalAmount,
		&o.PaymentMethod,
		&o.HolderID,
		&o.SecondaryHolderID,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Order{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	o.Status = domain.OrderStatus(status)

	const linesQuery = `
SELECT l.id, l.order_id, l.product_id, p.name, l.quantity, l.unit_price, l.subtotal
FROM order_lines l
JOIN products p ON p.id = l.product_id
WHERE l.order_id = $1
ORDER BY l.created_at, l.id`

	rows, err := query(ctx, pool, linesQuery, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(
			&line.ID,
			&line.OrderID,
			&line.ProductID,
			&line.ProductName,
			&line.Quantity,
			&line.UnitPrice,
			&line.Subtotal,
		); err != nil {
			return domain.Order{}, fmt.Errorf("scan order line: %w", err)
		}
		o.Lines = append(o.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return domain.Order{}, fmt.Errorf("read order lines: %w", err)
	}
	return o, nil
}

func setOrderStatus(ctx context.Context, pool *pgxpool.Pool, orderID string, status domain.OrderStatus, at time.Time) error {
	const stmt = `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`

	tag, err := exec(ctx, pool, stmt, orderID, status, at)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("set order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}
