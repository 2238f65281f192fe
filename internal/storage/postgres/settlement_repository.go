package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Charvyearl/cashless/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// SettlementRepository gives the settlement engine its locked view of
// orders, payers and products, and applies the terminal writes.
type SettlementRepository struct {
	pool *pgxpool.Pool
}

func NewSettlementRepository(pool *pgxpool.Pool) *SettlementRepository {
	return &SettlementRepository{pool: pool}
}

func (r *SettlementRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *SettlementRepository) GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error) {
	return getOrder(ctx, r.pool, orderID, true)
}

func (r *SettlementRepository) FindPayerByCardForUpdate(ctx context.Context, cardID string) (domain.Payer, error) {
	return findPayerByCard(ctx, r.pool, cardID, true)
}

func (r *SettlementRepository) GetProductForUpdate(ctx context.Context, productID string) (domain.Product, error) {
	return getProduct(ctx, r.pool, productID, true)
}

func (r *SettlementRepository) DecrementStock(ctx context.Context, productID string, quantity int) error {
	return decrementStock(ctx, r.pool, productID, quantity)
}

func (r *SettlementRepository) DebitPayer(ctx context.Context, kind domain.PayerKind, payerID string, amount decimal.Decimal) error {
	return debitPayer(ctx, r.pool, kind, payerID, amount)
}

// AttachPayerAndComplete records the payer reference and the terminal status
// in one statement. Which payer column is written is the only kind branch on
// the settlement path.
func (r *SettlementRepository) AttachPayerAndComplete(ctx context.Context, orderID string, kind domain.PayerKind, payerID string, at time.Time) error {
	var column string
	switch kind {
	case domain.PayerKindHolder:
		column = "holder_id"
	case domain.PayerKindSecondaryHolder:
		column = "secondary_holder_id"
	default:
		return fmt.Errorf("unknown payer kind %q", kind)
	}

	stmt := fmt.Sprintf(`UPDATE orders SET status = $2, %s = $3, updated_at = $4 WHERE id = $1`, column)

	tag, err := exec(ctx, r.pool, stmt, orderID, domain.OrderStatusCompleted, payerID, at)
	if err != nil {
		return fmt.Errorf("complete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *SettlementRepository) SetOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus, at time.Time) error {
	return setOrderStatus(ctx, r.pool, orderID, status, at)
}
