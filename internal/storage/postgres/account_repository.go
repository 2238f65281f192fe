package postgres

import (
	"context"
	"fmt"

	"github.com/Charvyearl/cashless/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// AccountRepository resolves cards against the two disjoint account stores.
type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) FindPayerByCard(ctx context.Context, cardID string) (domain.Payer, error) {
	return findPayerByCard(ctx, r.pool, cardID, false)
}

// payerTable maps an account kind to its table. The two kinds are stored
// separately on purpose; this is the one place persistence branches on kind.
func payerTable(kind domain.PayerKind) (string, error) {
	switch kind {
	case domain.PayerKindHolder:
		return "holders", nil
	case domain.PayerKindSecondaryHolder:
		return "secondary_holders", nil
	}
	return "", fmt.Errorf("unknown payer kind %q", kind)
}

// findPayerByCard checks the holder table first, then the secondary holder
// table. Inactive accounts are filtered out in the query itself, so a
// disabled card resolves as not found.
func findPayerByCard(ctx context.Context, pool *pgxpool.Pool, cardID string, forUpdate bool) (domain.Payer, error) {
	for _, kind := range []domain.PayerKind{domain.PayerKindHolder, domain.PayerKindSecondaryHolder} {
		payer, err := scanPayer(ctx, pool, kind, "card_id = $1 AND is_active = TRUE", cardID, forUpdate)
		if err == nil {
			return payer, nil
		}
		if err != domain.ErrAccountNotFound {
			return domain.Payer{}, err
		}
	}
	return domain.Payer{}, domain.ErrAccountNotFound
}

func getPayerByID(ctx context.Context, pool *pgxpool.Pool, kind domain.PayerKind, payerID string) (domain.Payer, error) {
	return scanPayer(ctx, pool, kind, "id = $1", payerID, false)
}

func scanPayer(ctx context.Context, pool *pgxpool.Pool, kind domain.PayerKind, where, arg string, forUpdate bool) (domain.Payer, error) {
	table, err := payerTable(kind)
	if err != nil {
		return domain.Payer{}, err
	}

	q := fmt.Sprintf(`
SELECT id, card_id, display_name, balance, pin_hash, is_active
FROM %s
WHERE %s`, table, where)
	if forUpdate {
		q += `
FOR UPDATE`
	}

	p := domain.Payer{Kind: kind}
	err = queryRow(ctx, pool, q, arg).Scan(
		&p.ID,
		&p.CardID,
		&p.DisplayName,
		&p.Balance,
		&p.PINHash,
		&p.IsActive,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Payer{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Payer{}, domain.ErrAccountNotFound
		}
		return domain.Payer{}, fmt.Errorf("get %s: %w", table, err)
	}
	return p, nil
}

// debitPayer applies a guarded debit against whichever table the payer kind
// lives in. The guard backs up the in-transaction balance check; a zero-row
// update reports the true remaining balance.
func debitPayer(ctx context.Context, pool *pgxpool.Pool, kind domain.PayerKind, payerID string, amount decimal.Decimal) error {
	table, err := payerTable(kind)
	if err != nil {
		return err
	}

	stmt := fmt.Sprintf(`
UPDATE %s
SET balance = balance - $2, updated_at = NOW()
WHERE id = $1 AND balance >= $2`, table)

	tag, err := exec(ctx, pool, stmt, payerID, amount)
	if err != nil {
		return fmt.Errorf("debit %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		payer, err := getPayerByID(ctx, pool, kind, payerID)
		if err != nil {
			return err
		}
		return &domain.InsufficientBalanceError{
			Required:  amount,
			Available: payer.Balance,
		}
	}
	return nil
}
