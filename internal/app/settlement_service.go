package app

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/Charvyearl/cashless/internal/clock"
	"github.com/Charvyearl/cashless/internal/domain"
	"github.com/shopspring/decimal"
)

type SettlementStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error)
	FindPayerByCardForUpdate(ctx context.Context, cardID string) (domain.Payer, error)
	GetProductForUpdate(ctx context.Context, productID string) (domain.Product, error)
	DecrementStock(ctx context.Context, productID string, quantity int) error
	DebitPayer(ctx context.Context, kind domain.PayerKind, payerID string, amount decimal.Decimal) error
	AttachPayerAndComplete(ctx context.Context, orderID string, kind domain.PayerKind, payerID string, at time.Time) error
	SetOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus, at time.Time) error
}

// SettlementService converts a pending/ready order into a completed one by
// verifying identity and PIN, re-validating stock and balance under row
// locks, and applying the debit, decrements and terminal transition as one
// transaction.
type SettlementService struct {
	store  SettlementStore
	clock  clock.Clock
	logger *slog.Logger
}

func NewSettlementService(store SettlementStore, clk clock.Clock, logger *slog.Logger) *SettlementService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettlementService{
		store:  store,
		clock:  clk,
		logger: logger,
	}
}

type SettleInput struct {
	OrderID string
	CardID  string
	PIN     string
}

type SettleResult struct {
	Order         domain.Order
	Payer         PayerSummary
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
}

// Settle runs the full settlement flow. The PIN shape is rejected before any
// account lookup. Everything after loading the order happens inside one
// transaction: the order row, the payer row and every implicated product row
// are locked before re-validation, so a concurrent settle, cancel or
// competing order over the same stock serializes behind this one.
func (s *SettlementService) Settle(ctx context.Context, in SettleInput) (SettleResult, error) {
	if err := domain.ValidatePIN(in.PIN); err != nil {
		return SettleResult{}, err
	}
	if in.CardID == "" {
		return SettleResult{}, domain.ErrCardIDRequired
	}

	now := s.clock.Now()
	var result SettleResult

	err := s.store.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.store.GetOrderForUpdate(txCtx, in.OrderID)
		if err != nil {
			return err
		}
		if !order.Status.IsSettleable() {
			return &domain.InvalidTransitionError{From: order.Status, To: domain.OrderStatusCompleted}
		}

		payer, err := s.store.FindPayerByCardForUpdate(txCtx, in.CardID)
		if err != nil {
			return err
		}
		if !payer.VerifyPIN(in.PIN) {
			return domain.ErrPINMismatch
		}

		if err := s.revalidateAndTakeStock(txCtx, order.Lines, func() error {
			if !payer.CanPay(order.TotalAmount) {
				return &domain.InsufficientBalanceError{
					Required:  order.TotalAmount,
					Available: payer.Balance,
				}
			}
			return nil
		}); err != nil {
			return err
		}

		if err := s.store.DebitPayer(txCtx, payer.Kind, payer.ID, order.TotalAmount); err != nil {
			return err
		}
		if err := s.store.AttachPayerAndComplete(txCtx, order.ID, payer.Kind, payer.ID, now); err != nil {
			return err
		}

		order.Status = domain.OrderStatusCompleted
		order.UpdatedAt = now
		switch payer.Kind {
		case domain.PayerKindHolder:
			id := payer.ID
			order.HolderID = &id
		case domain.PayerKindSecondaryHolder:
			id := payer.ID
			order.SecondaryHolderID = &id
		}

		result = SettleResult{
			Order: order,
			Payer: PayerSummary{
				ID:          payer.ID,
				Kind:        payer.Kind,
				DisplayName: payer.DisplayName,
				CardID:      payer.CardID,
			},
			BalanceBefore: payer.Balance,
			BalanceAfter:  payer.Balance.Sub(order.TotalAmount),
		}
		return nil
	})
	if err != nil {
		return SettleResult{}, err
	}

	s.logger.Info("order settled",
		"order_id", result.Order.ID,
		"payer_kind", string(result.Payer.Kind),
		"amount", result.Order.TotalAmount.StringFixed(2),
	)
	return result, nil
}

// UpdateStatus is the operator override for moving an order without the
// card/PIN flow. Forcing completed still re-checks and decrements stock, but
// never debits a balance: this path exists for orders paid by other means.
func (s *SettlementService) UpdateStatus(ctx context.Context, orderID string, next domain.OrderStatus) (domain.Order, error) {
	now := s.clock.Now()
	var result domain.Order

	err := s.store.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.store.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(next) {
			return &domain.InvalidTransitionError{From: order.Status, To: next}
		}

		if next == domain.OrderStatusCompleted {
			if err := s.revalidateAndTakeStock(txCtx, order.Lines, nil); err != nil {
				return err
			}
		}

		if err := s.store.SetOrderStatus(txCtx, orderID, next, now); err != nil {
			return err
		}
		order.Status = next
		order.UpdatedAt = now
		result = order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.logger.Info("order status overridden", "order_id", orderID, "status", string(next))
	return result, nil
}

// revalidateAndTakeStock locks every implicated product row in ascending
// product-id order (keeps concurrent settlements from deadlocking), then
// verifies availability and quantity in the order's own line order so an
// insufficiency names the first failing line as the operator built it.
// afterChecks runs while all locks are held; nothing is written until every
// check has passed.
func (s *SettlementService) revalidateAndTakeStock(ctx context.Context, lines []domain.OrderLine, afterChecks func() error) error {
	sorted := make([]domain.OrderLine, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	locked := make(map[string]domain.Product, len(sorted))
	for _, line := range sorted {
		if _, ok := locked[line.ProductID]; ok {
			continue
		}
		product, err := s.store.GetProductForUpdate(ctx, line.ProductID)
		if err != nil {
			return err
		}
		locked[line.ProductID] = product
	}

	for _, line := range lines {
		product := locked[line.ProductID]
		if !product.CanFulfill(line.Quantity) {
			return &domain.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Required:    line.Quantity,
				Available:   product.StockQuantity,
			}
		}
	}

	if afterChecks != nil {
		if err := afterChecks(); err != nil {
			return err
		}
	}

	for _, line := range lines {
		if err := s.store.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
			return err
		}
	}
	return nil
}
