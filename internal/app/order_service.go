package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/Charvyearl/cashless/internal/clock"
	"github.com/Charvyearl/cashless/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderLedgerStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	CreateOrder(ctx context.Context, order domain.Order) error
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error)
	SetOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus, at time.Time) error
	GetPayer(ctx context.Context, kind domain.PayerKind, payerID string) (domain.Payer, error)
}

// OrderService owns the order ledger: creation with snapshotted prices and
// the operator-driven parts of the status machine.
type OrderService struct {
	store  OrderLedgerStore
	clock  clock.Clock
	logger *slog.Logger
}

func NewOrderService(store OrderLedgerStore, clk clock.Clock, logger *slog.Logger) *OrderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderService{
		store:  store,
		clock:  clk,
		logger: logger,
	}
}

type CreateOrderLine struct {
	ProductID string
	Quantity  int
}

type CreateOrderInput struct {
	Lines         []CreateOrderLine
	PaymentMethod string
}

const defaultPaymentMethod = "card"

// CreateOrder re-reads current catalog prices, snapshots them into lines and
// persists the order as pending. Stock is checked but not reserved; the
// settlement-time re-check is the binding one.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (domain.Order, error) {
	if len(in.Lines) == 0 {
		return domain.Order{}, domain.ErrEmptyOrder
	}
	for _, line := range in.Lines {
		if line.ProductID == "" {
			return domain.Order{}, domain.ErrProductNotFound
		}
		if line.Quantity <= 0 {
			return domain.Order{}, domain.ErrInvalidQuantity
		}
	}

	method := in.PaymentMethod
	if method == "" {
		method = defaultPaymentMethod
	}

	now := s.clock.Now()
	var result domain.Order

	err := s.store.WithTx(ctx, func(txCtx context.Context) error {
		order := domain.Order{
			ID:            uuid.NewString(),
			Status:        domain.OrderStatusPending,
			PaymentMethod: method,
			TotalAmount:   decimal.Zero,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		for _, line := range in.Lines {
			product, err := s.store.GetProduct(txCtx, line.ProductID)
			if err != nil {
				return err
			}
			if !product.IsAvailable {
				return domain.ErrProductUnavailable
			}
			if product.StockQuantity < line.Quantity {
				return &domain.InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Required:    line.Quantity,
					Available:   product.StockQuantity,
				}
			}

			subtotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			order.Lines = append(order.Lines, domain.OrderLine{
				ID:          uuid.NewString(),
				OrderID:     order.ID,
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				UnitPrice:   product.Price,
				Subtotal:    subtotal,
			})
			order.TotalAmount = order.TotalAmount.Add(subtotal)
		}

		if err := s.store.CreateOrder(txCtx, order); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.logger.Info("order created",
		"order_id", result.ID,
		"lines", len(result.Lines),
		"total", result.TotalAmount.StringFixed(2),
	)
	return result, nil
}

// MarkReady transitions pending -> ready.
func (s *OrderService) MarkReady(ctx context.Context, orderID string) (domain.Order, error) {
	return s.transition(ctx, orderID, domain.OrderStatusReady)
}

// Cancel transitions pending/ready -> cancelled. Creation never takes stock,
// so there is nothing to restore here; cancel must not touch inventory.
func (s *OrderService) Cancel(ctx context.Context, orderID string) (domain.Order, error) {
	return s.transition(ctx, orderID, domain.OrderStatusCancelled)
}

func (s *OrderService) transition(ctx context.Context, orderID string, next domain.OrderStatus) (domain.Order, error) {
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

	s.logger.Info("order status changed", "order_id", orderID, "status", string(next))
	return result, nil
}

// PayerSummary is the display identity of an order's resolved payer.
type PayerSummary struct {
	ID          string
	Kind        domain.PayerKind
	DisplayName string
	CardID      string
}

type OrderDetails struct {
	Order domain.Order
	Payer *PayerSummary
}

// GetDetails returns the order, its lines joined with product display fields,
// and the payer's display identity when settlement has attached one.
func (s *OrderService) GetDetails(ctx context.Context, orderID string) (OrderDetails, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return OrderDetails{}, err
	}

	details := OrderDetails{Order: order}
	if kind, payerID, ok := order.PayerRef(); ok {
		payer, err := s.store.GetPayer(ctx, kind, payerID)
		if err != nil {
			return OrderDetails{}, err
		}
		details.Payer = &PayerSummary{
			ID:          payer.ID,
			Kind:        payer.Kind,
			DisplayName: payer.DisplayName,
			CardID:      payer.CardID,
		}
	}
	return details, nil
}
