package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Charvyearl/cashless/internal/app"
	"github.com/Charvyearl/cashless/internal/domain"
	"github.com/shopspring/decimal"
)

type stubOrderService struct {
	createOrderFn  func(ctx context.Context, in app.CreateOrderInput) (domain.Order, error)
	markReadyFn    func(ctx context.Context, orderID string) (domain.Order, error)
	cancelFn       func(ctx context.Context, orderID string) (domain.Order, error)
	getDetailsFn   func(ctx context.Context, orderID string) (app.OrderDetails, error)
	settleFn       func(ctx context.Context, in app.SettleInput) (app.SettleResult, error)
	updateStatusFn func(ctx context.Context, orderID string, status domain.OrderStatus) (domain.Order, error)
}

func (s *stubOrderService) CreateOrder(ctx context.Context, in app.CreateOrderInput) (domain.Order, error) {
	return s.createOrderFn(ctx, in)
}

func (s *stubOrderService) MarkReady(ctx context.Context, orderID string) (domain.Order, error) {
	return s.markReadyFn(ctx, orderID)
}

func (s *stubOrderService) Cancel(ctx context.Context, orderID string) (domain.Order, error) {
	return s.cancelFn(ctx, orderID)
}

func (s *stubOrderService) GetDetails(ctx context.Context, orderID string) (app.OrderDetails, error) {
	return s.getDetailsFn(ctx, orderID)
}

func (s *stubOrderService) Settle(ctx context.Context, in app.SettleInput) (app.SettleResult, error) {
	return s.settleFn(ctx, in)
}

func (s *stubOrderService) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (domain.Order, error) {
	return s.updateStatusFn(ctx, orderID, status)
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleOrder(status domain.OrderStatus) domain.Order {
	return domain.Order{
		ID:            "o1",
		Status:        status,
		TotalAmount:   money("125.00"),
		PaymentMethod: "card",
		Lines: []domain.OrderLine{
			{ProductID: "p1", ProductName: "Sandwich", Quantity: 3, UnitPrice: money("25.00"), Subtotal: money("75.00")},
			{ProductID: "p2", ProductName: "Juice", Quantity: 1, UnitPrice: money("50.00"), Subtotal: money("50.00")},
		},
	}
}

func TestHandleCreateOrder(t *testing.T) {
	t.Parallel()

	t.Run("creates an order", func(t *testing.T) {
		var got app.CreateOrderInput
		svc := &stubOrderService{
			createOrderFn: func(_ context.Context, in app.CreateOrderInput) (domain.Order, error) {
				got = in
				return sampleOrder(domain.OrderStatusPending), nil
			},
		}

		body := `{"lines":[{"product_id":"p1","quantity":3},{"product_id":"p2","quantity":1}]}`
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
		rec := httptest.NewRecorder()
		HandleCreateOrder(svc)(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if len(got.Lines) != 2 || got.Lines[0].ProductID != "p1" || got.Lines[0].Quantity != 3 {
			t.Fatalf("unexpected input: %+v", got)
		}

		var resp orderResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Status != "pending" || resp.TotalAmount != "125.00" {
			t.Fatalf("unexpected response: %+v", resp)
		}
		if resp.Lines[0].UnitPrice != "25.00" || resp.Lines[0].Subtotal != "75.00" {
			t.Fatalf("unexpected line: %+v", resp.Lines[0])
		}
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		svc := &stubOrderService{}
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"lines":`))
		rec := httptest.NewRecorder()
		HandleCreateOrder(svc)(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		svc := &stubOrderService{}
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"items":[]}`))
		rec := httptest.NewRecorder()
		HandleCreateOrder(svc)(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("maps empty order to 400", func(t *testing.T) {
		svc := &stubOrderService{
			createOrderFn: func(context.Context, app.CreateOrderInput) (domain.Order, error) {
				return domain.Order{}, domain.ErrEmptyOrder
			},
		}
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"lines":[]}`))
		rec := httptest.NewRecorder()
		HandleCreateOrder(svc)(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
		var resp errorResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Code != codeEmptyOrder {
			t.Fatalf("expected code %s, got %s", codeEmptyOrder, resp.Code)
		}
	})

	t.Run("rejects non-POST", func(t *testing.T) {
		svc := &stubOrderService{}
		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		rec := httptest.NewRecorder()
		HandleCreateOrder(svc)(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected status 405, got %d", rec.Code)
		}
	})
}

func TestHandleOrderByID_Details(t *testing.T) {
	t.Parallel()

	t.Run("returns order with payer after settlement", func(t *testing.T) {
		svc := &stubOrderService{
			getDetailsFn: func(_ context.Context, orderID string) (app.OrderDetails, error) {
				if orderID != "o1" {
					t.Fatalf("unexpected order id %s", orderID)
				}
				return app.OrderDetails{
					Order: sampleOrder(domain.OrderStatusCompleted),
					Payer: &app.PayerSummary{
						ID:          "h1",
						Kind:        domain.PayerKindHolder,
						DisplayName: "Ana Pérez",
						CardID:      "card-1",
					},
				}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/orders/o1", nil)
		rec := httptest.NewRecorder()
		HandleOrderByID(svc, svc)(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var resp orderDetailsResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Payer == nil || resp.Payer.Kind != "holder" || resp.Payer.DisplayName != "Ana Pérez" {
			t.Fatalf("unexpected payer: %+v", resp.Payer)
		}
	})

	t.Run("omits payer before settlement", func(t *testing.T) {
		svc := &stubOrderService{
			getDetailsFn: func(context.Context, string) (app.OrderDetails, error) {
				return app.OrderDetails{Order: sampleOrder(domain.OrderStatusPending)}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/orders/o1", nil)
		rec := httptest.NewRecorder()
		HandleOrderByID(svc, svc)(rec, req)

		if strings.Contains(rec.Body.String(), `"payer"`) {
			t.Fatalf("expected payer omitted, got %s", rec.Body.String())
		}
	})

	t.Run("unknown order maps to 404", func(t *testing.T) {
		svc := &stubOrderService{
			getDetailsFn: func(context.Context, string) (app.OrderDetails, error) {
				return app.OrderDetails{}, domain.ErrOrderNotFound
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/orders/missing", nil)
		rec := httptest.NewRecorder()
		HandleOrderByID(svc, svc)(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})
}

func TestHandleOrderByID_Transitions(t *testing.T) {
	t.Parallel()

	t.Run("marks ready", func(t *testing.T) {
		svc := &stubOrderService{
			markReadyFn: func(_ context.Context, orderID string) (domain.Order, error) {
				return sampleOrder(domain.OrderStatusReady), nil
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/orders/o1/ready", nil)
		rec := httptest.NewRecorder()
		HandleOrderByID(svc, svc)(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var resp orderResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Status != "ready" {
			t.Fatalf("expected ready, got %s", resp.Status)
		}
	})

	t.Run("cancels", func(t *testing.T) {
		svc := &stubOrderService{
			cancelFn: func(_ context.Context, orderID string) (domain.Order, error) {
				return sampleOrder(domain.OrderStatusCancelled), nil
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/orders/o1/cancel", nil)
		rec := httptest.NewRecorder()
		HandleOrderByID(svc, svc)(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var resp cancelOrderResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.OrderID != "o1" || resp.Status != "cancelled" {
			t.Fatalf("unexpected response: %+v", resp)
		}
	})

	t.Run("invalid transition maps to 400", func(t *testing.T) {
		svc := &stubOrderService{
			cancelFn: func(context.Context, string) (domain.Order, error) {
				return domain.Order{}, &domain.InvalidTransitionError{
					From: domain.OrderStatusCompleted,
					To:   domain.OrderStatusCancelled,
				}
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/orders/o1/cancel", nil)
		rec := httptest.NewRecorder()
		HandleOrderByID(svc, svc)(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
		var resp errorResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Code != codeInvalidTransition {
			t.Fatalf("expected code %s, got %s", codeInvalidTransition, resp.Code)
		}
	})

	t.Run("wrong method on subresource is 405", func(t *testing.T) {
		svc := &stubOrderService{}
		req := httptest.NewRequest(http.MethodGet, "/orders/o1/ready", nil)
		rec := httptest.NewRecorder()
		HandleOrderByID(svc, svc)(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected status 405, got %d", rec.Code)
		}
	})

	t.Run("unknown subresource is 404", func(t *testing.T) {
		svc := &stubOrderService{}
		req := httptest.NewRequest(http.MethodPost, "/orders/o1/refund", nil)
		rec := httptest.NewRecorder()
		HandleOrderByID(svc, svc)(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})

	t.Run("bare collection path is 404", func(t *testing.T) {
		svc := &stubOrderService{}
		req := httptest.NewRequest(http.MethodGet, "/orders/", nil)
		rec := httptest.NewRecorder()
		HandleOrderByID(svc, svc)(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})
}

func TestHandleOrderByID_Settle(t *testing.T) {
	t.Parallel()

	t.Run("settles and reports balances", func(t *testing.T) {
		var got app.SettleInput
		svc := &stubOrderService{
			settleFn: func(_ context.Context, in app.SettleInput) (app.SettleResult, error) {
				got = in
				order := sampleOrder(domain.OrderStatusCompleted)
				holderID := "h1"
				order.HolderID = &holderID
				return app.SettleResult{
					Order: order,
					Payer: app.PayerSummary{
						ID:          "h1",
						Kind:        domain.PayerKindHolder,
						DisplayName: "Ana Pérez",
						CardID:      "card-1",
					},
					BalanceBefore: money("200.00"),
					BalanceAfter:  money("75.00"),
				}, nil
			},
		}

		body := `{"card_id":"card-1","pin":"4321"}`
		req := httptest.NewRequest(http.MethodPost, "/orders/o1/settle", strings.NewReader(body))
		rec := httptest.NewRecorder()
		HandleOrderByID(svc, svc)(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.OrderID != "o1" || got.CardID != "card-1" || got.PIN != "4321" {
			t.Fatalf("unexpected input: %+v", got)
		}

		var resp settleResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.BalanceBefore != "200.00" || resp.BalanceAfter != "75.00" {
			t.Fatalf("unexpected balances: %+v", resp)
		}
		if resp.Order.Status != "completed" || resp.Payer.Kind != "holder" {
			t.Fatalf("unexpected response: %+v", resp)
		}
	})

	t.Run("pin mismatch maps to 401", func(t *testing.T) {
		svc := &stubOrderService{
			settleFn: func(context.Context, app.SettleInput) (app.SettleResult, error) {
				return app.SettleResult{}, domain.ErrPINMismatch
			},
		}

		body := `{"card_id":"card-1","pin":"0000"}`
		req := httptest.NewRequest(http.MethodPost, "/orders/o1/settle", strings.NewReader(body))
		rec := httptest.NewRecorder()
		HandleOrderByID(svc, svc)(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", rec.Code)
		}
	})

	t.Run("insufficient balance maps to 400 with amounts", func(t *testing.T) {
		svc := &stubOrderService{
			settleFn: func(context.Context, app.SettleInput) (app.SettleResult, error) {
				return app.SettleResult{}, &domain.InsufficientBalanceError{
					Required:  money("125.00"),
					Available: money("50.00"),
				}
			},
		}

		body := `{"card_id":"card-1","pin":"4321"}`
		req := httptest.NewRequest(http.MethodPost, "/orders/o1/settle", strings.NewReader(body))
		rec := httptest.NewRecorder()
		HandleOrderByID(svc, svc)(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
		var resp errorResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Code != codeInsufficientBalance {
			t.Fatalf("expected code %s, got %s", codeInsufficientBalance, resp.Code)
		}
		if resp.Details["required"] != "125.00" || resp.Details["available"] != "50.00" {
			t.Fatalf("unexpected details: %+v", resp.Details)
		}
	})

	t.Run("insufficient stock maps to 400 with product details", func(t *testing.T) {
		svc := &stubOrderService{
			settleFn: func(context.Context, app.SettleInput) (app.SettleResult, error) {
				return app.SettleResult{}, &domain.InsufficientStockError{
					ProductID:   "p2",
					ProductName: "Juice",
					Required:    1,
					Available:   0,
				}
			},
		}

		body := `{"card_id":"card-1","pin":"4321"}`
		req := httptest.NewRequest(http.MethodPost, "/orders/o1/settle", strings.NewReader(body))
		rec := httptest.NewRecorder()
		HandleOrderByID(svc, svc)(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
		var resp errorResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Code != codeInsufficientStock {
			t.Fatalf("expected code %s, got %s", codeInsufficientStock, resp.Code)
		}
		if resp.Details["product_name"] != "Juice" {
			t.Fatalf("unexpected details: %+v", resp.Details)
		}
	})

	t.Run("unknown card maps to 404", func(t *testing.T) {
		svc := &stubOrderService{
			settleFn: func(context.Context, app.SettleInput) (app.SettleResult, error) {
				return app.SettleResult{}, domain.ErrAccountNotFound
			},
		}

		body := `{"card_id":"nobody","pin":"4321"}`
		req := httptest.NewRequest(http.MethodPost, "/orders/o1/settle", strings.NewReader(body))
		rec := httptest.NewRecorder()
		HandleOrderByID(svc, svc)(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})
}

func TestHandleOrderByID_UpdateStatus(t *testing.T) {
	t.Parallel()

	t.Run("updates status", func(t *testing.T) {
		svc := &stubOrderService{
			updateStatusFn: func(_ context.Context, orderID string, status domain.OrderStatus) (domain.Order, error) {
				if status != domain.OrderStatusCompleted {
					t.Fatalf("unexpected status %s", status)
				}
				return sampleOrder(domain.OrderStatusCompleted), nil
			},
		}

		body := `{"status":"completed"}`
		req := httptest.NewRequest(http.MethodPatch, "/orders/o1/status", strings.NewReader(body))
		rec := httptest.NewRecorder()
		HandleOrderByID(svc, svc)(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var resp struct {
			Order orderResponse `json:"order"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Order.Status != "completed" {
			t.Fatalf("expected completed, got %s", resp.Order.Status)
		}
	})

	t.Run("unknown status maps to 400", func(t *testing.T) {
		svc := &stubOrderService{}
		body := `{"status":"shipped"}`
		req := httptest.NewRequest(http.MethodPatch, "/orders/o1/status", strings.NewReader(body))
		rec := httptest.NewRecorder()
		HandleOrderByID(svc, svc)(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
		var resp errorResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Code != codeUnknownStatus {
			t.Fatalf("expected code %s, got %s", codeUnknownStatus, resp.Code)
		}
	})

	t.Run("requires PATCH", func(t *testing.T) {
		svc := &stubOrderService{}
		req := httptest.NewRequest(http.MethodPost, "/orders/o1/status", strings.NewReader(`{"status":"ready"}`))
		rec := httptest.NewRecorder()
		HandleOrderByID(svc, svc)(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected status 405, got %d", rec.Code)
		}
	})
}
