package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/Charvyearl/cashless/internal/app"
	"github.com/Charvyearl/cashless/internal/domain"
)

// OrderLedger is the minimal interface the order endpoints need.
type OrderLedger interface {
	CreateOrder(ctx context.Context, in app.CreateOrderInput) (domain.Order, error)
	MarkReady(ctx context.Context, orderID string) (domain.Order, error)
	Cancel(ctx context.Context, orderID string) (domain.Order, error)
	GetDetails(ctx context.Context, orderID string) (app.OrderDetails, error)
}

// Settler is the minimal interface the settlement endpoints need.
type Settler interface {
	Settle(ctx context.Context, in app.SettleInput) (app.SettleResult, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (domain.Order, error)
}

// HandleCreateOrder returns an HTTP handler for POST /orders.
func HandleCreateOrder(svc OrderLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createOrderRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		in := app.CreateOrderInput{PaymentMethod: req.PaymentMethod}
		for _, line := range req.Lines {
			in.Lines = append(in.Lines, app.CreateOrderLine{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
			})
		}

		order, err := svc.CreateOrder(r.Context(), in)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toOrderResponse(order))
	}
}

// HandleOrderByID routes /orders/{id} and its settle/ready/cancel/status
// subresources.
func HandleOrderByID(orders OrderLedger, settler Settler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, action, ok := parseOrderPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch action {
		case "":
			if r.Method != http.MethodGet {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			handleOrderDetails(w, r, orders, orderID)
		case "ready":
			if r.Method != http.MethodPost {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			handleMarkReady(w, r, orders, orderID)
		case "cancel":
			if r.Method != http.MethodPost {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			handleCancel(w, r, orders, orderID)
		case "settle":
			if r.Method != http.MethodPost {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			handleSettle(w, r, settler, orderID)
		case "status":
			if r.Method != http.MethodPatch {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			handleUpdateStatus(w, r, settler, orderID)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func parseOrderPath(path string) (orderID, action string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 || parts[0] != "orders" || parts[1] == "" {
		return "", "", false
	}
	if len(parts) == 2 {
		return parts[1], "", true
	}
	if parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

func handleOrderDetails(w http.ResponseWriter, r *http.Request, svc OrderLedger, orderID string) {
	details, err := svc.GetDetails(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := orderDetailsResponse{Order: toOrderResponse(details.Order)}
	if details.Payer != nil {
		resp.Payer = &payerResponse{
			ID:          details.Payer.ID,
			Kind:        string(details.Payer.Kind),
			DisplayName: details.Payer.DisplayName,
			CardID:      details.Payer.CardID,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func handleMarkReady(w http.ResponseWriter, r *http.Request, svc OrderLedger, orderID string) {
	order, err := svc.MarkReady(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toOrderResponse(order))
}

func handleCancel(w http.ResponseWriter, r *http.Request, svc OrderLedger, orderID string) {
	order, err := svc.Cancel(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := cancelOrderResponse{
		OrderID: order.ID,
		Status:  string(order.Status),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

type createOrderRequest struct {
	Lines         []orderLineRequest `json:"lines"`
	PaymentMethod string             `json:"payment_method"`
}

type orderLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type orderLineResponse struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Subtotal    string `json:"subtotal"`
}

type orderResponse struct {
	ID                string              `json:"id"`
	Status            string              `json:"status"`
	TotalAmount       string              `json:"total_amount"`
	PaymentMethod     string              `json:"payment_method"`
	HolderID          *string             `json:"holder_id,omitempty"`
	SecondaryHolderID *string             `json:"secondary_holder_id,omitempty"`
	Lines             []orderLineResponse `json:"lines"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

type payerResponse struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	DisplayName string `json:"display_name"`
	CardID      string `json:"card_id"`
}

type orderDetailsResponse struct {
	Order orderResponse  `json:"order"`
	Payer *payerResponse `json:"payer,omitempty"`
}

type cancelOrderResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

func toOrderResponse(order domain.Order) orderResponse {
	resp := orderResponse{
		ID:                order.ID,
		Status:            string(order.Status),
		TotalAmount:       order.TotalAmount.StringFixed(2),
		PaymentMethod:     order.PaymentMethod,
		HolderID:          order.HolderID,
		SecondaryHolderID: order.SecondaryHolderID,
		Lines:             make([]orderLineResponse, 0, len(order.Lines)),
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
	}
	for _, line := range order.Lines {
		resp.Lines = append(resp.Lines, orderLineResponse{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice.StringFixed(2),
			Subtotal:    line.Subtotal.StringFixed(2),
		})
	}
	return resp
}
