package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Charvyearl/cashless/internal/domain"
)

const (
	codeMethodNotAllowed    = "method_not_allowed"
	codeNotFound            = "not_found"
	codeInvalidRequestBody  = "invalid_request_body"
	codeEmptyOrder          = "empty_order"
	codeInvalidQuantity     = "invalid_quantity"
	codeProductUnavailable  = "product_unavailable"
	codeOrderNotFound       = "order_not_found"
	codeProductNotFound     = "product_not_found"
	codeAccountNotFound     = "account_not_found"
	codeInvalidPIN          = "invalid_pin"
	codePINMismatch         = "pin_mismatch"
	codeInsufficientStock   = "insufficient_stock"
	codeInsufficientBalance = "insufficient_balance"
	codeInvalidTransition   = "invalid_state_transition"
	codeUnknownStatus       = "unknown_status"
	codeCardIDRequired      = "card_id_required"
	codeInvalidID           = "invalid_id"
	codeNoScan              = "no_scan"
	codeStaleScan           = "stale_scan"
	codeForbidden           = "forbidden"
	codeUnavailable         = "unavailable"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeErrorDetails(w, status, code, msg, nil)
}

func writeErrorDetails(w http.ResponseWriter, status int, code, msg string, details map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error:   msg,
		Code:    code,
		Details: details,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeServiceError maps domain errors onto the HTTP contract: not-found
// lookups to 404, PIN mismatch to 401, everything else the operator can fix
// to 400 with enough structured detail to render a precise message.
func writeServiceError(w http.ResponseWriter, err error) {
	var transition *domain.InvalidTransitionError
	var stock *domain.InsufficientStockError
	var balance *domain.InsufficientBalanceError

	switch {
	case errors.As(err, &stock):
		writeErrorDetails(w, http.StatusBadRequest, codeInsufficientStock, err.Error(), map[string]any{
			"product_id":   stock.ProductID,
			"product_name": stock.ProductName,
			"required":     stock.Required,
			"available":    stock.Available,
		})
	case errors.As(err, &balance):
		writeErrorDetails(w, http.StatusBadRequest, codeInsufficientBalance, err.Error(), map[string]any{
			"required":  balance.Required.StringFixed(2),
			"available": balance.Available.StringFixed(2),
		})
	case errors.As(err, &transition):
		writeError(w, http.StatusBadRequest, codeInvalidTransition, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, codeOrderNotFound, err.Error())
	case errors.Is(err, domain.ErrProductNotFound):
		writeError(w, http.StatusNotFound, codeProductNotFound, err.Error())
	case errors.Is(err, domain.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, codeAccountNotFound, err.Error())
	case errors.Is(err, domain.ErrNoScan):
		writeError(w, http.StatusNotFound, codeNoScan, err.Error())
	case errors.Is(err, domain.ErrStaleScan):
		writeError(w, http.StatusNotFound, codeStaleScan, err.Error())
	case errors.Is(err, domain.ErrPINMismatch):
		writeError(w, http.StatusUnauthorized, codePINMismatch, err.Error())
	case errors.Is(err, domain.ErrInvalidPIN):
		writeError(w, http.StatusBadRequest, codeInvalidPIN, err.Error())
	case errors.Is(err, domain.ErrEmptyOrder):
		writeError(w, http.StatusBadRequest, codeEmptyOrder, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	case errors.Is(err, domain.ErrProductUnavailable):
		writeError(w, http.StatusBadRequest, codeProductUnavailable, err.Error())
	case errors.Is(err, domain.ErrUnknownStatus):
		writeError(w, http.StatusBadRequest, codeUnknownStatus, err.Error())
	case errors.Is(err, domain.ErrCardIDRequired):
		writeError(w, http.StatusBadRequest, codeCardIDRequired, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
