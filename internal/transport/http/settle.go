package http

import (
	"encoding/json"
	"net/http"

	"github.com/Charvyearl/cashless/internal/app"
)

func handleSettle(w http.ResponseWriter, r *http.Request, svc Settler, orderID string) {
	var req settleRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	result, err := svc.Settle(r.Context(), app.SettleInput{
		OrderID: orderID,
		CardID:  req.CardID,
		PIN:     req.PIN,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := settleResponse{
		Order: toOrderResponse(result.Order),
		Payer: payerResponse{
			ID:          result.Payer.ID,
			Kind:        string(result.Payer.Kind),
			DisplayName: result.Payer.DisplayName,
			CardID:      result.Payer.CardID,
		},
		BalanceBefore: result.BalanceBefore.StringFixed(2),
		BalanceAfter:  result.BalanceAfter.StringFixed(2),
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

type settleRequest struct {
	CardID string `json:"card_id"`
	PIN    string `json:"pin"`
}

type settleResponse struct {
	Order         orderResponse `json:"order"`
	Payer         payerResponse `json:"payer"`
	BalanceBefore string        `json:"balance_before"`
	BalanceAfter  string        `json:"balance_after"`
}
