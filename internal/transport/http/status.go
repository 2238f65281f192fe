package http

import (
	"encoding/json"
	"net/http"

	"github.com/Charvyearl/cashless/internal/domain"
)

func handleUpdateStatus(w http.ResponseWriter, r *http.Request, svc Settler, orderID string) {
	var req updateStatusRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	order, err := svc.UpdateStatus(r.Context(), orderID, status)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Order orderResponse `json:"order"`
	}{Order: toOrderResponse(order)})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}
