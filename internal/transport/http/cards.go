package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Charvyearl/cashless/internal/domain"
)

// CardResolver is the minimal interface for the operator-facing card lookup.
type CardResolver interface {
	ResolveByCard(ctx context.Context, cardID string) (domain.Payer, error)
}

// HandleResolveCard returns an HTTP handler for GET /cards/{card_id}, used by
// the operator UI before settlement.
func HandleResolveCard(svc CardResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		cardID, ok := parseCardPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		payer, err := svc.ResolveByCard(r.Context(), cardID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := resolveCardResponse{
			ID:          payer.ID,
			CardID:      payer.CardID,
			DisplayName: payer.DisplayName,
			Balance:     payer.Balance.StringFixed(2),
			Kind:        string(payer.Kind),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func parseCardPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 || parts[0] != "cards" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

type resolveCardResponse struct {
	ID          string `json:"id"`
	CardID      string `json:"card_id"`
	DisplayName string `json:"display_name"`
	Balance     string `json:"balance"`
	Kind        string `json:"kind"`
}
