package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Charvyearl/cashless/internal/domain"
)

// ScanReader serves the latest card scan, filtered by attempt start.
type ScanReader interface {
	LatestScan(ctx context.Context, notBefore time.Time) (domain.CardScan, error)
}

// ScanRecorder accepts observations pushed by the card-reader bridge.
type ScanRecorder interface {
	Record(scan domain.CardScan)
}

// HandleLatestScan returns an HTTP handler for GET /scans/latest. The
// operator UI passes not_before (the instant the current scan attempt
// started) so a scan left over from a previous customer is never returned.
func HandleLatestScan(svc ScanReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		raw := r.URL.Query().Get("not_before")
		if raw == "" {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "not_before is required")
			return
		}
		notBefore, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid not_before format")
			return
		}

		scan, err := svc.LatestScan(r.Context(), notBefore)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(scanResponse{
			CardID:    scan.CardID,
			ScannedAt: scan.ScannedAt,
		})
	}
}

// HandleRecordScan returns an HTTP handler for POST /scans, the ingress used
// by the card-reader bridge.
func HandleRecordScan(recorder ScanRecorder, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req recordScanRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.CardID == "" {
			writeError(w, http.StatusBadRequest, codeCardIDRequired, domain.ErrCardIDRequired.Error())
			return
		}

		scannedAt := now()
		if req.ScannedAt != nil {
			scannedAt = *req.ScannedAt
		}
		recorder.Record(domain.CardScan{CardID: req.CardID, ScannedAt: scannedAt})

		w.WriteHeader(http.StatusAccepted)
	}
}

type recordScanRequest struct {
	CardID    string     `json:"card_id"`
	ScannedAt *time.Time `json:"scanned_at"`
}

type scanResponse struct {
	CardID    string    `json:"card_id"`
	ScannedAt time.Time `json:"scanned_at"`
}
