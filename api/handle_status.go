package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"
)

func (s *Server) handleStatusGet(w http.ResponseWriter, r *http.Request) {
	txid := chi.URLParam(r, "txid")

	status, err := s.svc.GetStatus(r.Context(), txid)
	if err != nil {
		ERROR(w, statusForError(err), err)
		return
	}

	JSON(w, http.StatusOK, status)
}

func (s *Server) handleFeesGet(w http.ResponseWriter, r *http.Request) {
	// Degrades to static fallbacks internally, so it never errors.
	JSON(w, http.StatusOK, s.svc.FeeRates(r.Context()))
}

func (s *Server) handleHealthGet(w http.ResponseWriter, r *http.Request) {
	health := s.svc.HealthCheck(r.Context())

	code := http.StatusOK
	if !health.IsHealthy {
		code = http.StatusServiceUnavailable
	}
	JSON(w, code, health)
}

func (s *Server) handleBalanceGet(w http.ResponseWriter, r *http.Request) {
	principal := chi.URLParam(r, "principal")

	snapshot, err := s.svc.Balance(r.Context(), principal)
	if err != nil {
		ERROR(w, statusForError(err), err)
		return
	}

	JSON(w, http.StatusOK, snapshot)
}

// handleQRGet renders a payment URI as a QR PNG for the dashboard.
func (s *Server) handleQRGet(w http.ResponseWriter, r *http.Request) {
	uri := r.URL.Query().Get("uri")
	if uri == "" {
		ERROR(w, http.StatusBadRequest, fmt.Errorf("uri query parameter is required"))
		return
	}

	png, err := qrcode.Encode(uri, qrcode.Medium, 256)
	if err != nil {
		ERROR(w, http.StatusBadRequest, fmt.Errorf("failed to encode qr: %w", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
