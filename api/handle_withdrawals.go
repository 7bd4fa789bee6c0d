package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/stacksbridge/sbtc-bridge-api/bridge"
	"github.com/stacksbridge/sbtc-bridge-api/database/models"
)

func (s *Server) handleWithdrawalCreate(w http.ResponseWriter, r *http.Request) {
	var req bridge.WithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ERROR(w, http.StatusBadRequest, fmt.Errorf("malformed request body: %w", err))
		return
	}

	txid, err := s.svc.InitiateWithdrawal(r.Context(), req)
	if err != nil {
		ERROR(w, statusForError(err), err)
		return
	}

	JSON(w, http.StatusCreated, map[string]interface{}{"txid": txid})
}

func (s *Server) handleWithdrawalsGet(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		ERROR(w, http.StatusNotImplemented, fmt.Errorf("withdrawal listing requires a database"))
		return
	}

	page, pageSize := pagination(r)
	filter := models.Filter{
		Status: r.URL.Query().Get("status"),
		Txid:   r.URL.Query().Get("txid"),
	}

	result, err := s.db.GetWithdrawals(r.Context(), filter, page, pageSize)
	if err != nil {
		ERROR(w, http.StatusInternalServerError, err)
		return
	}

	JSON(w, http.StatusOK, result)
}
