package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/stacksbridge/sbtc-bridge-api/bridge"
	"github.com/stacksbridge/sbtc-bridge-api/database/models"
	"github.com/stacksbridge/sbtc-bridge-api/signers"
	"github.com/stacksbridge/sbtc-bridge-api/units"
)

func (s *Server) handleDepositCreate(w http.ResponseWriter, r *http.Request) {
	var req bridge.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ERROR(w, http.StatusBadRequest, fmt.Errorf("malformed request body: %w", err))
		return
	}

	deposit, err := s.svc.CreateDepositAddress(r.Context(), req)
	if err != nil {
		ERROR(w, statusForError(err), err)
		return
	}

	JSON(w, http.StatusCreated, deposit)
}

type depositTransactionRequest struct {
	AmountSats        uint64         `json:"amount_sats"`
	RecipientIdentity string         `json:"recipient"`
	UTXOs             []signers.UTXO `json:"utxos"`
	ChangeAddress     string         `json:"change_address"`
	FeeTier           string         `json:"fee_tier,omitempty"`
	ReclaimPublicKey  string         `json:"reclaim_public_key,omitempty"`
	MaxSignerFee      uint64         `json:"max_signer_fee,omitempty"`
	ReclaimLockTime   uint32         `json:"reclaim_lock_time,omitempty"`
}

func (s *Server) handleDepositTransactionCreate(w http.ResponseWriter, r *http.Request) {
	var req depositTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ERROR(w, http.StatusBadRequest, fmt.Errorf("malformed request body: %w", err))
		return
	}

	tx, err := s.svc.CreateDepositTransaction(r.Context(), bridge.DepositTransactionParams{
		AmountSats:        units.Satoshis(req.AmountSats),
		RecipientIdentity: req.RecipientIdentity,
		UTXOs:             req.UTXOs,
		ChangeAddress:     req.ChangeAddress,
		FeeTier:           bridge.FeeTier(req.FeeTier),
		ReclaimPublicKey:  req.ReclaimPublicKey,
		MaxSignerFee:      units.Satoshis(req.MaxSignerFee),
		ReclaimLockTime:   req.ReclaimLockTime,
	})
	if err != nil {
		ERROR(w, statusForError(err), err)
		return
	}

	JSON(w, http.StatusCreated, tx)
}

func (s *Server) handleDepositNotify(w http.ResponseWriter, r *http.Request) {
	var req bridge.NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ERROR(w, http.StatusBadRequest, fmt.Errorf("malformed request body: %w", err))
		return
	}

	if err := s.svc.NotifyDeposit(r.Context(), req); err != nil {
		ERROR(w, statusForError(err), err)
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{"notified": true, "txid": req.Txid})
}

func (s *Server) handleDepositsGet(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		ERROR(w, http.StatusNotImplemented, fmt.Errorf("deposit listing requires a database"))
		return
	}

	page, pageSize := pagination(r)
	filter := models.Filter{
		Status:    r.URL.Query().Get("status"),
		Recipient: r.URL.Query().Get("recipient"),
		Address:   r.URL.Query().Get("address"),
		Txid:      r.URL.Query().Get("txid"),
	}

	result, err := s.db.GetDeposits(r.Context(), filter, page, pageSize)
	if err != nil {
		ERROR(w, http.StatusInternalServerError, err)
		return
	}

	JSON(w, http.StatusOK, result)
}

func pagination(r *http.Request) (int64, int64) {
	page, err := strconv.ParseInt(r.URL.Query().Get("page"), 10, 64)
	if err != nil || page < 1 {
		page = 1
	}

	pageSize, err := strconv.ParseInt(r.URL.Query().Get("pageSize"), 10, 64)
	if err != nil || pageSize < 1 {
		pageSize = 10
	}

	return page, pageSize
}
