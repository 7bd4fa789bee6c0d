package bridge

import (
	"context"
	"encoding/hex"
	"fmt"

	addrv "github.com/stacksbridge/sbtc-bridge-api/address"
	"github.com/stacksbridge/sbtc-bridge-api/signers"
	"github.com/stacksbridge/sbtc-bridge-api/types"
)

// NotifyRequest identifies a broadcast funding transaction. DepositAddress
// is optional; when set it links the transaction to the stored deposit
// record so the confirmation poller can track it.
type NotifyRequest struct {
	Txid           string `json:"txid"`
	DepositScript  string `json:"deposit_script"`
	ReclaimScript  string `json:"reclaim_script"`
	Vout           uint32 `json:"vout"`
	DepositAddress string `json:"address,omitempty"`
}

// NotifyDeposit informs the signer set that a funding transaction exists
// so minting can proceed. Notify success is a checkpoint separate from the
// funding transaction itself: the transaction may already be confirmed
// on-chain while this call fails, in which case the caller should retry —
// the signer API treats repeated notifications for one txid as a no-op.
func (s *Service) NotifyDeposit(ctx context.Context, req NotifyRequest) error {
	if !isHexHash(req.Txid) {
		return &types.ValidationError{Field: "txid", Reason: "not a 64-character hex transaction id"}
	}
	if _, err := hex.DecodeString(req.DepositScript); err != nil || req.DepositScript == "" {
		return &types.ValidationError{Field: "depositScript", Reason: "not a hex-encoded script"}
	}
	if _, err := hex.DecodeString(req.ReclaimScript); err != nil || req.ReclaimScript == "" {
		return &types.ValidationError{Field: "reclaimScript", Reason: "not a hex-encoded script"}
	}
	if req.DepositAddress != "" && !addrv.IsValidBitcoinAddress(req.DepositAddress, s.network) {
		return &types.ValidationError{
			Field:  "address",
			Reason: fmt.Sprintf("not a valid %s bitcoin address", s.network),
		}
	}

	err := s.signer.NotifyDeposit(ctx, signers.NotifyDepositParams{
		Txid:          req.Txid,
		Vout:          req.Vout,
		DepositScript: req.DepositScript,
		ReclaimScript: req.ReclaimScript,
	})
	if err != nil {
		// State-changing call: never swallowed, never retried here.
		return fmt.Errorf("deposit notify failed for %s: %w", req.Txid, err)
	}

	// Link the funding transaction to the stored record so the poller can
	// pick it up. Record-keeping only; a miss never fails the notify.
	if s.store != nil && req.DepositAddress != "" {
		if err := s.store.AttachDepositTxid(ctx, req.DepositAddress, req.Txid); err != nil {
			s.logger.Error("failed to attach txid to deposit record",
				"address", req.DepositAddress,
				"txid", req.Txid,
				"error", err)
		}
	}

	s.logger.Info("signers notified of deposit", "txid", req.Txid, "vout", req.Vout)
	return nil
}

func isHexHash(s string) bool {
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
