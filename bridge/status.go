package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/stacksbridge/sbtc-bridge-api/explorer"
	"github.com/stacksbridge/sbtc-bridge-api/types"
	"github.com/stacksbridge/sbtc-bridge-api/utils"
)

const (
	statusReadAttempts  = 3
	statusReadBaseDelay = 250 * time.Millisecond
)

// TransactionStatus classifies a tracked transaction.
type TransactionStatus struct {
	Txid          string         `json:"txid"`
	Status        types.TxStatus `json:"status"`
	Confirmations uint64         `json:"confirmations"`
	BlockHeight   uint64         `json:"block_height,omitempty"`
}

// GetStatus looks up a transaction and computes its confirmation state.
//
// A transaction the explorer has never seen resolves to pending with zero
// confirmations, not failed: absence usually means the transaction has not
// propagated or been included yet, and deciding when to give up is the
// caller's concern. Failed is reserved for an explicit rejection from the
// explorer (e.g. a malformed lookup). Transport failures propagate so the
// caller can distinguish "unknown" from a real pending.
func (s *Service) GetStatus(ctx context.Context, txid string) (TransactionStatus, error) {
	status := TransactionStatus{Txid: txid, Status: types.StatusPending}

	record, err := utils.Retry(ctx, statusReadAttempts, statusReadBaseDelay, func(ctx context.Context) (*explorer.TxRecord, error) {
		return s.explorer.Transaction(ctx, txid)
	})
	if err != nil {
		if errors.Is(err, explorer.ErrTxNotFound) {
			return status, nil
		}
		var protoErr *types.ProtocolError
		if errors.As(err, &protoErr) {
			status.Status = types.StatusFailed
			return status, nil
		}
		return status, err
	}

	if !record.Confirmed {
		return status, nil
	}

	tip, err := utils.Retry(ctx, statusReadAttempts, statusReadBaseDelay, func(ctx context.Context) (uint64, error) {
		return s.explorer.TipHeight(ctx)
	})
	if err != nil {
		return status, err
	}

	status.BlockHeight = record.BlockHeight
	if tip >= record.BlockHeight {
		status.Confirmations = tip - record.BlockHeight + 1
	}
	if status.Confirmations >= types.ConfirmationThreshold {
		status.Status = types.StatusConfirmed
	}

	if s.store != nil && status.Status == types.StatusConfirmed {
		if err := s.store.UpdateDepositStatus(ctx, txid, status.Status); err != nil {
			s.logger.Debug("no deposit record to update", "txid", txid, "error", err)
		}
	}

	return status, nil
}
