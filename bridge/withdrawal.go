package bridge

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/stacksbridge/sbtc-bridge-api/address"
	"github.com/stacksbridge/sbtc-bridge-api/database/models"
	"github.com/stacksbridge/sbtc-bridge-api/stacks"
	"github.com/stacksbridge/sbtc-bridge-api/types"
	"github.com/stacksbridge/sbtc-bridge-api/units"
)

// withdrawFunction is the asset contract entry point that burns sBTC and
// releases native BTC to the destination.
const withdrawFunction = "withdraw"

// defaultWithdrawalFeeMicroSTX covers the contract call when the request
// leaves the fee unset.
const defaultWithdrawalFeeMicroSTX = 3_000

// WithdrawalRequest burns AmountMicro of the wrapped asset and releases
// native BTC to Destination.
type WithdrawalRequest struct {
	AmountMicro units.MicroSBTC `json:"amount_micro"`
	Destination string          `json:"destination"`

	// SenderKeyHex is the hex-encoded private key signing the contract
	// call. A trailing compression flag byte is accepted.
	SenderKeyHex string `json:"sender_key"`

	FeeMicroSTX uint64 `json:"fee,omitempty"`
}

// InitiateWithdrawal validates the request, builds the withdraw contract
// call and broadcasts it once, returning the transaction id immediately.
// Confirmation is the status tracker's job. This operation has real
// monetary effect and is never retried automatically: a duplicate
// submission is a duplicate withdrawal.
func (s *Service) InitiateWithdrawal(ctx context.Context, req WithdrawalRequest) (string, error) {
	if req.AmountMicro == 0 {
		return "", &types.ValidationError{Field: "amountMicro", Reason: "must be greater than zero"}
	}
	if !address.IsValidBitcoinAddress(req.Destination, s.network) {
		return "", &types.ValidationError{
			Field:  "destination",
			Reason: fmt.Sprintf("not a valid %s bitcoin address", s.network),
		}
	}

	senderKey, err := parsePrivateKey(req.SenderKeyHex)
	if err != nil {
		return "", &types.ValidationError{Field: "senderKey", Reason: err.Error()}
	}
	sender, err := stacks.AddressForKey(senderKey, s.network)
	if err != nil {
		return "", fmt.Errorf("failed to derive sender address: %w", err)
	}

	nonce, err := s.ledger.AccountNonce(ctx, sender)
	if err != nil {
		return "", err
	}

	fee := req.FeeMicroSTX
	if fee == 0 {
		fee = defaultWithdrawalFeeMicroSTX
	}

	destinationArg, err := stacks.ClarityStringASCII(req.Destination)
	if err != nil {
		return "", &types.ValidationError{Field: "destination", Reason: err.Error()}
	}

	tx, err := stacks.BuildContractCall(stacks.ContractCallParams{
		ContractAddress: s.contractAddress,
		ContractName:    s.contractName,
		FunctionName:    withdrawFunction,
		FunctionArgs: [][]byte{
			stacks.ClarityUInt(uint64(req.AmountMicro)),
			destinationArg,
		},
		Fee:       fee,
		Nonce:     nonce,
		SenderKey: senderKey,
		Network:   s.network,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build withdrawal transaction: %w", err)
	}

	txid, err := s.ledger.BroadcastTransaction(ctx, tx.Serialize())
	if err != nil {
		return "", err
	}

	if s.store != nil {
		record := models.WithdrawalRecord{
			Txid:        txid,
			AmountMicro: uint64(req.AmountMicro),
			AmountSBTC:  req.AmountMicro.TokenString(),
			Destination: req.Destination,
			Status:      types.StatusPending,
			Network:     string(s.network),
			CreatedAt:   s.now(),
		}
		if err := s.store.CreateWithdrawalRecord(ctx, record); err != nil {
			s.logger.Error("failed to record withdrawal", "txid", txid, "error", err)
		}
	}
	if s.metrics != nil {
		s.metrics.RecordWithdrawalSubmitted(string(s.network))
	}

	s.logger.Info("withdrawal submitted",
		"txid", txid,
		"amount_micro", req.AmountMicro,
		"destination", req.Destination)

	return txid, nil
}

func parsePrivateKey(keyHex string) (*btcec.PrivateKey, error) {
	raw, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("not hex: %w", err)
	}
	// 33 bytes with a trailing 0x01 is the compressed-key convention.
	if len(raw) == 33 && raw[32] == 0x01 {
		raw = raw[:32]
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("unexpected key length %d", len(raw))
	}
	key, _ := btcec.PrivKeyFromBytes(raw)
	return key, nil
}
