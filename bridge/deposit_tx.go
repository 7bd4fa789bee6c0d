package bridge

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	addrv "github.com/stacksbridge/sbtc-bridge-api/address"
	"github.com/stacksbridge/sbtc-bridge-api/signers"
	"github.com/stacksbridge/sbtc-bridge-api/types"
	"github.com/stacksbridge/sbtc-bridge-api/units"
)

// DepositTransactionParams describes a funding transaction to assemble.
type DepositTransactionParams struct {
	AmountSats        units.Satoshis
	RecipientIdentity string
	UTXOs             []signers.UTXO
	ChangeAddress     string
	FeeTier           FeeTier

	ReclaimPublicKey string
	MaxSignerFee     units.Satoshis
	ReclaimLockTime  uint32
}

// DepositTransaction is an unsigned, unbroadcast funding transaction plus
// the deposit-address metadata it targets.
type DepositTransaction struct {
	DepositAddress

	RawTransaction string         `json:"raw_transaction"`
	EstimatedFee   units.Satoshis `json:"estimated_fee"`
	ChangeAmount   units.Satoshis `json:"change_amount"`
}

// Rough vbyte cost of a funding transaction assuming segwit inputs.
func estimateVSize(numIn, numOut int) uint64 {
	return 12 + uint64(numIn)*68 + uint64(numOut)*43
}

// CreateDepositTransaction derives the deposit address and assembles a
// transaction spending the supplied UTXOs into it, with change back to the
// caller. The deposit output carries amount + maxSignerFee; the signers
// deduct their fee when minting. Inputs that cannot cover
// amount + fee + signer fee raise InsufficientFundsError before any
// transaction is constructed.
func (s *Service) CreateDepositTransaction(ctx context.Context, params DepositTransactionParams) (*DepositTransaction, error) {
	if len(params.UTXOs) == 0 {
		return nil, &types.ValidationError{Field: "utxos", Reason: "no spendable inputs supplied"}
	}
	if !addrv.IsValidBitcoinAddress(params.ChangeAddress, s.network) {
		return nil, &types.ValidationError{
			Field:  "changeAddress",
			Reason: fmt.Sprintf("not a valid %s bitcoin address", s.network),
		}
	}

	deposit, err := s.CreateDepositAddress(ctx, DepositRequest{
		RecipientIdentity: params.RecipientIdentity,
		AmountSats:        params.AmountSats,
		ReclaimPublicKey:  params.ReclaimPublicKey,
		MaxSignerFee:      params.MaxSignerFee,
		ReclaimLockTime:   params.ReclaimLockTime,
	})
	if err != nil {
		return nil, err
	}

	feeRate := s.FeeRates(ctx).Rate(params.FeeTier)

	var totalIn uint64
	for _, u := range params.UTXOs {
		totalIn += u.Amount
	}

	// Fee is estimated for the two-output shape (deposit + change).
	fee := feeRate * estimateVSize(len(params.UTXOs), 2)
	required := uint64(params.AmountSats) + fee + uint64(deposit.MaxSignerFee)
	if totalIn < required {
		return nil, &types.InsufficientFundsError{RequiredSats: required, AvailableSats: totalIn}
	}
	change := totalIn - required

	chainCfg := chainParams(s.network)
	depositAddr, err := btcutil.DecodeAddress(deposit.Address, chainCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode derived address: %w", err)
	}
	depositPkScript, err := txscript.PayToAddrScript(depositAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to build deposit output script: %w", err)
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	for _, u := range params.UTXOs {
		prevHash, err := chainhash.NewHashFromStr(u.Txid)
		if err != nil {
			return nil, &types.ValidationError{Field: "utxos", Reason: fmt.Sprintf("bad txid %q", u.Txid)}
		}
		tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(prevHash, u.Vout), nil, nil))
	}
	tx.AddTxOut(wire.NewTxOut(int64(params.AmountSats)+int64(deposit.MaxSignerFee), depositPkScript))

	if change >= types.DustLimitSats {
		changeAddr, err := btcutil.DecodeAddress(params.ChangeAddress, chainCfg)
		if err != nil {
			return nil, &types.ValidationError{Field: "changeAddress", Reason: err.Error()}
		}
		changePkScript, err := txscript.PayToAddrScript(changeAddr)
		if err != nil {
			return nil, &types.ValidationError{Field: "changeAddress", Reason: err.Error()}
		}
		tx.AddTxOut(wire.NewTxOut(int64(change), changePkScript))
	} else if change > 0 {
		// Change below the dust limit is folded into the mining fee
		// rather than creating an unspendable output.
		s.logger.Debug("folding dust change into fee", "change", change)
		fee += change
		change = 0
	}

	var raw bytes.Buffer
	if err := tx.Serialize(&raw); err != nil {
		return nil, fmt.Errorf("failed to serialize transaction: %w", err)
	}

	return &DepositTransaction{
		DepositAddress: *deposit,
		RawTransaction: hex.EncodeToString(raw.Bytes()),
		EstimatedFee:   units.Satoshis(fee),
		ChangeAmount:   units.Satoshis(change),
	}, nil
}
