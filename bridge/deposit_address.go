package bridge

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/url"
	"time"

	"github.com/stacksbridge/sbtc-bridge-api/address"
	"github.com/stacksbridge/sbtc-bridge-api/database/models"
	"github.com/stacksbridge/sbtc-bridge-api/types"
	"github.com/stacksbridge/sbtc-bridge-api/units"
)

// DepositRequest asks for a one-time deposit address minting sBTC to
// RecipientIdentity.
type DepositRequest struct {
	RecipientIdentity string         `json:"recipient"`
	AmountSats        units.Satoshis `json:"amount_sats"`

	// ReclaimPublicKey is the key able to reclaim an undelivered deposit
	// after the lock time. When empty the signer key is substituted,
	// which removes the depositor's unilateral reclaim path; the fallback
	// is logged as a warning and should only be accepted deliberately.
	ReclaimPublicKey string `json:"reclaim_public_key,omitempty"`

	MaxSignerFee    units.Satoshis `json:"max_signer_fee,omitempty"`
	ReclaimLockTime uint32         `json:"reclaim_lock_time,omitempty"`
}

// DepositAddress is the derivation result. Immutable once returned; a
// fresh request always yields a fresh address.
type DepositAddress struct {
	Address           string         `json:"address"`
	RecipientIdentity string         `json:"recipient"`
	DepositScript     string         `json:"deposit_script"`
	ReclaimScript     string         `json:"reclaim_script"`
	SignerPublicKey   string         `json:"signer_public_key"`
	ReclaimPublicKey  string         `json:"reclaim_public_key"`
	MaxSignerFee      units.Satoshis `json:"max_signer_fee"`
	ReclaimLockTime   uint32         `json:"reclaim_lock_time"`
	ExpiresAt         time.Time      `json:"expires_at"`
	AmountSats        units.Satoshis `json:"amount_sats"`
	AmountBTC         string         `json:"amount_btc"`
	Network           types.Network  `json:"network"`
	PaymentURI        string         `json:"payment_uri"`
}

// CreateDepositAddress validates the request, fetches the current signer
// key and derives the one-time deposit address with its spend and reclaim
// scripts. Validation failures are raised before any network call; no
// partial DepositAddress is ever returned.
func (s *Service) CreateDepositAddress(ctx context.Context, req DepositRequest) (*DepositAddress, error) {
	if !address.IsValidStacksAddress(req.RecipientIdentity, s.network) {
		return nil, &types.ValidationError{
			Field:  "recipientIdentity",
			Reason: fmt.Sprintf("not a valid %s stacks address", s.network),
		}
	}
	if req.AmountSats < types.MinDepositSats {
		return nil, &types.ValidationError{
			Field:  "amountSats",
			Reason: fmt.Sprintf("below minimum deposit of %d sats", types.MinDepositSats),
		}
	}

	signerKey, err := s.signer.SignerPublicKey(ctx)
	if err != nil {
		return nil, err
	}

	maxSignerFee := req.MaxSignerFee
	if maxSignerFee == 0 {
		maxSignerFee = types.DefaultMaxSignerFeeSats
	}
	lockTime := req.ReclaimLockTime
	if lockTime == 0 {
		lockTime = types.DefaultReclaimLockTime
	}
	reclaimKey := req.ReclaimPublicKey
	if reclaimKey == "" {
		// Without a caller key the deposit can only be reclaimed by the
		// signer set. Loud on purpose; see DepositRequest.
		s.logger.Warn("no reclaim key supplied, falling back to signer key; depositor loses unilateral reclaim",
			"recipient", req.RecipientIdentity)
		reclaimKey = signerKey
	}

	derived, err := deriveDepositScripts(s.network, req.RecipientIdentity, signerKey, reclaimKey, maxSignerFee, lockTime)
	if err != nil {
		return nil, err
	}

	amountBTC := req.AmountSats.BTCString()
	deposit := &DepositAddress{
		Address:           derived.address,
		RecipientIdentity: req.RecipientIdentity,
		DepositScript:     hex.EncodeToString(derived.depositScript),
		ReclaimScript:     hex.EncodeToString(derived.reclaimScript),
		SignerPublicKey:   signerKey,
		ReclaimPublicKey:  reclaimKey,
		MaxSignerFee:      maxSignerFee,
		ReclaimLockTime:   lockTime,
		ExpiresAt:         s.now().Add(s.depositTTL),
		AmountSats:        req.AmountSats,
		AmountBTC:         amountBTC,
		Network:           s.network,
		PaymentURI:        buildPaymentURI(derived.address, amountBTC, req.RecipientIdentity),
	}

	if s.store != nil {
		record := models.DepositRecord{
			Address:    deposit.Address,
			Recipient:  deposit.RecipientIdentity,
			AmountSats: uint64(deposit.AmountSats),
			AmountBTC:  deposit.AmountBTC,
			Status:     types.StatusPending,
			Network:    string(s.network),
			CreatedAt:  s.now(),
			ExpiresAt:  deposit.ExpiresAt,
		}
		if err := s.store.CreateDepositRecord(ctx, record); err != nil {
			s.logger.Error("failed to record deposit address", "address", deposit.Address, "error", err)
		}
	}
	if s.metrics != nil {
		s.metrics.RecordDepositCreated(string(s.network))
	}

	s.logger.Info("derived deposit address",
		"address", deposit.Address,
		"recipient", deposit.RecipientIdentity,
		"amount_sats", deposit.AmountSats,
		"expires_at", deposit.ExpiresAt)

	return deposit, nil
}

// buildPaymentURI encodes the address and decimal amount for QR rendering:
// bitcoin:<address>?amount=<decimal>&label=<text>
func buildPaymentURI(addr, amountBTC, label string) string {
	q := url.Values{}
	q.Set("amount", amountBTC)
	q.Set("label", label)
	return "bitcoin:" + addr + "?" + q.Encode()
}
