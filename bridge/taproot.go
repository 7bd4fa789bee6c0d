package bridge

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"

	"github.com/stacksbridge/sbtc-bridge-api/stacks"
	"github.com/stacksbridge/sbtc-bridge-api/types"
	"github.com/stacksbridge/sbtc-bridge-api/units"
)

// numsPointHex is the BIP-341 "nothing up my sleeve" internal key. Using
// it guarantees the deposit output can only be spent through one of the
// two script paths, never by key path.
const numsPointHex = "50929b74c1a04954b78b4b6035e97a5e078a5a0f28ec96d547bfee9ace803ac0"

// depositScripts is the deterministic derivation result: a one-time
// taproot address committing to a signer spend leaf and a depositor
// reclaim leaf.
type depositScripts struct {
	address       string
	depositScript []byte
	reclaimScript []byte
}

// deriveDepositScripts builds the two tapscript leaves and the address
// committing to them. Pure: same inputs always yield the same address.
//
// Deposit leaf:  <maxSignerFee u64 BE || recipient principal> OP_DROP
//                <signer xonly key> OP_CHECKSIG
// Reclaim leaf:  <lockTime> OP_CHECKSEQUENCEVERIFY OP_DROP
//                <reclaim xonly key> OP_CHECKSIG
func deriveDepositScripts(
	network types.Network,
	recipient string,
	signerKeyHex string,
	reclaimKeyHex string,
	maxSignerFee units.Satoshis,
	reclaimLockTime uint32,
) (*depositScripts, error) {
	version, hash160, err := stacks.DecodeAddress(recipient)
	if err != nil {
		return nil, &types.ValidationError{Field: "recipientIdentity", Reason: err.Error()}
	}

	signerKey, err := parseXOnlyKey(signerKeyHex)
	if err != nil {
		return nil, fmt.Errorf("bad signer public key: %w", err)
	}
	reclaimKey, err := parseXOnlyKey(reclaimKeyHex)
	if err != nil {
		return nil, &types.ValidationError{Field: "reclaimPublicKey", Reason: err.Error()}
	}

	// The deposit leaf data pins the fee ceiling and the mint recipient so
	// the signer set cannot alter either.
	depositData := make([]byte, 0, 8+1+20)
	depositData = binary.BigEndian.AppendUint64(depositData, uint64(maxSignerFee))
	depositData = append(depositData, version)
	depositData = append(depositData, hash160...)

	depositScript, err := txscript.NewScriptBuilder().
		AddData(depositData).
		AddOp(txscript.OP_DROP).
		AddData(signerKey).
		AddOp(txscript.OP_CHECKSIG).
		Script()
	if err != nil {
		return nil, fmt.Errorf("failed to build deposit script: %w", err)
	}

	reclaimScript, err := txscript.NewScriptBuilder().
		AddInt64(int64(reclaimLockTime)).
		AddOp(txscript.OP_CHECKSEQUENCEVERIFY).
		AddOp(txscript.OP_DROP).
		AddData(reclaimKey).
		AddOp(txscript.OP_CHECKSIG).
		Script()
	if err != nil {
		return nil, fmt.Errorf("failed to build reclaim script: %w", err)
	}

	numsBytes, err := hex.DecodeString(numsPointHex)
	if err != nil {
		return nil, err
	}
	internalKey, err := schnorr.ParsePubKey(numsBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse internal key: %w", err)
	}

	tree := txscript.AssembleTaprootScriptTree(
		txscript.NewBaseTapLeaf(depositScript),
		txscript.NewBaseTapLeaf(reclaimScript),
	)
	root := tree.RootNode.TapHash()
	outputKey := txscript.ComputeTaprootOutputKey(internalKey, root[:])

	addr, err := btcutil.NewAddressTaproot(schnorr.SerializePubKey(outputKey), chainParams(network))
	if err != nil {
		return nil, fmt.Errorf("failed to encode taproot address: %w", err)
	}

	return &depositScripts{
		address:       addr.EncodeAddress(),
		depositScript: depositScript,
		reclaimScript: reclaimScript,
	}, nil
}

// parseXOnlyKey accepts a public key as 33-byte compressed or 32-byte
// x-only hex and returns the 32-byte x-only form.
func parseXOnlyKey(keyHex string) ([]byte, error) {
	raw, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("not hex: %w", err)
	}

	switch len(raw) {
	case schnorr.PubKeyBytesLen:
		pub, err := schnorr.ParsePubKey(raw)
		if err != nil {
			return nil, err
		}
		return schnorr.SerializePubKey(pub), nil
	case btcec.PubKeyBytesLenCompressed:
		pub, err := btcec.ParsePubKey(raw)
		if err != nil {
			return nil, err
		}
		return schnorr.SerializePubKey(pub), nil
	default:
		return nil, fmt.Errorf("unexpected key length %d", len(raw))
	}
}

func chainParams(network types.Network) *chaincfg.Params {
	switch network {
	case types.NetworkMainnet:
		return &chaincfg.MainNetParams
	case types.NetworkDevnet:
		return &chaincfg.RegressionNetParams
	default:
		return &chaincfg.TestNet3Params
	}
}
