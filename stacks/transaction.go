package stacks

import (
	"bytes"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"

	"github.com/stacksbridge/sbtc-bridge-api/types"
)

// SIP-005 wire-format constants.
const (
	txVersionMainnet = 0x00
	txVersionTestnet = 0x80

	chainIDMainnet = 0x00000001
	chainIDTestnet = 0x80000000

	authTypeStandard      = 0x04
	hashModeP2PKH         = 0x00
	keyEncodingCompressed = 0x00
	anchorModeAny         = 0x03
	postConditionAllow    = 0x01

	payloadTypeContractCall = 0x02
)

// ContractCallParams describes a single-sig contract call.
type ContractCallParams struct {
	ContractAddress string
	ContractName    string
	FunctionName    string
	FunctionArgs    [][]byte

	Fee       uint64
	Nonce     uint64
	SenderKey *btcec.PrivateKey
	Network   types.Network
}

// Transaction is a signed Stacks transaction ready for broadcast.
type Transaction struct {
	raw []byte
}

// Serialize returns the wire bytes.
func (t *Transaction) Serialize() []byte {
	out := make([]byte, len(t.raw))
	copy(out, t.raw)
	return out
}

// Txid returns the transaction id as hex.
func (t *Transaction) Txid() string {
	digest := sha512.Sum512_256(t.raw)
	return hex.EncodeToString(digest[:])
}

// BuildContractCall assembles and signs a contract-call transaction per
// SIP-005: serialize with a cleared spending condition, hash, fold in the
// auth flag, fee and nonce, then sign with recoverable ECDSA.
func BuildContractCall(params ContractCallParams) (*Transaction, error) {
	if params.SenderKey == nil {
		return nil, fmt.Errorf("sender key is required")
	}
	if params.ContractName == "" || params.FunctionName == "" {
		return nil, fmt.Errorf("contract and function names are required")
	}

	payload, err := serializeContractCallPayload(params)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize payload: %w", err)
	}

	pubKey := params.SenderKey.PubKey()
	signerHash := btcutil.Hash160(pubKey.SerializeCompressed())

	// Initial sighash over the transaction with signature, fee and nonce
	// all zeroed.
	cleared := serializeTransaction(params.Network, signerHash, 0, 0, [65]byte{}, payload)
	sighash := sha512.Sum512_256(cleared)

	presign := make([]byte, 0, 32+1+8+8)
	presign = append(presign, sighash[:]...)
	presign = append(presign, authTypeStandard)
	presign = binary.BigEndian.AppendUint64(presign, params.Fee)
	presign = binary.BigEndian.AppendUint64(presign, params.Nonce)
	digest := sha512.Sum512_256(presign)

	compact := ecdsa.SignCompact(params.SenderKey, digest[:], true)

	// SignCompact prefixes a header byte of 27 + recovery id + 4 for a
	// compressed key; Stacks wants the bare recovery id followed by r||s.
	var sig [65]byte
	sig[0] = compact[0] - 27 - 4
	copy(sig[1:], compact[1:])

	raw := serializeTransaction(params.Network, signerHash, params.Fee, params.Nonce, sig, payload)
	return &Transaction{raw: raw}, nil
}

func serializeTransaction(network types.Network, signerHash []byte, fee, nonce uint64, sig [65]byte, payload []byte) []byte {
	var buf bytes.Buffer

	if network.IsMainnet() {
		buf.WriteByte(txVersionMainnet)
		binary.Write(&buf, binary.BigEndian, uint32(chainIDMainnet))
	} else {
		buf.WriteByte(txVersionTestnet)
		binary.Write(&buf, binary.BigEndian, uint32(chainIDTestnet))
	}

	// Standard single-sig spending condition.
	buf.WriteByte(authTypeStandard)
	buf.WriteByte(hashModeP2PKH)
	buf.Write(signerHash)
	binary.Write(&buf, binary.BigEndian, nonce)
	binary.Write(&buf, binary.BigEndian, fee)
	buf.WriteByte(keyEncodingCompressed)
	buf.Write(sig[:])

	buf.WriteByte(anchorModeAny)
	buf.WriteByte(postConditionAllow)
	binary.Write(&buf, binary.BigEndian, uint32(0)) // no post conditions

	buf.Write(payload)
	return buf.Bytes()
}

func serializeContractCallPayload(params ContractCallParams) ([]byte, error) {
	version, hash160, err := DecodeAddress(params.ContractAddress)
	if err != nil {
		return nil, fmt.Errorf("bad contract address: %w", err)
	}
	if len(params.ContractName) > 128 {
		return nil, fmt.Errorf("contract name too long")
	}
	if len(params.FunctionName) > 128 {
		return nil, fmt.Errorf("function name too long")
	}

	var buf bytes.Buffer
	buf.WriteByte(payloadTypeContractCall)
	buf.WriteByte(version)
	buf.Write(hash160)
	buf.WriteByte(byte(len(params.ContractName)))
	buf.WriteString(params.ContractName)
	buf.WriteByte(byte(len(params.FunctionName)))
	buf.WriteString(params.FunctionName)
	binary.Write(&buf, binary.BigEndian, uint32(len(params.FunctionArgs)))
	for _, arg := range params.FunctionArgs {
		buf.Write(arg)
	}
	return buf.Bytes(), nil
}

// AddressForKey derives the single-sig Stacks address of a private key on
// the given network.
func AddressForKey(key *btcec.PrivateKey, network types.Network) (string, error) {
	version := byte(VersionTestnetP2PKH)
	if network.IsMainnet() {
		version = VersionMainnetP2PKH
	}
	hash160 := btcutil.Hash160(key.PubKey().SerializeCompressed())
	return EncodeAddress(version, hash160)
}
