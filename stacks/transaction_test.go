package stacks

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacksbridge/sbtc-bridge-api/types"
)

func testKey(t *testing.T) *btcec.PrivateKey {
	t.Helper()
	key, _ := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{0x01}, 32))
	return key
}

func testContractAddress(t *testing.T) string {
	t.Helper()
	addr, err := EncodeAddress(VersionTestnetP2PKH, bytes.Repeat([]byte{0x22}, 20))
	require.NoError(t, err)
	return addr
}

func TestBuildContractCall(t *testing.T) {
	arg := ClarityUInt(50_000)
	tx, err := BuildContractCall(ContractCallParams{
		ContractAddress: testContractAddress(t),
		ContractName:    "sbtc-token",
		FunctionName:    "withdraw",
		FunctionArgs:    [][]byte{arg},
		Fee:             3_000,
		Nonce:           7,
		SenderKey:       testKey(t),
		Network:         types.NetworkTestnet,
	})
	require.NoError(t, err)

	raw := tx.Serialize()

	// Testnet version byte and chain id.
	assert.Equal(t, byte(0x80), raw[0])
	assert.Equal(t, []byte{0x80, 0x00, 0x00, 0x00}, raw[1:5])

	// Standard single-sig auth with p2pkh hash mode.
	assert.Equal(t, byte(0x04), raw[5])
	assert.Equal(t, byte(0x00), raw[6])

	// Nonce and fee occupy the 16 bytes after the 20-byte signer hash.
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 7}, raw[27:35])
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0x0b, 0xb8}, raw[35:43])

	// The contract-call payload carries the function args verbatim.
	assert.True(t, bytes.Contains(raw, arg))
	assert.True(t, bytes.Contains(raw, []byte("withdraw")))

	txid := tx.Txid()
	assert.Len(t, txid, 64)
	_, err = hex.DecodeString(txid)
	assert.NoError(t, err)
}

func TestBuildContractCallMainnetVersion(t *testing.T) {
	addr, err := EncodeAddress(VersionMainnetP2PKH, bytes.Repeat([]byte{0x22}, 20))
	require.NoError(t, err)

	tx, err := BuildContractCall(ContractCallParams{
		ContractAddress: addr,
		ContractName:    "sbtc-token",
		FunctionName:    "withdraw",
		SenderKey:       testKey(t),
		Network:         types.NetworkMainnet,
	})
	require.NoError(t, err)

	raw := tx.Serialize()
	assert.Equal(t, byte(0x00), raw[0])
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x01}, raw[1:5])
}

func TestBuildContractCallIsDeterministic(t *testing.T) {
	params := ContractCallParams{
		ContractAddress: testContractAddress(t),
		ContractName:    "sbtc-token",
		FunctionName:    "withdraw",
		Fee:             3_000,
		Nonce:           7,
		SenderKey:       testKey(t),
		Network:         types.NetworkTestnet,
	}

	a, err := BuildContractCall(params)
	require.NoError(t, err)
	b, err := BuildContractCall(params)
	require.NoError(t, err)

	assert.Equal(t, a.Txid(), b.Txid())
	assert.Equal(t, a.Serialize(), b.Serialize())
}

func TestBuildContractCallValidation(t *testing.T) {
	base := ContractCallParams{
		ContractAddress: testContractAddress(t),
		ContractName:    "sbtc-token",
		FunctionName:    "withdraw",
		SenderKey:       testKey(t),
		Network:         types.NetworkTestnet,
	}

	missingKey := base
	missingKey.SenderKey = nil
	_, err := BuildContractCall(missingKey)
	assert.Error(t, err)

	missingFunc := base
	missingFunc.FunctionName = ""
	_, err = BuildContractCall(missingFunc)
	assert.Error(t, err)

	badContract := base
	badContract.ContractAddress = "not-an-address"
	_, err = BuildContractCall(badContract)
	assert.Error(t, err)
}

func TestAddressForKey(t *testing.T) {
	key := testKey(t)

	testnetAddr, err := AddressForKey(key, types.NetworkTestnet)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(testnetAddr, "ST"))

	mainnetAddr, err := AddressForKey(key, types.NetworkMainnet)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(mainnetAddr, "SP"))

	// Same key, different network tags, same underlying hash.
	_, testnetHash, err := DecodeAddress(testnetAddr)
	require.NoError(t, err)
	_, mainnetHash, err := DecodeAddress(mainnetAddr)
	require.NoError(t, err)
	assert.Equal(t, testnetHash, mainnetHash)
}
