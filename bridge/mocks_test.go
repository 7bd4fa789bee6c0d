package bridge

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"

	"github.com/stacksbridge/sbtc-bridge-api/database/models"
	"github.com/stacksbridge/sbtc-bridge-api/explorer"
	"github.com/stacksbridge/sbtc-bridge-api/signers"
	"github.com/stacksbridge/sbtc-bridge-api/stacks"
	"github.com/stacksbridge/sbtc-bridge-api/types"
	"github.com/stacksbridge/sbtc-bridge-api/units"
)

// Call-counting fakes for the three external clients and the store. Tests
// assert on the counters to prove validation short-circuits before any
// network traffic.

type mockSignerClient struct {
	signerKey    string
	signerKeyErr error
	feeRates     map[string]uint64
	feeErr       error
	feeErrs      map[string]error
	utxos        []signers.UTXO
	notifyErr    error

	signerKeyCalls int
	feeRateCalls   int
	notifyCalls    int
	notified       []signers.NotifyDepositParams
}

func (m *mockSignerClient) SignerPublicKey(ctx context.Context) (string, error) {
	m.signerKeyCalls++
	return m.signerKey, m.signerKeyErr
}

func (m *mockSignerClient) SignerAddress(ctx context.Context) (string, error) {
	return "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx", nil
}

func (m *mockSignerClient) FeeRate(ctx context.Context, tier string) (uint64, error) {
	m.feeRateCalls++
	if m.feeErr != nil {
		return 0, m.feeErr
	}
	if err := m.feeErrs[tier]; err != nil {
		return 0, err
	}
	return m.feeRates[tier], nil
}

func (m *mockSignerClient) UnspentOutputs(ctx context.Context, addr string) ([]signers.UTXO, error) {
	return m.utxos, nil
}

func (m *mockSignerClient) BroadcastTransaction(ctx context.Context, rawHex string) (string, error) {
	return "", nil
}

func (m *mockSignerClient) NotifyDeposit(ctx context.Context, params signers.NotifyDepositParams) error {
	m.notifyCalls++
	m.notified = append(m.notified, params)
	return m.notifyErr
}

type mockExplorerClient struct {
	tx     *explorer.TxRecord
	txErr  error
	tip    uint64
	tipErr error

	txCalls  int
	tipCalls int
}

func (m *mockExplorerClient) Transaction(ctx context.Context, txid string) (*explorer.TxRecord, error) {
	m.txCalls++
	return m.tx, m.txErr
}

func (m *mockExplorerClient) TipHeight(ctx context.Context) (uint64, error) {
	m.tipCalls++
	return m.tip, m.tipErr
}

type mockLedgerClient struct {
	nonce        uint64
	nonceErr     error
	balance      units.MicroSBTC
	balanceErr   error
	broadcastID  string
	broadcastErr error

	nonceCalls     int
	balanceCalls   int
	broadcastCalls int
	broadcastRaw   []byte
}

func (m *mockLedgerClient) AccountNonce(ctx context.Context, principal string) (uint64, error) {
	m.nonceCalls++
	return m.nonce, m.nonceErr
}

func (m *mockLedgerClient) TokenBalance(ctx context.Context, principal string) (units.MicroSBTC, error) {
	m.balanceCalls++
	return m.balance, m.balanceErr
}

func (m *mockLedgerClient) BroadcastTransaction(ctx context.Context, raw []byte) (string, error) {
	m.broadcastCalls++
	m.broadcastRaw = raw
	return m.broadcastID, m.broadcastErr
}

type mockStore struct {
	deposits      []models.DepositRecord
	withdrawals   []models.WithdrawalRecord
	statusUpdates map[string]types.TxStatus
	attachErr     error
	updateErr     error
}

func (m *mockStore) CreateDepositRecord(ctx context.Context, record models.DepositRecord) error {
	m.deposits = append(m.deposits, record)
	return nil
}

func (m *mockStore) AttachDepositTxid(ctx context.Context, address, txid string) error {
	if m.attachErr != nil {
		return m.attachErr
	}
	for i := range m.deposits {
		if m.deposits[i].Address == address {
			m.deposits[i].Txid = txid
			return nil
		}
	}
	return fmt.Errorf("no deposit found with address %s", address)
}

func (m *mockStore) UpdateDepositStatus(ctx context.Context, txid string, status types.TxStatus) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if m.statusUpdates == nil {
		m.statusUpdates = make(map[string]types.TxStatus)
	}
	m.statusUpdates[txid] = status
	return nil
}

func (m *mockStore) CreateWithdrawalRecord(ctx context.Context, record models.WithdrawalRecord) error {
	m.withdrawals = append(m.withdrawals, record)
	return nil
}

// Shared fixtures.

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func testSignerKeyHex(t *testing.T) string {
	t.Helper()
	key, _ := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{0x02}, 32))
	return hex.EncodeToString(key.PubKey().SerializeCompressed())
}

func testReclaimKeyHex(t *testing.T) string {
	t.Helper()
	key, _ := btcec.PrivKeyFromBytes(bytes.Repeat([]byte{0x03}, 32))
	return hex.EncodeToString(key.PubKey().SerializeCompressed())
}

func testSenderKeyHex(t *testing.T) string {
	t.Helper()
	return hex.EncodeToString(bytes.Repeat([]byte{0x04}, 32))
}

func testRecipient(t *testing.T) string {
	t.Helper()
	addr, err := stacks.EncodeAddress(stacks.VersionTestnetP2PKH, bytes.Repeat([]byte{0x11}, 20))
	require.NoError(t, err)
	return addr
}

func testContractAddress(t *testing.T) string {
	t.Helper()
	addr, err := stacks.EncodeAddress(stacks.VersionTestnetP2PKH, bytes.Repeat([]byte{0x22}, 20))
	require.NoError(t, err)
	return addr
}

type testEnv struct {
	svc      *Service
	signer   *mockSignerClient
	explorer *mockExplorerClient
	ledger   *mockLedgerClient
	store    *mockStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		signer: &mockSignerClient{
			signerKey: testSignerKeyHex(t),
			feeRates:  map[string]uint64{"low": 1, "medium": 2, "high": 4},
		},
		explorer: &mockExplorerClient{},
		ledger:   &mockLedgerClient{broadcastID: "a1b2c3"},
		store:    &mockStore{},
	}

	env.svc = NewService(ServiceOpts{
		Signer:          env.signer,
		Explorer:        env.explorer,
		Ledger:          env.ledger,
		Store:           env.store,
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		Network:         types.NetworkTestnet,
		ContractAddress: testContractAddress(t),
		ContractName:    "sbtc-token",
	})
	env.svc.now = func() time.Time { return testNow }

	return env
}
