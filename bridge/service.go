// Package bridge orchestrates sBTC deposits and withdrawals: deposit
// address derivation, funding transaction assembly, signer notification,
// withdrawal submission, confirmation tracking and network health.
//
// The service owns no mutable session state. Every operation is an
// independent request/response against the injected clients, so calls may
// run concurrently from any number of callers.
package bridge

import (
	"context"
	"log/slog"
	"time"

	"github.com/stacksbridge/sbtc-bridge-api/database/models"
	"github.com/stacksbridge/sbtc-bridge-api/explorer"
	"github.com/stacksbridge/sbtc-bridge-api/metrics"
	"github.com/stacksbridge/sbtc-bridge-api/signers"
	"github.com/stacksbridge/sbtc-bridge-api/types"
	"github.com/stacksbridge/sbtc-bridge-api/units"
)

// SignerClient is the slice of the signer coordination API the service
// needs. *signers.Client implements it.
type SignerClient interface {
	SignerPublicKey(ctx context.Context) (string, error)
	SignerAddress(ctx context.Context) (string, error)
	FeeRate(ctx context.Context, tier string) (uint64, error)
	UnspentOutputs(ctx context.Context, addr string) ([]signers.UTXO, error)
	BroadcastTransaction(ctx context.Context, rawHex string) (string, error)
	NotifyDeposit(ctx context.Context, params signers.NotifyDepositParams) error
}

// ExplorerClient is the slice of the chain explorer API the service needs.
// *explorer.Client implements it.
type ExplorerClient interface {
	Transaction(ctx context.Context, txid string) (*explorer.TxRecord, error)
	TipHeight(ctx context.Context) (uint64, error)
}

// LedgerClient is the slice of the Stacks node API the service needs.
// *stacks.Client implements it.
type LedgerClient interface {
	AccountNonce(ctx context.Context, principal string) (uint64, error)
	TokenBalance(ctx context.Context, principal string) (units.MicroSBTC, error)
	BroadcastTransaction(ctx context.Context, raw []byte) (string, error)
}

// Store records issued deposit addresses and submitted withdrawals for the
// dashboard. A nil Store disables recording; record failures never fail
// the bridge operation itself.
type Store interface {
	CreateDepositRecord(ctx context.Context, record models.DepositRecord) error
	AttachDepositTxid(ctx context.Context, address, txid string) error
	UpdateDepositStatus(ctx context.Context, txid string, status types.TxStatus) error
	CreateWithdrawalRecord(ctx context.Context, record models.WithdrawalRecord) error
}

type Service struct {
	signer   SignerClient
	explorer ExplorerClient
	ledger   LedgerClient
	store    Store
	metrics  *metrics.Metrics
	logger   *slog.Logger

	network         types.Network
	contractAddress string
	contractName    string
	depositTTL      time.Duration

	// now is swapped out in tests.
	now func() time.Time
}

type ServiceOpts struct {
	Signer   SignerClient
	Explorer ExplorerClient
	Ledger   LedgerClient
	Store    Store
	Metrics  *metrics.Metrics
	Logger   *slog.Logger

	Network         types.Network
	ContractAddress string
	ContractName    string
	DepositTTL      time.Duration
}

func NewService(opts ServiceOpts) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.DepositTTL == 0 {
		opts.DepositTTL = types.DefaultDepositTTL
	}

	return &Service{
		signer:          opts.Signer,
		explorer:        opts.Explorer,
		ledger:          opts.Ledger,
		store:           opts.Store,
		metrics:         opts.Metrics,
		logger:          opts.Logger,
		network:         opts.Network,
		contractAddress: opts.ContractAddress,
		contractName:    opts.ContractName,
		depositTTL:      opts.DepositTTL,
		now:             time.Now,
	}
}

// Network returns the configured network pair.
func (s *Service) Network() types.Network {
	return s.network
}
