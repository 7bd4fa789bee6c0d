// Package signers is a thin client for the signer coordination API: signer
// key material, fee-rate tiers, UTXO lookups, transaction broadcast and
// deposit notification. Every call is stateless request/response; the
// client never retries on its own.
package signers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/stacksbridge/sbtc-bridge-api/metrics"
	"github.com/stacksbridge/sbtc-bridge-api/types"
)

type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	Opts       *ClientOpts
}

type ClientOpts struct {
	Endpoint string
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Timeout  time.Duration
}

// UTXO is a spendable output as reported by the signer API.
type UTXO struct {
	Txid   string `json:"txid"`
	Vout   uint32 `json:"vout"`
	Amount uint64 `json:"amount"`
}

// NotifyDepositParams identifies a funding transaction and the scripts the
// signer set needs to take custody of its deposit output.
type NotifyDepositParams struct {
	Txid          string `json:"bitcoin_txid"`
	Vout          uint32 `json:"bitcoin_tx_output_index"`
	DepositScript string `json:"deposit_script"`
	ReclaimScript string `json:"reclaim_script"`
}

func NewClient(opts ClientOpts) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("signer API endpoint is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		logger:     opts.Logger,
		Opts:       &opts,
	}, nil
}

// SignerPublicKey fetches the current aggregate signer public key as
// compressed hex.
func (c *Client) SignerPublicKey(ctx context.Context) (string, error) {
	var out struct {
		PublicKey string `json:"public_key"`
	}
	if err := c.doJSON(ctx, "signer public key", http.MethodGet, "/signer/public-key", nil, &out); err != nil {
		return "", err
	}
	return out.PublicKey, nil
}

// SignerAddress fetches the signer set's Stacks principal.
func (c *Client) SignerAddress(ctx context.Context) (string, error) {
	var out struct {
		Address string `json:"address"`
	}
	if err := c.doJSON(ctx, "signer address", http.MethodGet, "/signer/address", nil, &out); err != nil {
		return "", err
	}
	return out.Address, nil
}

// FeeRate fetches the recommended fee rate in sats/vB for one tier
// ("low", "medium" or "high").
func (c *Client) FeeRate(ctx context.Context, tier string) (uint64, error) {
	var out struct {
		SatsPerVByte uint64 `json:"sats_per_vbyte"`
	}
	if err := c.doJSON(ctx, "fee rate", http.MethodGet, "/fees/"+tier, nil, &out); err != nil {
		return 0, err
	}
	return out.SatsPerVByte, nil
}

// UnspentOutputs fetches the spendable outputs of a Bitcoin address.
func (c *Client) UnspentOutputs(ctx context.Context, addr string) ([]UTXO, error) {
	var out []UTXO
	if err := c.doJSON(ctx, "utxo lookup", http.MethodGet, "/address/"+addr+"/utxo", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BroadcastTransaction submits a raw Bitcoin transaction (hex) and returns
// its txid. Never retried here.
func (c *Client) BroadcastTransaction(ctx context.Context, rawHex string) (string, error) {
	body := map[string]string{"tx": rawHex}
	var out struct {
		Txid string `json:"txid"`
	}
	if err := c.doJSON(ctx, "bitcoin broadcast", http.MethodPost, "/tx", body, &out); err != nil {
		return "", err
	}
	return out.Txid, nil
}

// NotifyDeposit informs the signer set that a funding transaction exists so
// minting can proceed. The server treats repeated notifications for the
// same txid as a no-op, so callers may retry after a failure.
func (c *Client) NotifyDeposit(ctx context.Context, params NotifyDepositParams) error {
	c.logger.Info("notifying signers of deposit",
		"txid", params.Txid,
		"vout", params.Vout)
	return c.doJSON(ctx, "deposit notify", http.MethodPost, "/deposits/notify", params, nil)
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.Opts.Endpoint+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(op, "network_error", start)
		return &types.NetworkError{Op: op, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.record(op, "rejected", start)
		return &types.ProtocolError{Op: op, StatusCode: resp.StatusCode, Message: string(msg)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.record(op, "network_error", start)
			return &types.NetworkError{Op: op, Cause: fmt.Errorf("failed to decode response: %w", err)}
		}
	}
	c.record(op, "ok", start)
	return nil
}

func (c *Client) record(op, status string, start time.Time) {
	if c.Opts.Metrics != nil {
		c.Opts.Metrics.RecordRPCCall(op, status, time.Since(start).Seconds())
	}
}
