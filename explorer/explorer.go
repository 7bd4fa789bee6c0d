// Package explorer is a client for a Bitcoin chain explorer with a
// mempool.space compatible API. It serves transaction/confirmation lookups
// for the status tracker.
package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/stacksbridge/sbtc-bridge-api/metrics"
	"github.com/stacksbridge/sbtc-bridge-api/types"
)

// ErrTxNotFound means the explorer does not know the transaction yet. The
// status tracker maps this to pending, never to failed.
var ErrTxNotFound = errors.New("transaction not found")

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

// TxRecord is the explorer's view of a transaction's inclusion state.
type TxRecord struct {
	Txid        string
	Confirmed   bool
	BlockHeight uint64
}

func NewClient(opts ClientOpts) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("explorer endpoint is required")
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

// Transaction fetches the confirmation record of a transaction. Returns
// ErrTxNotFound when the explorer has never seen the txid, a ProtocolError
// when the explorer explicitly rejects the lookup, and a NetworkError on
// transport failure.
func (c *Client) Transaction(ctx context.Context, txid string) (*TxRecord, error) {
	op := "explorer tx lookup"

	body, status, err := c.get(ctx, op, "/tx/"+txid)
	if err != nil {
		return nil, &types.NetworkError{Op: op, Cause: err}
	}
	switch {
	case status == http.StatusNotFound:
		return nil, ErrTxNotFound
	case status < 200 || status > 299:
		return nil, &types.ProtocolError{Op: op, StatusCode: status, Message: string(body)}
	}

	var out struct {
		Txid   string `json:"txid"`
		Status struct {
			Confirmed   bool   `json:"confirmed"`
			BlockHeight uint64 `json:"block_height"`
		} `json:"status"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &types.NetworkError{Op: op, Cause: fmt.Errorf("failed to decode response: %w", err)}
	}

	return &TxRecord{
		Txid:        out.Txid,
		Confirmed:   out.Status.Confirmed,
		BlockHeight: out.Status.BlockHeight,
	}, nil
}

// TipHeight fetches the current chain tip height.
func (c *Client) TipHeight(ctx context.Context) (uint64, error) {
	op := "explorer tip height"

	body, status, err := c.get(ctx, op, "/blocks/tip/height")
	if err != nil {
		return 0, &types.NetworkError{Op: op, Cause: err}
	}
	if status < 200 || status > 299 {
		return 0, &types.ProtocolError{Op: op, StatusCode: status, Message: string(body)}
	}

	height, err := strconv.ParseUint(strings.TrimSpace(string(body)), 10, 64)
	if err != nil {
		return 0, &types.NetworkError{Op: op, Cause: fmt.Errorf("failed to parse tip height: %w", err)}
	}
	return height, nil
}

func (c *Client) get(ctx context.Context, op, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Opts.Endpoint+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(op, "network_error", start)
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.record(op, "network_error", start)
		return nil, resp.StatusCode, err
	}
	c.record(op, resp.Status, start)
	return body, resp.StatusCode, nil
}

func (c *Client) record(op, status string, start time.Time) {
	if c.Opts.Metrics != nil {
		c.Opts.Metrics.RecordRPCCall(op, status, time.Since(start).Seconds())
	}
}
