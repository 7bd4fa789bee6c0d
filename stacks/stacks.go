// Package stacks is a client for a Stacks node's RPC API plus the wire
// encoding needed to submit contract calls: the c32 address codec, Clarity
// value serialization and SIP-005 transaction assembly/signing.
package stacks

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/stacksbridge/sbtc-bridge-api/metrics"
	"github.com/stacksbridge/sbtc-bridge-api/types"
	"github.com/stacksbridge/sbtc-bridge-api/units"
)

type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	Opts       *ClientOpts
}

type ClientOpts struct {
	Endpoint string
	Network  types.Network

	// ContractAddress/ContractName locate the wrapped-asset contract used
	// for balance reads and withdrawals.
	ContractAddress string
	ContractName    string

	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Timeout time.Duration
}

func NewClient(opts ClientOpts) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("stacks node endpoint is required")
	}
	if _, _, err := DecodeAddress(opts.ContractAddress); err != nil {
		return nil, fmt.Errorf("bad contract address: %w", err)
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

// AccountNonce fetches the next usable nonce for a principal.
func (c *Client) AccountNonce(ctx context.Context, principal string) (uint64, error) {
	op := "stacks account nonce"

	body, status, err := c.do(ctx, op, http.MethodGet, "/v2/accounts/"+principal+"?proof=0", "", nil)
	if err != nil {
		return 0, &types.NetworkError{Op: op, Cause: err}
	}
	if status < 200 || status > 299 {
		return 0, &types.ProtocolError{Op: op, StatusCode: status, Message: string(body)}
	}

	var out struct {
		Nonce uint64 `json:"nonce"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, &types.NetworkError{Op: op, Cause: fmt.Errorf("failed to decode response: %w", err)}
	}
	return out.Nonce, nil
}

// TokenBalance reads a principal's wrapped-asset balance via a read-only
// get-balance call against the asset contract.
func (c *Client) TokenBalance(ctx context.Context, principal string) (units.MicroSBTC, error) {
	op := "stacks token balance"

	arg, err := ClarityStandardPrincipal(principal)
	if err != nil {
		return 0, &types.ValidationError{Field: "principal", Reason: err.Error()}
	}

	reqBody, err := json.Marshal(map[string]any{
		"sender":    principal,
		"arguments": []string{"0x" + hex.EncodeToString(arg)},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to encode request: %w", err)
	}

	path := fmt.Sprintf("/v2/contracts/call-read/%s/%s/get-balance", c.Opts.ContractAddress, c.Opts.ContractName)
	body, status, err := c.do(ctx, op, http.MethodPost, path, "application/json", reqBody)
	if err != nil {
		return 0, &types.NetworkError{Op: op, Cause: err}
	}
	if status < 200 || status > 299 {
		return 0, &types.ProtocolError{Op: op, StatusCode: status, Message: string(body)}
	}

	var out struct {
		Okay   bool   `json:"okay"`
		Result string `json:"result"`
		Cause  string `json:"cause"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, &types.NetworkError{Op: op, Cause: fmt.Errorf("failed to decode response: %w", err)}
	}
	if !out.Okay {
		return 0, &types.ProtocolError{Op: op, StatusCode: status, Message: out.Cause}
	}

	raw, err := hex.DecodeString(strings.TrimPrefix(out.Result, "0x"))
	if err != nil {
		return 0, &types.NetworkError{Op: op, Cause: fmt.Errorf("bad result encoding: %w", err)}
	}
	v, err := ParseClarityUInt(raw)
	if err != nil {
		return 0, &types.NetworkError{Op: op, Cause: err}
	}
	return units.MicroSBTC(v), nil
}

// BroadcastTransaction submits a signed transaction and returns its txid.
// Never retried here; a duplicate contract call is a duplicate withdrawal.
func (c *Client) BroadcastTransaction(ctx context.Context, raw []byte) (string, error) {
	op := "stacks broadcast"

	body, status, err := c.do(ctx, op, http.MethodPost, "/v2/transactions", "application/octet-stream", raw)
	if err != nil {
		return "", &types.NetworkError{Op: op, Cause: err}
	}
	if status < 200 || status > 299 {
		return "", &types.ProtocolError{Op: op, StatusCode: status, Message: string(body)}
	}

	// The node replies with the txid as a JSON string.
	txid := strings.Trim(strings.TrimSpace(string(body)), `"`)
	c.logger.Info("broadcast stacks transaction", "txid", txid)
	return txid, nil
}

func (c *Client) do(ctx context.Context, op, method, path, contentType string, body []byte) ([]byte, int, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.Opts.Endpoint+path, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(op, "network_error", start)
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.record(op, "network_error", start)
		return nil, resp.StatusCode, err
	}
	c.record(op, resp.Status, start)
	return respBody, resp.StatusCode, nil
}

func (c *Client) record(op, status string, start time.Time) {
	if c.Opts.Metrics != nil {
		c.Opts.Metrics.RecordRPCCall(op, status, time.Since(start).Seconds())
	}
}
