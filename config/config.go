// Package config loads the service's NetworkInfo from the environment.
// The result is read at process start and treated as read-only
// configuration thereafter.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/stacksbridge/sbtc-bridge-api/types"
)

// NetworkInfo is everything the bridge needs to know about its network
// pair and external services.
type NetworkInfo struct {
	Network types.Network

	SignerAPIURL  string
	ExplorerURL   string
	StacksNodeURL string

	// ContractAddress/ContractName locate the wrapped-asset contract.
	ContractAddress string
	ContractName    string

	DatabaseURI  string
	DatabaseName string

	APIPort      string
	DepositTTL   time.Duration
	PollInterval time.Duration
}

// Load reads configuration from environment variables and validates all
// required fields, collecting every missing variable so the operator sees
// the full list at once.
func Load() (*NetworkInfo, error) {
	info := &NetworkInfo{}
	var errs []error

	network := types.Network(getEnvOrDefault("BRIDGE_NETWORK", string(types.NetworkTestnet)))
	switch network {
	case types.NetworkMainnet, types.NetworkTestnet, types.NetworkDevnet:
		info.Network = network
	default:
		errs = append(errs, fmt.Errorf("BRIDGE_NETWORK must be mainnet, testnet or devnet, got %q", network))
	}

	info.SignerAPIURL = os.Getenv("SIGNER_API_URL")
	if info.SignerAPIURL == "" {
		errs = append(errs, fmt.Errorf("SIGNER_API_URL is required"))
	}

	info.ExplorerURL = os.Getenv("EXPLORER_URL")
	if info.ExplorerURL == "" {
		errs = append(errs, fmt.Errorf("EXPLORER_URL is required"))
	}

	info.StacksNodeURL = os.Getenv("STACKS_NODE_URL")
	if info.StacksNodeURL == "" {
		errs = append(errs, fmt.Errorf("STACKS_NODE_URL is required"))
	}

	info.ContractAddress = os.Getenv("SBTC_CONTRACT_ADDRESS")
	if info.ContractAddress == "" {
		errs = append(errs, fmt.Errorf("SBTC_CONTRACT_ADDRESS is required"))
	}
	info.ContractName = getEnvOrDefault("SBTC_CONTRACT_NAME", "sbtc-token")

	info.DatabaseURI = os.Getenv("DATABASE_URI")
	if info.DatabaseURI == "" {
		errs = append(errs, fmt.Errorf("DATABASE_URI is required"))
	}
	info.DatabaseName = getEnvOrDefault("DATABASE_NAME", "sbtc_bridge")

	info.APIPort = getEnvOrDefault("API_PORT", "8080")

	ttl, err := parseDurationEnv("DEPOSIT_TTL", types.DefaultDepositTTL)
	if err != nil {
		errs = append(errs, err)
	}
	info.DepositTTL = ttl

	interval, err := parseDurationEnv("POLL_INTERVAL", time.Minute)
	if err != nil {
		errs = append(errs, err)
	}
	info.PollInterval = interval

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return info, nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return d, nil
}
