package types

import "time"

// Network identifies which Bitcoin/Stacks network pair the service targets.
type Network string

const (
	// NetworkMainnet - Bitcoin mainnet paired with Stacks mainnet
	NetworkMainnet Network = "mainnet"

	// NetworkTestnet - Bitcoin testnet3 paired with Stacks testnet
	NetworkTestnet Network = "testnet"

	// NetworkDevnet - Bitcoin regtest paired with a local Stacks devnet
	NetworkDevnet Network = "devnet"
)

// IsMainnet reports whether the network is the production pair.
func (n Network) IsMainnet() bool {
	return n == NetworkMainnet
}

// TxStatus represents the different states a tracked transaction can be in
type TxStatus string

const (
	// StatusPending - Transaction is unconfirmed or not yet visible on-chain
	StatusPending TxStatus = "PENDING"

	// StatusConfirmed - Transaction has reached the confirmation threshold
	StatusConfirmed TxStatus = "CONFIRMED"

	// StatusFailed - The chain explorer explicitly rejected the lookup
	StatusFailed TxStatus = "FAILED"
)

const (
	// ConfirmationThreshold is the number of confirmations required before a
	// Bitcoin transaction is treated as final. This is a protocol constant,
	// not configurable per call.
	ConfirmationThreshold = 6

	// MinDepositSats is the smallest deposit the signer set will process.
	MinDepositSats = 10_000

	// DustLimitSats is the output value below which a change output is not
	// worth creating and is folded into the mining fee instead.
	DustLimitSats = 546

	// DefaultMaxSignerFeeSats is the signer fee ceiling applied when a
	// deposit request does not specify one.
	DefaultMaxSignerFeeSats = 80_000

	// DefaultReclaimLockTime is the relative lock time, in blocks, of the
	// reclaim script path when the request does not specify one.
	DefaultReclaimLockTime = 144

	// DefaultDepositTTL is how long an issued deposit address is advertised
	// as usable. Advisory only; the derivation has no on-chain expiry
	// beyond the reclaim lock time.
	DefaultDepositTTL = 30 * time.Minute
)
