// Package address classifies strings as valid Stacks or Bitcoin addresses
// for a given network. All predicates are pure and total: malformed input
// returns false, never panics.
package address

import (
	"regexp"

	"github.com/stacksbridge/sbtc-bridge-api/types"
)

// Stacks addresses are "S" + one version character + 38-40 characters of
// the Crockford-like c32 alphabet (no I, L, O, U). Mainnet uses versions
// P (single-sig) and M (multisig); testnet uses T and N.
var (
	stacksMainnetRe = regexp.MustCompile(`^S[PM][0-9A-HJKMNP-TV-Z]{38,40}$`)
	stacksTestnetRe = regexp.MustCompile(`^S[TN][0-9A-HJKMNP-TV-Z]{38,40}$`)
)

// Bitcoin legacy prefixes and bech32 HRPs are disjoint between networks,
// so a mainnet service never accepts a testnet string and vice versa.
var (
	btcMainnetLegacyRe = regexp.MustCompile(`^[13][1-9A-HJ-NP-Za-km-z]{25,34}$`)
	btcMainnetBech32Re = regexp.MustCompile(`^bc1[02-9ac-hj-np-z]{11,87}$`)
	btcTestnetLegacyRe = regexp.MustCompile(`^[mn2][1-9A-HJ-NP-Za-km-z]{25,34}$`)
	btcTestnetBech32Re = regexp.MustCompile(`^tb1[02-9ac-hj-np-z]{11,87}$`)
	btcRegtestBech32Re = regexp.MustCompile(`^bcrt1[02-9ac-hj-np-z]{11,87}$`)
)

// IsValidStacksAddress reports whether s is a well-formed Stacks address
// for the given network.
func IsValidStacksAddress(s string, network types.Network) bool {
	switch network {
	case types.NetworkMainnet:
		return stacksMainnetRe.MatchString(s)
	case types.NetworkTestnet, types.NetworkDevnet:
		return stacksTestnetRe.MatchString(s)
	default:
		return false
	}
}

// IsValidBitcoinAddress reports whether s is a well-formed Bitcoin address
// (legacy or segwit) for the given network.
func IsValidBitcoinAddress(s string, network types.Network) bool {
	switch network {
	case types.NetworkMainnet:
		return btcMainnetLegacyRe.MatchString(s) || btcMainnetBech32Re.MatchString(s)
	case types.NetworkTestnet:
		return btcTestnetLegacyRe.MatchString(s) || btcTestnetBech32Re.MatchString(s)
	case types.NetworkDevnet:
		// Regtest shares legacy prefixes with testnet but has its own HRP.
		return btcTestnetLegacyRe.MatchString(s) || btcRegtestBech32Re.MatchString(s)
	default:
		return false
	}
}
