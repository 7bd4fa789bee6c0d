// Package units converts between satoshis, the wrapped asset's micro-unit
// and human-readable decimal strings.
//
// Canonical scale: the native chain uses 8 decimal places (1 BTC = 1e8
// sats), the wrapped asset uses 6 (1 sBTC = 1e6 micro-units), and the peg
// is 1:1, so one micro-unit is exactly 100 sats. All conversions are pure
// integer/string operations; no floating point anywhere.
package units

import (
	"fmt"
	"math"
	"strings"
)

// Satoshis is an amount on the native chain.
type Satoshis uint64

// MicroSBTC is an amount of the wrapped asset in its smallest denomination.
type MicroSBTC uint64

const (
	// SatsPerBTC - native chain decimal scale
	SatsPerBTC = 100_000_000

	// MicroPerToken - wrapped asset decimal scale
	MicroPerToken = 1_000_000

	// SatsPerMicro - cross-chain scale factor implied by the two above
	SatsPerMicro = SatsPerBTC / MicroPerToken
)

// BTCString renders the amount as a decimal BTC string with trailing
// zeros trimmed, e.g. Satoshis(50000) -> "0.0005".
func (s Satoshis) BTCString() string {
	return formatFixed(uint64(s), 8)
}

// TokenString renders the amount as a decimal sBTC string.
func (m MicroSBTC) TokenString() string {
	return formatFixed(uint64(m), 6)
}

// Sats converts a wrapped-asset amount to its native-chain equivalent.
func (m MicroSBTC) Sats() Satoshis {
	return Satoshis(uint64(m) * SatsPerMicro)
}

// BTCString renders the native-chain equivalent of the wrapped amount.
func (m MicroSBTC) BTCString() string {
	return m.Sats().BTCString()
}

// ParseTokenString parses a decimal sBTC string back into micro-units.
// It is the exact inverse of TokenString for every non-negative amount.
func ParseTokenString(s string) (MicroSBTC, error) {
	v, err := parseFixed(s, 6)
	return MicroSBTC(v), err
}

// ParseBTCString parses a decimal BTC string into satoshis.
func ParseBTCString(s string) (Satoshis, error) {
	v, err := parseFixed(s, 8)
	return Satoshis(v), err
}

// formatFixed renders v as a decimal with the given scale, trimming
// trailing zeros from the fractional part.
func formatFixed(v uint64, decimals int) string {
	scale := pow10(decimals)
	whole := v / scale
	frac := v % scale

	if frac == 0 {
		return fmt.Sprintf("%d", whole)
	}

	fracStr := fmt.Sprintf("%0*d", decimals, frac)
	fracStr = strings.TrimRight(fracStr, "0")
	return fmt.Sprintf("%d.%s", whole, fracStr)
}

// parseFixed parses a non-negative decimal string with at most the given
// number of fractional digits.
func parseFixed(s string, decimals int) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	wholeStr, fracStr, hasFrac := strings.Cut(s, ".")
	if wholeStr == "" {
		wholeStr = "0"
	}
	if hasFrac && fracStr == "" {
		return 0, fmt.Errorf("malformed amount %q", s)
	}
	if len(fracStr) > decimals {
		return 0, fmt.Errorf("amount %q exceeds %d decimal places", s, decimals)
	}

	var whole uint64
	for _, c := range wholeStr {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("malformed amount %q", s)
		}
		d := uint64(c - '0')
		if whole > (math.MaxUint64-d)/10 {
			return 0, fmt.Errorf("amount %q is too large", s)
		}
		whole = whole*10 + d
	}

	var frac uint64
	for _, c := range fracStr {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("malformed amount %q", s)
		}
		frac = frac*10 + uint64(c-'0')
	}
	// Scale the fractional part up to the full width, e.g. ".5" with
	// 6 decimals is 500000 micro-units.
	frac *= pow10(decimals - len(fracStr))

	scale := pow10(decimals)
	if whole > (math.MaxUint64-frac)/scale {
		return 0, fmt.Errorf("amount %q is too large", s)
	}
	return whole*scale + frac, nil
}

func pow10(n int) uint64 {
	v := uint64(1)
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}
