package units

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBTCString(t *testing.T) {
	tests := []struct {
		sats Satoshis
		want string
	}{
		{0, "0"},
		{1, "0.00000001"},
		{50_000, "0.0005"},
		{100_000_000, "1"},
		{150_000_000, "1.5"},
		{2_100_000_000_000_000, "21000000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.sats.BTCString(), "sats=%d", tt.sats)
	}
}

func TestTokenString(t *testing.T) {
	tests := []struct {
		micro MicroSBTC
		want  string
	}{
		{0, "0"},
		{1, "0.000001"},
		{500, "0.0005"},
		{1_000_000, "1"},
		{1_234_567, "1.234567"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.micro.TokenString(), "micro=%d", tt.micro)
	}
}

func TestTokenStringRoundTrip(t *testing.T) {
	// The decimal rendering must reproduce the micro-unit amount exactly,
	// up past the asset's practical supply ceiling.
	values := []uint64{0, 1, 99, 100, 999_999, 1_000_000, 1_000_001,
		123_456_789, 21_000_000_000_000}

	for _, v := range values {
		t.Run(fmt.Sprintf("%d", v), func(t *testing.T) {
			s := MicroSBTC(v).TokenString()
			back, err := ParseTokenString(s)
			require.NoError(t, err)
			assert.Equal(t, MicroSBTC(v), back)
		})
	}
}

func TestParseTokenStringRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", ".", "1.", "1.2.3", "abc", "1.1234567", "1,5"} {
		_, err := ParseTokenString(s)
		assert.Error(t, err, "input %q", s)
	}
}

func TestParseTokenStringRejectsOverflow(t *testing.T) {
	// Largest representable amount parses exactly...
	v, err := ParseTokenString("18446744073709.551615")
	require.NoError(t, err)
	assert.Equal(t, MicroSBTC(math.MaxUint64), v)

	// ...and anything past it errors instead of silently wrapping.
	for _, s := range []string{
		"18446744073709.551616",
		"18446744073710",
		"99999999999999999999",
		"184467440737095516150",
	} {
		_, err := ParseTokenString(s)
		assert.Error(t, err, "input %q", s)
	}
}

func TestParseTokenStringScalesShortFractions(t *testing.T) {
	v, err := ParseTokenString("0.5")
	require.NoError(t, err)
	assert.Equal(t, MicroSBTC(500_000), v)
}

func TestCrossChainScale(t *testing.T) {
	// 6 wrapped decimals vs 8 native decimals: one micro-unit is 100 sats,
	// so the decimal views of a pegged amount agree.
	assert.Equal(t, Satoshis(100), MicroSBTC(1).Sats())
	assert.Equal(t, Satoshis(50_000), MicroSBTC(500).Sats())
	assert.Equal(t, MicroSBTC(500).TokenString(), MicroSBTC(500).BTCString())
}

func TestParseBTCString(t *testing.T) {
	v, err := ParseBTCString("0.0005")
	require.NoError(t, err)
	assert.Equal(t, Satoshis(50_000), v)
}
