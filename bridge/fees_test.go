package bridge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stacksbridge/sbtc-bridge-api/types"
)

func TestFeeRatesLive(t *testing.T) {
	env := newTestEnv(t)
	env.signer.feeRates = map[string]uint64{"low": 3, "medium": 17, "high": 42}

	rates := env.svc.FeeRates(context.Background())

	assert.Equal(t, FeeRates{Low: 3, Medium: 17, High: 42}, rates)
	assert.Equal(t, 3, env.signer.feeRateCalls)
}

func TestFeeRatesFallbackOnAnyFailure(t *testing.T) {
	env := newTestEnv(t)
	env.signer.feeErr = &types.ProtocolError{Op: "fee-estimate", StatusCode: 500, Message: "estimator down"}

	rates := env.svc.FeeRates(context.Background())

	// One bad tier poisons the whole table; a mixed live/static result
	// would be internally inconsistent.
	assert.Equal(t, fallbackFeesTestnet, rates)
}

func TestFeeRatesFallbackWhenOneTierFails(t *testing.T) {
	env := newTestEnv(t)
	env.signer.feeRates = map[string]uint64{"low": 3, "medium": 17, "high": 42}
	env.signer.feeErrs = map[string]error{
		"medium": &types.ProtocolError{Op: "fee-estimate", StatusCode: 500, Message: "estimator down"},
	}

	rates := env.svc.FeeRates(context.Background())

	// Low and high answered with live values, but the result must be the
	// whole static table, never two live numbers next to one fallback.
	assert.Equal(t, fallbackFeesTestnet, rates)
}

func TestFeeRatesMainnetFallback(t *testing.T) {
	env := newTestEnv(t)
	env.signer.feeErr = &types.ProtocolError{Op: "fee-estimate", StatusCode: 500, Message: "estimator down"}
	env.svc.network = types.NetworkMainnet

	rates := env.svc.FeeRates(context.Background())

	assert.Equal(t, fallbackFeesMainnet, rates)
}

func TestRateSelection(t *testing.T) {
	rates := FeeRates{Low: 1, Medium: 2, High: 4}

	assert.Equal(t, uint64(1), rates.Rate(TierLow))
	assert.Equal(t, uint64(2), rates.Rate(TierMedium))
	assert.Equal(t, uint64(4), rates.Rate(TierHigh))
	assert.Equal(t, uint64(2), rates.Rate(FeeTier("turbo")), "unknown tiers resolve to medium")
	assert.Equal(t, uint64(2), rates.Rate(""), "empty tier resolves to medium")
}
