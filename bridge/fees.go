package bridge

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stacksbridge/sbtc-bridge-api/types"
	"github.com/stacksbridge/sbtc-bridge-api/utils"
)

// FeeTier selects one of the three recommended fee levels.
type FeeTier string

const (
	TierLow    FeeTier = "low"
	TierMedium FeeTier = "medium"
	TierHigh   FeeTier = "high"
)

// FeeRates holds all three tiers in sats/vB.
type FeeRates struct {
	Low    uint64 `json:"low"`
	Medium uint64 `json:"medium"`
	High   uint64 `json:"high"`
}

// Static fallbacks used when any live query fails. The mainnet spread is
// wider because mainnet fee markets actually move.
var (
	fallbackFeesMainnet = FeeRates{Low: 5, Medium: 30, High: 90}
	fallbackFeesTestnet = FeeRates{Low: 1, Medium: 2, High: 4}
)

const (
	feeReadAttempts  = 3
	feeReadBaseDelay = 250 * time.Millisecond
)

// FeeRates fetches all three fee tiers concurrently. If any tier query
// fails the whole result comes from the static fallback table; returning a
// mix of live and static numbers would present an internally inconsistent
// fee table.
func (s *Service) FeeRates(ctx context.Context) FeeRates {
	var rates [3]uint64
	tiers := []FeeTier{TierLow, TierMedium, TierHigh}

	g, gctx := errgroup.WithContext(ctx)
	for i, tier := range tiers {
		i, tier := i, tier
		g.Go(func() error {
			rate, err := utils.Retry(gctx, feeReadAttempts, feeReadBaseDelay, func(ctx context.Context) (uint64, error) {
				return s.signer.FeeRate(ctx, string(tier))
			})
			if err != nil {
				return err
			}
			rates[i] = rate
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		fallback := s.fallbackFees()
		s.logger.Warn("fee rate lookup failed, using static fallback",
			"error", err,
			"network", s.network)
		return fallback
	}

	return FeeRates{Low: rates[0], Medium: rates[1], High: rates[2]}
}

// Rate picks one tier out of a FeeRates table. Unknown tiers resolve to
// medium.
func (r FeeRates) Rate(tier FeeTier) uint64 {
	switch tier {
	case TierLow:
		return r.Low
	case TierHigh:
		return r.High
	default:
		return r.Medium
	}
}

func (s *Service) fallbackFees() FeeRates {
	if s.network == types.NetworkMainnet {
		return fallbackFeesMainnet
	}
	return fallbackFeesTestnet
}
