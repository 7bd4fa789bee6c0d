package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/stacksbridge/sbtc-bridge-api/address"
	"github.com/stacksbridge/sbtc-bridge-api/types"
	"github.com/stacksbridge/sbtc-bridge-api/units"
	"github.com/stacksbridge/sbtc-bridge-api/utils"
)

// BalanceSnapshot presents one micro-unit balance in every unit the
// dashboard renders. All views are derived from the single MicroUnit
// figure; nothing is fetched per unit.
type BalanceSnapshot struct {
	Address     string    `json:"address"`
	MicroUnit   uint64    `json:"micro_unit"`
	SBTCBalance string    `json:"sbtc_balance"`
	BTCBalance  string    `json:"btc_balance"`
	AsOf        time.Time `json:"as_of"`
}

// Balance reads the wrapped-asset balance of a Stacks principal.
func (s *Service) Balance(ctx context.Context, principal string) (*BalanceSnapshot, error) {
	if !address.IsValidStacksAddress(principal, s.network) {
		return nil, &types.ValidationError{
			Field:  "address",
			Reason: fmt.Sprintf("not a valid %s stacks address", s.network),
		}
	}

	micro, err := utils.Retry(ctx, statusReadAttempts, statusReadBaseDelay, func(ctx context.Context) (units.MicroSBTC, error) {
		return s.ledger.TokenBalance(ctx, principal)
	})
	if err != nil {
		return nil, err
	}

	return &BalanceSnapshot{
		Address:     principal,
		MicroUnit:   uint64(micro),
		SBTCBalance: micro.TokenString(),
		BTCBalance:  micro.BTCString(),
		AsOf:        s.now(),
	}, nil
}
