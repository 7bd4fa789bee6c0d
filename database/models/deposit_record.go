package models

import (
	"time"

	"github.com/stacksbridge/sbtc-bridge-api/types"
)

// DepositRecord is a dashboard row for an issued deposit address. Txid is
// filled in once the funding transaction is known.
type DepositRecord struct {
	Address    string         `json:"address" bson:"address"`
	Recipient  string         `json:"recipient" bson:"recipient"`
	AmountSats uint64         `json:"amount_sats" bson:"amount_sats"`
	AmountBTC  string         `json:"amount_btc" bson:"amount_btc"`
	Txid       string         `json:"txid,omitempty" bson:"txid,omitempty"`
	Status     types.TxStatus `json:"status" bson:"status"`
	Network    string         `json:"network" bson:"network"`
	CreatedAt  time.Time      `json:"created_at" bson:"created_at"`
	ExpiresAt  time.Time      `json:"expires_at" bson:"expires_at"`
}
