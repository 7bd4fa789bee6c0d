package models

import (
	"time"

	"github.com/stacksbridge/sbtc-bridge-api/types"
)

// WithdrawalRecord is a dashboard row for a submitted withdrawal.
type WithdrawalRecord struct {
	Txid        string         `json:"txid" bson:"txid"`
	AmountMicro uint64         `json:"amount_micro" bson:"amount_micro"`
	AmountSBTC  string         `json:"amount_sbtc" bson:"amount_sbtc"`
	Destination string         `json:"destination" bson:"destination"`
	Status      types.TxStatus `json:"status" bson:"status"`
	Network     string         `json:"network" bson:"network"`
	CreatedAt   time.Time      `json:"created_at" bson:"created_at"`
}
