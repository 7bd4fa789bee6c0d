package bridge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacksbridge/sbtc-bridge-api/types"
)

func TestNotifyDeposit(t *testing.T) {
	env := newTestEnv(t)

	err := env.svc.NotifyDeposit(context.Background(), NotifyRequest{
		Txid:          testTxid,
		DepositScript: "51aa",
		ReclaimScript: "52bb",
		Vout:          1,
	})
	require.NoError(t, err)

	require.Len(t, env.signer.notified, 1)
	notified := env.signer.notified[0]
	assert.Equal(t, testTxid, notified.Txid)
	assert.Equal(t, uint32(1), notified.Vout)
	assert.Equal(t, "51aa", notified.DepositScript)
	assert.Equal(t, "52bb", notified.ReclaimScript)
}

func TestNotifyDepositLinksTxidToRecord(t *testing.T) {
	env := newTestEnv(t)

	deposit, err := env.svc.CreateDepositAddress(context.Background(), DepositRequest{
		RecipientIdentity: testRecipient(t),
		AmountSats:        50_000,
		ReclaimPublicKey:  testReclaimKeyHex(t),
	})
	require.NoError(t, err)
	require.Len(t, env.store.deposits, 1)
	require.Empty(t, env.store.deposits[0].Txid, "no funding transaction known at issue time")

	err = env.svc.NotifyDeposit(context.Background(), NotifyRequest{
		Txid:           testTxid,
		DepositScript:  deposit.DepositScript,
		ReclaimScript:  deposit.ReclaimScript,
		Vout:           0,
		DepositAddress: deposit.Address,
	})
	require.NoError(t, err)

	// The record now carries the funding txid, so the confirmation poller
	// can pick it up.
	assert.Equal(t, testTxid, env.store.deposits[0].Txid)
}

func TestNotifyDepositWithoutAddressSkipsLinking(t *testing.T) {
	env := newTestEnv(t)

	err := env.svc.NotifyDeposit(context.Background(), NotifyRequest{
		Txid:          testTxid,
		DepositScript: "51aa",
		ReclaimScript: "52bb",
	})
	require.NoError(t, err)
	assert.Empty(t, env.store.deposits)
}

func TestNotifyDepositAttachFailureDoesNotFailNotify(t *testing.T) {
	env := newTestEnv(t)
	env.store.attachErr = context.DeadlineExceeded

	deposit, err := env.svc.CreateDepositAddress(context.Background(), DepositRequest{
		RecipientIdentity: testRecipient(t),
		AmountSats:        50_000,
		ReclaimPublicKey:  testReclaimKeyHex(t),
	})
	require.NoError(t, err)

	err = env.svc.NotifyDeposit(context.Background(), NotifyRequest{
		Txid:           testTxid,
		DepositScript:  deposit.DepositScript,
		ReclaimScript:  deposit.ReclaimScript,
		DepositAddress: deposit.Address,
	})

	assert.NoError(t, err, "record-keeping failures must not fail the notify")
	assert.Equal(t, 1, env.signer.notifyCalls)
}

func TestNotifyDepositRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		req  NotifyRequest
	}{
		{"short txid", NotifyRequest{Txid: "abcd", DepositScript: "51aa", ReclaimScript: "52bb"}},
		{"non-hex txid", NotifyRequest{Txid: testTxid[:62] + "zz", DepositScript: "51aa", ReclaimScript: "52bb"}},
		{"empty deposit script", NotifyRequest{Txid: testTxid, ReclaimScript: "52bb"}},
		{"non-hex deposit script", NotifyRequest{Txid: testTxid, DepositScript: "zz", ReclaimScript: "52bb"}},
		{"empty reclaim script", NotifyRequest{Txid: testTxid, DepositScript: "51aa"}},
		{"non-hex reclaim script", NotifyRequest{Txid: testTxid, DepositScript: "51aa", ReclaimScript: "zz"}},
		{"wrong-network address", NotifyRequest{
			Txid:           testTxid,
			DepositScript:  "51aa",
			ReclaimScript:  "52bb",
			DepositAddress: "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.svc.NotifyDeposit(context.Background(), tt.req)
			var valErr *types.ValidationError
			assert.ErrorAs(t, err, &valErr)
		})
	}

	assert.Zero(t, env.signer.notifyCalls, "validation must precede network calls")
}

func TestNotifyDepositFailureSurfaces(t *testing.T) {
	env := newTestEnv(t)
	env.signer.notifyErr = &types.NetworkError{Op: "deposit-notify", Cause: context.DeadlineExceeded}

	err := env.svc.NotifyDeposit(context.Background(), NotifyRequest{
		Txid:          testTxid,
		DepositScript: "51aa",
		ReclaimScript: "52bb",
	})

	assert.Error(t, err, "notify failures must never be swallowed")
	assert.Equal(t, 1, env.signer.notifyCalls, "state-changing call is never retried")
}
