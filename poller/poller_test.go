package poller

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacksbridge/sbtc-bridge-api/bridge"
	"github.com/stacksbridge/sbtc-bridge-api/database"
)

func TestNewPollerRequiresDependencies(t *testing.T) {
	_, err := NewPoller(PollerOpts{})
	assert.Error(t, err)

	_, err = NewPoller(PollerOpts{Service: &bridge.Service{}})
	assert.Error(t, err)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	p, err := NewPoller(PollerOpts{
		Service:  &bridge.Service{},
		Database: &database.Database{},
		Interval: time.Hour, // never ticks during the test
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}
