// Package poller keeps stored deposit records in sync with the chain by
// periodically re-checking the confirmation state of pending funding
// transactions.
package poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stacksbridge/sbtc-bridge-api/bridge"
	"github.com/stacksbridge/sbtc-bridge-api/database"
	"github.com/stacksbridge/sbtc-bridge-api/types"
)

type Poller struct {
	svc      *bridge.Service
	database *database.Database
	interval time.Duration
	logger   *slog.Logger
}

type PollerOpts struct {
	Service  *bridge.Service
	Database *database.Database
	Interval time.Duration
	Logger   *slog.Logger
}

func NewPoller(opts PollerOpts) (*Poller, error) {
	if opts.Service == nil || opts.Database == nil {
		return nil, fmt.Errorf("service and database are required")
	}
	if opts.Interval == 0 {
		opts.Interval = time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Poller{
		svc:      opts.Service,
		database: opts.Database,
		interval: opts.Interval,
		logger:   opts.Logger,
	}, nil
}

// Run polls until the context is canceled.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("starting deposit confirmation poller", "interval", p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("shutting down deposit confirmation poller")
			return nil
		case <-ticker.C:
			if err := p.checkPendingDeposits(ctx); err != nil {
				// Read-path failures are transient; keep polling.
				p.logger.Error("deposit poll failed", "error", err)
			}
		}
	}
}

func (p *Poller) checkPendingDeposits(ctx context.Context) error {
	records, err := p.database.GetDepositsByStatus(ctx, types.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to load pending deposits: %w", err)
	}

	for _, record := range records {
		if record.Txid == "" {
			// Address issued but no funding transaction reported yet.
			continue
		}

		status, err := p.svc.GetStatus(ctx, record.Txid)
		if err != nil {
			p.logger.Warn("failed to check deposit status",
				"txid", record.Txid,
				"error", err)
			continue
		}

		if status.Status != record.Status {
			if err := p.database.UpdateDepositStatus(ctx, record.Txid, status.Status); err != nil {
				p.logger.Error("failed to update deposit status",
					"txid", record.Txid,
					"error", err)
				continue
			}
			p.logger.Info("deposit status updated",
				"txid", record.Txid,
				"status", status.Status,
				"confirmations", status.Confirmations)
		}
	}

	return nil
}
