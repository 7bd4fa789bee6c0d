package bridge

import (
	"context"
	"sync"
)

const (
	statusOnline  = "online"
	statusOffline = "offline"
)

// Health aggregates liveness of the signer API and the fee/bridge API into
// one verdict.
type Health struct {
	IsHealthy    bool     `json:"is_healthy"`
	SignerStatus string   `json:"signer_status"`
	APIStatus    string   `json:"api_status"`
	Errors       []string `json:"errors,omitempty"`
}

// HealthCheck runs the signer-key fetch and a fee-rate fetch concurrently.
// Each failure is recorded locally without aborting the other check;
// healthy means both reported online.
func (s *Service) HealthCheck(ctx context.Context) Health {
	var (
		wg        sync.WaitGroup
		signerErr error
		feeErr    error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, signerErr = s.signer.SignerPublicKey(ctx)
	}()
	go func() {
		defer wg.Done()
		_, feeErr = s.signer.FeeRate(ctx, string(TierMedium))
	}()
	wg.Wait()

	health := Health{
		IsHealthy:    signerErr == nil && feeErr == nil,
		SignerStatus: statusOnline,
		APIStatus:    statusOnline,
	}
	if signerErr != nil {
		health.SignerStatus = statusOffline
		health.Errors = append(health.Errors, signerErr.Error())
	}
	if feeErr != nil {
		health.APIStatus = statusOffline
		health.Errors = append(health.Errors, feeErr.Error())
	}

	if !health.IsHealthy {
		s.logger.Warn("bridge health degraded",
			"signer_status", health.SignerStatus,
			"api_status", health.APIStatus)
	}

	return health
}
