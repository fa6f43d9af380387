package gateway

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// SimulatedConfig tunes the simulated provider.
type SimulatedConfig struct {
	Name        string
	Latency     time.Duration
	FailureRate float64
	// Rand returns a number in [0, 1). Defaults to math/rand.
	Rand func() float64
}

// Simulated is the reference provider. It waits Latency and then fails
// with probability FailureRate.
type Simulated struct {
	config SimulatedConfig
}

func NewSimulated(config SimulatedConfig) *Simulated {
	if config.Name == "" {
		config.Name = "simulated"
	}
	if config.Rand == nil {
		config.Rand = rand.Float64
	}
	return &Simulated{config: config}
}

func (s *Simulated) Name() string { return s.config.Name }

func (s *Simulated) Charge(ctx context.Context, req Request) (*Result, error) {
	return s.call(ctx, "charge", req)
}

func (s *Simulated) Payout(ctx context.Context, req Request) (*Result, error) {
	return s.call(ctx, "payout", req)
}

func (s *Simulated) call(ctx context.Context, op string, req Request) (*Result, error) {
	if s.config.Latency > 0 {
		timer := time.NewTimer(s.config.Latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, transportError(s.config.Name, ctx.Err())
		}
	}

	raw := map[string]interface{}{
		"operation": op,
		"method":    req.Method,
		"reference": req.Reference,
		"amount":    req.Amount.String(),
	}
	if s.config.Rand() < s.config.FailureRate {
		return &Result{
			Success:  false,
			Error:    "provider declined the " + op,
			Provider: s.config.Name,
			Raw:      raw,
		}, nil
	}
	return &Result{
		Success:       true,
		TransactionID: "SIM-" + uuid.NewString(),
		Provider:      s.config.Name,
		Raw:           raw,
	}, nil
}
