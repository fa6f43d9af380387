package payment

import (
	"time"

	"arenapay/internal/models"
)

// Outcomes recorded for payments and gateway calls.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeRejected  = "rejected"
	OutcomeError     = "error"
)

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordPayment(models.TransactionType, string)            {}
func (n *NoopMetricsCollector) RecordGatewayCall(string, string, string, time.Duration) {}
func (n *NoopMetricsCollector) RecordCompensation(models.TransactionType)               {}
func (n *NoopMetricsCollector) RecordCacheHit(string)                                   {}
func (n *NoopMetricsCollector) RecordCacheMiss(string)                                  {}
