package wallet

import (
	"time"

	"arenapay/internal/models"

	"github.com/shopspring/decimal"
)

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordOperationDuration(string, time.Duration)               {}
func (n *NoopMetricsCollector) RecordOperationResult(string, string)                        {}
func (n *NoopMetricsCollector) RecordBalanceChange(models.TransactionType, decimal.Decimal) {}
func (n *NoopMetricsCollector) RecordLimitRejection(string)                                 {}
func (n *NoopMetricsCollector) RecordConflict(string)                                       {}
