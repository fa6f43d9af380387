// Package metrics exports wallet and payment activity to Prometheus.
package metrics

import (
	"time"

	"arenapay/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// Collector implements the wallet and payment metrics interfaces.
type Collector struct {
	walletOps        *prometheus.CounterVec
	walletOpDuration *prometheus.HistogramVec
	balanceMoved     *prometheus.CounterVec
	limitRejections  *prometheus.CounterVec
	conflicts        *prometheus.CounterVec

	payments      *prometheus.CounterVec
	gatewayCalls  *prometheus.CounterVec
	gatewayTiming *prometheus.HistogramVec
	compensations *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
}

// New registers every metric on reg.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		walletOps: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_operations_total",
				Help: "Wallet store operations by result",
			},
			[]string{"operation", "result"},
		),
		walletOpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wallet_operation_duration_seconds",
				Help:    "Duration of wallet store operations",
				Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1},
			},
			[]string{"operation"},
		),
		balanceMoved: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_balance_moved_total",
				Help: "Absolute amount moved through wallets per transaction type",
			},
			[]string{"type"},
		),
		limitRejections: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_limit_rejections_total",
				Help: "Requests rejected by a wallet limit",
			},
			[]string{"reason"},
		),
		conflicts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_version_conflicts_total",
				Help: "Optimistic concurrency conflicts on wallet updates",
			},
			[]string{"operation"},
		),
		payments: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_total",
				Help: "Payment workflows by transaction type and outcome",
			},
			[]string{"type", "outcome"},
		),
		gatewayCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_calls_total",
				Help: "Payment provider calls",
			},
			[]string{"provider", "operation", "outcome"},
		),
		gatewayTiming: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_call_duration_seconds",
				Help:    "Duration of payment provider calls",
				Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
			},
			[]string{"provider", "operation"},
		),
		compensations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_compensations_total",
				Help: "Refunds issued for failed attempts",
			},
			[]string{"type"},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "read_cache_lookups_total",
				Help: "Read cache lookups by entity and result",
			},
			[]string{"entity", "result"},
		),
	}
}

func (c *Collector) RecordOperationDuration(operation string, duration time.Duration) {
	c.walletOpDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (c *Collector) RecordOperationResult(operation, result string) {
	c.walletOps.WithLabelValues(operation, result).Inc()
}

func (c *Collector) RecordBalanceChange(usage models.TransactionType, amount decimal.Decimal) {
	c.balanceMoved.WithLabelValues(string(usage)).Add(amount.Abs().InexactFloat64())
}

func (c *Collector) RecordLimitRejection(reason string) {
	c.limitRejections.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordConflict(operation string) {
	c.conflicts.WithLabelValues(operation).Inc()
}

func (c *Collector) RecordPayment(txType models.TransactionType, outcome string) {
	c.payments.WithLabelValues(string(txType), outcome).Inc()
}

func (c *Collector) RecordGatewayCall(provider, operation, outcome string, duration time.Duration) {
	c.gatewayCalls.WithLabelValues(provider, operation, outcome).Inc()
	c.gatewayTiming.WithLabelValues(provider, operation).Observe(duration.Seconds())
}

func (c *Collector) RecordCompensation(txType models.TransactionType) {
	c.compensations.WithLabelValues(string(txType)).Inc()
}

func (c *Collector) RecordCacheHit(kind string) {
	c.cacheLookups.WithLabelValues(kind, "hit").Inc()
}

func (c *Collector) RecordCacheMiss(kind string) {
	c.cacheLookups.WithLabelValues(kind, "miss").Inc()
}
