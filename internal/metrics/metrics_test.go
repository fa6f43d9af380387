package metrics

import (
	"testing"
	"time"

	"arenapay/internal/models"
	"arenapay/internal/services/payment"
	"arenapay/internal/services/wallet"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var (
	_ wallet.MetricsCollector  = (*Collector)(nil)
	_ payment.MetricsCollector = (*Collector)(nil)
)

func TestCollectorCounts(t *testing.T) {
	c := New(prometheus.NewRegistry())

	c.RecordPayment(models.TransactionTypeDeposit, payment.OutcomeCompleted)
	c.RecordPayment(models.TransactionTypeDeposit, payment.OutcomeCompleted)
	c.RecordPayment(models.TransactionTypeWithdrawal, payment.OutcomeFailed)
	c.RecordCompensation(models.TransactionTypeWithdrawal)
	c.RecordLimitRejection("DAILY_LIMIT_EXCEEDED")
	c.RecordBalanceChange(models.TransactionTypeWithdrawal, decimal.NewFromInt(-250))
	c.RecordGatewayCall("bkash", "charge", payment.OutcomeCompleted, 120*time.Millisecond)
	c.RecordCacheHit("wallet")
	c.RecordCacheMiss("wallet")
	c.RecordCacheMiss("wallet")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.payments.WithLabelValues("DEPOSIT", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.payments.WithLabelValues("WITHDRAWAL", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.compensations.WithLabelValues("WITHDRAWAL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.limitRejections.WithLabelValues("DAILY_LIMIT_EXCEEDED")))
	assert.Equal(t, 250.0, testutil.ToFloat64(c.balanceMoved.WithLabelValues("WITHDRAWAL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.gatewayCalls.WithLabelValues("bkash", "charge", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.cacheLookups.WithLabelValues("wallet", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.cacheLookups.WithLabelValues("wallet", "miss")))
}

func TestSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
