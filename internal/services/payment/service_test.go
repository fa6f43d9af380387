package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"arenapay/internal/config"
	apperrors "arenapay/internal/errors"
	"arenapay/internal/models"
	"arenapay/internal/repositories"
	"arenapay/internal/repositories/cache"
	"arenapay/internal/services/events"
	"arenapay/internal/services/gateway"
	"arenapay/internal/services/transaction"
	"arenapay/internal/services/wallet"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway answers with respond, or succeeds when respond is nil.
type fakeGateway struct {
	mu      sync.Mutex
	name    string
	respond func(ctx context.Context, op string, req gateway.Request) (*gateway.Result, error)
	calls   []string
}

func (g *fakeGateway) Name() string { return g.name }

func (g *fakeGateway) Charge(ctx context.Context, req gateway.Request) (*gateway.Result, error) {
	return g.call(ctx, "charge", req)
}

func (g *fakeGateway) Payout(ctx context.Context, req gateway.Request) (*gateway.Result, error) {
	return g.call(ctx, "payout", req)
}

func (g *fakeGateway) call(ctx context.Context, op string, req gateway.Request) (*gateway.Result, error) {
	g.mu.Lock()
	g.calls = append(g.calls, op)
	respond := g.respond
	g.mu.Unlock()

	if respond != nil {
		return respond(ctx, op, req)
	}
	return &gateway.Result{Success: true, TransactionID: "GW-" + req.Reference, Provider: g.name}, nil
}

func (g *fakeGateway) setRespond(fn func(ctx context.Context, op string, req gateway.Request) (*gateway.Result, error)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.respond = fn
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func declined(_ context.Context, _ string, _ gateway.Request) (*gateway.Result, error) {
	return &gateway.Result{Success: false, Error: "insufficient funds at provider", Provider: "bkash"}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingMetrics struct {
	NoopMetricsCollector
	mu       sync.Mutex
	payments map[string]int
	hits     map[string]int
	misses   map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		payments: make(map[string]int),
		hits:     make(map[string]int),
		misses:   make(map[string]int),
	}
}

func (m *recordingMetrics) RecordPayment(txType models.TransactionType, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[string(txType)+"/"+outcome]++
}

func (m *recordingMetrics) RecordCacheHit(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits[kind]++
}

func (m *recordingMetrics) RecordCacheMiss(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.misses[kind]++
}

type harness struct {
	svc          Service
	queries      *Queries
	reconciler   *Reconciler
	ledger       transaction.Ledger
	wallets      wallet.Store
	transactions repositories.TransactionRepository
	gw           *fakeGateway
	events       *recordingPublisher
	metrics      *recordingMetrics
	redis        *miniredis.Miniredis
}

type harnessOptions struct {
	maxRetries     int
	gatewayTimeout time.Duration
	// wrapStore and wrapLedger decorate what the payment service sees.
	wrapStore  func(wallet.Store) wallet.Store
	wrapLedger func(transaction.Ledger) transaction.Ledger
}

func newHarness(t *testing.T, opts harnessOptions) *harness {
	t.Helper()

	db, err := repositories.OpenDB(config.DatabaseConfig{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))
	t.Cleanup(func() { _ = repositories.Close(db) })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	readCache := cache.NewCacheService(client, time.Minute, nil)
	t.Cleanup(func() { _ = readCache.Close() })

	walletRepo := repositories.NewWalletRepository(db)
	txRepo := repositories.NewTransactionRepository(db)

	h := &harness{
		transactions: txRepo,
		gw:           &fakeGateway{name: "bkash"},
		events:       &recordingPublisher{},
		metrics:      newRecordingMetrics(),
		redis:        mr,
	}
	h.wallets = wallet.NewStore(walletRepo, wallet.Config{}, nil, nil)
	h.ledger = transaction.NewLedger(txRepo, transaction.Config{MaxRetries: opts.maxRetries}, nil)

	router := gateway.NewRouter().
		Register(gateway.MethodBkash, h.gw).
		Register(gateway.MethodInternal, gateway.NewSimulated(gateway.SimulatedConfig{Name: gateway.MethodInternal}))

	var (
		store  = h.wallets
		ledger = h.ledger
	)
	if opts.wrapStore != nil {
		store = opts.wrapStore(store)
	}
	if opts.wrapLedger != nil {
		ledger = opts.wrapLedger(ledger)
	}
	h.svc = NewService(store, ledger, repositories.NewTransactor(db), router, readCache, h.events,
		Config{GatewayTimeout: opts.gatewayTimeout}, h.metrics, nil)
	h.queries = NewQueries(h.wallets, h.ledger, readCache, time.Minute, h.metrics)
	h.reconciler = NewReconciler(walletRepo, txRepo)
	return h
}

func (h *harness) deposit(t *testing.T, userID string, amount int64) *PaymentResult {
	t.Helper()
	res, err := h.svc.Deposit(context.Background(), PaymentRequest{
		UserID:        userID,
		Amount:        decimal.NewFromInt(amount),
		PaymentMethod: gateway.MethodBkash,
		Account:       "01700000000",
	})
	require.NoError(t, err)
	return res
}

func (h *harness) balance(t *testing.T, userID string) decimal.Decimal {
	t.Helper()
	w, err := h.wallets.GetOrCreate(context.Background(), userID)
	require.NoError(t, err)
	return w.Balance
}

func (h *harness) openCount(t *testing.T) int64 {
	t.Helper()
	n, err := h.transactions.CountByStatus(context.Background(),
		models.TransactionStatusPending, models.TransactionStatusProcessing)
	require.NoError(t, err)
	return n
}

func withdrawal(userID string, amount int64) PaymentRequest {
	return PaymentRequest{
		UserID:        userID,
		Amount:        decimal.NewFromInt(amount),
		PaymentMethod: gateway.MethodBkash,
		Account:       "01800000000",
	}
}

func TestDeposit_Success(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	ctx := context.Background()

	res := h.deposit(t, "player-1", 500)
	assert.Equal(t, models.TransactionStatusCompleted, res.Status)
	assert.True(t, res.Balance.Equal(decimal.NewFromInt(500)))

	tx, err := h.ledger.Get(ctx, res.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, "GW-"+res.TransactionID, tx.GatewayTransactionID)
	assert.True(t, tx.BalanceBefore.IsZero())
	assert.True(t, tx.BalanceAfter.Equal(decimal.NewFromInt(500)))
	require.NotNil(t, tx.GatewayResponse)
	assert.True(t, tx.GatewayResponse.Success)

	w, err := h.wallets.GetOrCreate(ctx, "player-1")
	require.NoError(t, err)
	assert.True(t, w.TotalDeposited.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, []string{events.TypeTransactionCompleted}, h.events.types())
	assert.Equal(t, 1, h.metrics.payments["DEPOSIT/completed"])
}

func TestDeposit_Declined(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	h.gw.setRespond(declined)

	_, err := h.svc.Deposit(context.Background(), PaymentRequest{
		UserID:        "player-1",
		Amount:        decimal.NewFromInt(500),
		PaymentMethod: gateway.MethodBkash,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrGatewayDeclined)

	var failed *FailedError
	require.True(t, errors.As(err, &failed))
	assert.True(t, failed.Retryable)
	assert.True(t, failed.Balance.IsZero())

	tx, err := h.ledger.Get(context.Background(), failed.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusFailed, tx.Status)
	assert.Equal(t, "insufficient funds at provider", tx.FailureReason)
	require.NotNil(t, tx.GatewayResponse)
	assert.False(t, tx.GatewayResponse.Success)

	assert.True(t, h.balance(t, "player-1").IsZero())
	assert.Equal(t, []string{events.TypeTransactionFailed}, h.events.types())
	assert.Zero(t, h.openCount(t))
}

func TestDeposit_GatewayTimeout(t *testing.T) {
	h := newHarness(t, harnessOptions{gatewayTimeout: 20 * time.Millisecond})
	h.gw.setRespond(func(ctx context.Context, _ string, _ gateway.Request) (*gateway.Result, error) {
		<-ctx.Done()
		return nil, fmt.Errorf("bkash: %w: %v", apperrors.ErrGatewayTimeout, ctx.Err())
	})

	_, err := h.svc.Deposit(context.Background(), PaymentRequest{
		UserID:        "player-1",
		Amount:        decimal.NewFromInt(50),
		PaymentMethod: gateway.MethodBkash,
	})
	assert.ErrorIs(t, err, apperrors.ErrGatewayTimeout)
	assert.Equal(t, http.StatusGatewayTimeout, apperrors.StatusOf(err))
	assert.Zero(t, h.openCount(t))
}

func TestDeposit_CallerCancellationDoesNotStrandTransaction(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	h.gw.setRespond(func(callCtx context.Context, _ string, req gateway.Request) (*gateway.Result, error) {
		cancel()
		if err := callCtx.Err(); err != nil {
			return nil, err
		}
		return &gateway.Result{Success: true, TransactionID: "GW-1", Provider: "bkash"}, nil
	})

	res, err := h.svc.Deposit(ctx, PaymentRequest{
		UserID:        "player-1",
		Amount:        decimal.NewFromInt(75),
		PaymentMethod: gateway.MethodBkash,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, res.Status)
	assert.True(t, h.balance(t, "player-1").Equal(decimal.NewFromInt(75)))
	assert.Zero(t, h.openCount(t))
}

func TestDeposit_RejectedBeforeOpening(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	ctx := context.Background()

	tests := []struct {
		name    string
		req     PaymentRequest
		wantErr error
	}{
		{
			name:    "zero amount",
			req:     PaymentRequest{UserID: "player-1", Amount: decimal.Zero, PaymentMethod: gateway.MethodBkash},
			wantErr: apperrors.ErrInvalidAmount,
		},
		{
			name:    "unknown method",
			req:     PaymentRequest{UserID: "player-1", Amount: decimal.NewFromInt(10), PaymentMethod: "paypal"},
			wantErr: apperrors.ErrUnsupportedPaymentMethod,
		},
		{
			name:    "over transaction maximum",
			req:     PaymentRequest{UserID: "player-1", Amount: decimal.NewFromInt(wallet.DefaultMaxTransactionAmount + 1), PaymentMethod: gateway.MethodBkash},
			wantErr: apperrors.ErrTransactionTooLarge,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.Deposit(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, total, err := h.ledger.List(ctx, repositories.TransactionFilter{UserID: "player-1"})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, h.gw.callCount())
}

func TestDeposit_SuspendedWallet(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	ctx := context.Background()

	_, err := h.svc.SetSuspension(ctx, "player-1", wallet.Suspension{Suspended: true, Reason: "fraud review"})
	require.NoError(t, err)

	_, err = h.svc.Deposit(ctx, PaymentRequest{UserID: "player-1", Amount: decimal.NewFromInt(10), PaymentMethod: gateway.MethodBkash})
	assert.ErrorIs(t, err, apperrors.ErrWalletSuspended)

	_, err = h.svc.SetSuspension(ctx, "player-1", wallet.Suspension{Suspended: false})
	require.NoError(t, err)
	h.deposit(t, "player-1", 10)
}

func TestWithdraw_Success(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	h.deposit(t, "player-1", 300)

	res, err := h.svc.Withdraw(context.Background(), withdrawal("player-1", 120))
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, res.Status)
	assert.True(t, res.Balance.Equal(decimal.NewFromInt(180)))
	assert.True(t, h.balance(t, "player-1").Equal(decimal.NewFromInt(180)))

	comps, err := h.ledger.Compensations(context.Background(), res.TransactionID)
	require.NoError(t, err)
	assert.Empty(t, comps)
}

func TestWithdraw_FailureRefundsOnce(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	h.deposit(t, "player-1", 300)
	h.gw.setRespond(declined)

	_, err := h.svc.Withdraw(context.Background(), withdrawal("player-1", 120))
	var failed *FailedError
	require.True(t, errors.As(err, &failed))
	assert.True(t, failed.Balance.Equal(decimal.NewFromInt(300)))

	assert.True(t, h.balance(t, "player-1").Equal(decimal.NewFromInt(300)))

	comps, err := h.ledger.Compensations(context.Background(), failed.TransactionID)
	require.NoError(t, err)
	require.Len(t, comps, 1)
	assert.Equal(t, 0, comps[0].Attempt)
	assert.True(t, comps[0].Amount.Equal(decimal.NewFromInt(120)))

	assert.Equal(t, []string{
		events.TypeTransactionCompleted,
		events.TypeWalletCompensated,
		events.TypeTransactionFailed,
	}, h.events.types())
	assert.Zero(t, h.openCount(t))
}

func TestWithdraw_RejectedBeforeOpening(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	ctx := context.Background()
	h.deposit(t, "player-1", 100)

	_, err := h.svc.Withdraw(ctx, withdrawal("player-1", 150))
	assert.ErrorIs(t, err, apperrors.ErrInsufficientBalance)

	_, err = h.svc.Withdraw(ctx, withdrawal("player-1", -1))
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)

	_, total, err := h.ledger.List(ctx, repositories.TransactionFilter{UserID: "player-1", Type: models.TransactionTypeWithdrawal})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.True(t, h.balance(t, "player-1").Equal(decimal.NewFromInt(100)))
}

// credit seeds a balance without touching usage counters.
func (h *harness) credit(t *testing.T, userID string, amount int64) {
	t.Helper()
	_, err := h.svc.AdminAdjust(context.Background(), AdjustmentRequest{
		UserID:    userID,
		AdminID:   "admin-1",
		Amount:    decimal.NewFromInt(amount),
		Direction: models.AdjustmentCredit,
		Reason:    "test seed",
	})
	require.NoError(t, err)
}

func TestWithdraw_UpdatesUsage(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	ctx := context.Background()
	h.credit(t, "player-1", 1000)

	res, err := h.svc.Withdraw(ctx, withdrawal("player-1", 500))
	require.NoError(t, err)
	assert.True(t, res.Balance.Equal(decimal.NewFromInt(500)))

	w, err := h.wallets.GetOrCreate(ctx, "player-1")
	require.NoError(t, err)
	assert.True(t, w.DailyUsage.Amount.Equal(decimal.NewFromInt(500)))
	assert.True(t, w.TotalWithdrawn.Equal(decimal.NewFromInt(500)))

	_, total, err := h.ledger.List(ctx, repositories.TransactionFilter{
		UserID: "player-1",
		Type:   models.TransactionTypeWithdrawal,
		Status: models.TransactionStatusCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestWithdraw_DailyLimit(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	ctx := context.Background()
	h.credit(t, "player-1", 15000)

	_, err := h.svc.Withdraw(ctx, withdrawal("player-1", 6000))
	require.NoError(t, err)

	_, err = h.svc.Withdraw(ctx, withdrawal("player-1", 5000))
	assert.ErrorIs(t, err, apperrors.ErrDailyLimitExceeded)

	_, total, err := h.ledger.List(ctx, repositories.TransactionFilter{UserID: "player-1", Type: models.TransactionTypeWithdrawal})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.True(t, h.balance(t, "player-1").Equal(decimal.NewFromInt(9000)))
}

func TestWithdraw_ConcurrentNeverOverdraws(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	h.deposit(t, "player-1", 100)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.svc.Withdraw(context.Background(), withdrawal("player-1", 20))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, apperrors.ErrInsufficientBalance):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 5, rejected)
	assert.True(t, h.balance(t, "player-1").IsZero())
	assert.Zero(t, h.openCount(t))
}

func TestBalanceConservation(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	ctx := context.Background()

	h.deposit(t, "player-1", 1000)
	_, err := h.svc.Withdraw(ctx, withdrawal("player-1", 200))
	require.NoError(t, err)

	h.gw.setRespond(declined)
	_, err = h.svc.Withdraw(ctx, withdrawal("player-1", 300))
	require.Error(t, err)
	_, err = h.svc.Deposit(ctx, PaymentRequest{UserID: "player-1", Amount: decimal.NewFromInt(50), PaymentMethod: gateway.MethodBkash})
	require.Error(t, err)
	h.gw.setRespond(nil)

	_, err = h.svc.AwardPrize(ctx, PrizeRequest{UserID: "player-1", Amount: decimal.NewFromInt(400), TournamentID: "t-1"})
	require.NoError(t, err)
	_, err = h.svc.ChargeTournamentFee(ctx, FeeRequest{UserID: "player-1", Amount: decimal.NewFromInt(100), TournamentID: "t-2"})
	require.NoError(t, err)

	// Completed credits minus completed debits.
	rows, err := h.ledger.Summarize(ctx, "player-1", nil, nil)
	require.NoError(t, err)
	net := decimal.Zero
	for _, r := range rows {
		switch r.Type {
		case models.TransactionTypeDeposit, models.TransactionTypePrizeWin:
			net = net.Add(r.TotalAmount)
		case models.TransactionTypeWithdrawal, models.TransactionTypeTournamentFee:
			net = net.Sub(r.TotalAmount)
		}
	}
	assert.True(t, net.Equal(decimal.NewFromInt(1100)), "net %s", net)
	assert.True(t, h.balance(t, "player-1").Equal(net))
}
