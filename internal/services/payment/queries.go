package payment

import (
	"context"
	"strconv"
	"time"

	apperrors "arenapay/internal/errors"
	"arenapay/internal/models"
	"arenapay/internal/repositories"
	"arenapay/internal/repositories/cache"
	"arenapay/internal/services/transaction"
	"arenapay/internal/services/wallet"
	cachekeys "arenapay/internal/utils/cache"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// WalletView is the display shape of a wallet.
type WalletView struct {
	Balance            decimal.Decimal           `json:"balance"`
	Currency           string                    `json:"currency"`
	TotalDeposited     decimal.Decimal           `json:"totalDeposited"`
	TotalWithdrawn     decimal.Decimal           `json:"totalWithdrawn"`
	TotalWon           decimal.Decimal           `json:"totalWon"`
	TotalSpent         decimal.Decimal           `json:"totalSpent"`
	DailyUsage         models.DailyUsage         `json:"dailyUsage"`
	MonthlyUsage       models.MonthlyUsage       `json:"monthlyUsage"`
	VerificationStatus models.VerificationStatus `json:"verificationStatus"`
	IsActive           bool                      `json:"isActive"`
}

func NewWalletView(w *models.Wallet) WalletView {
	return WalletView{
		Balance:            w.Balance,
		Currency:           w.Currency,
		TotalDeposited:     w.TotalDeposited,
		TotalWithdrawn:     w.TotalWithdrawn,
		TotalWon:           w.TotalWon,
		TotalSpent:         w.TotalSpent,
		DailyUsage:         w.DailyUsage,
		MonthlyUsage:       w.MonthlyUsage,
		VerificationStatus: w.VerificationStatus,
		IsActive:           w.IsActive,
	}
}

// TransactionPage is one page of a user's transactions.
type TransactionPage struct {
	Transactions []models.Transaction `json:"transactions"`
	Total        int64                `json:"total"`
}

// Queries serves the cached display reads. Nothing here is used for limit
// or balance decisions.
type Queries struct {
	wallets wallet.Store
	ledger  transaction.Ledger
	cache   cache.ReadCache
	ttl     time.Duration
	metrics MetricsCollector
	group   singleflight.Group
}

func NewQueries(wallets wallet.Store, ledger transaction.Ledger, readCache cache.ReadCache, ttl time.Duration, metrics MetricsCollector) *Queries {
	if readCache == nil {
		readCache = cache.Noop{}
	}
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}
	return &Queries{
		wallets: wallets,
		ledger:  ledger,
		cache:   readCache,
		ttl:     ttl,
		metrics: metrics,
	}
}

// Wallet returns the wallet view of userID, creating the wallet on first
// access.
func (q *Queries) Wallet(ctx context.Context, userID string) (WalletView, error) {
	key := cachekeys.WalletKey(userID)
	var view WalletView
	if q.cache.Get(ctx, key, &view) {
		q.metrics.RecordCacheHit(string(cachekeys.EntityWallet))
		return view, nil
	}
	q.metrics.RecordCacheMiss(string(cachekeys.EntityWallet))

	// The load is shared by every waiter on key.
	shared := context.WithoutCancel(ctx)
	v, err, _ := q.group.Do(key, func() (interface{}, error) {
		w, err := q.wallets.GetOrCreate(shared, userID)
		if err != nil {
			return nil, err
		}
		view := NewWalletView(w)
		q.cache.Set(shared, key, view, q.ttl)
		return view, nil
	})
	if err != nil {
		return WalletView{}, err
	}
	return v.(WalletView), nil
}

func (q *Queries) Transactions(ctx context.Context, filter repositories.TransactionFilter) (TransactionPage, error) {
	key := cachekeys.TransactionsKey(filter.UserID, "list", map[string]string{
		"type":   string(filter.Type),
		"status": string(filter.Status),
		"from":   formatTime(filter.StartDate),
		"to":     formatTime(filter.EndDate),
		"limit":  strconv.Itoa(filter.Limit),
		"offset": strconv.Itoa(filter.Offset),
	})
	var page TransactionPage
	if q.cache.Get(ctx, key, &page) {
		q.metrics.RecordCacheHit(string(cachekeys.EntityTransactions))
		return page, nil
	}
	q.metrics.RecordCacheMiss(string(cachekeys.EntityTransactions))

	shared := context.WithoutCancel(ctx)
	v, err, _ := q.group.Do(key, func() (interface{}, error) {
		txs, total, err := q.ledger.List(shared, filter)
		if err != nil {
			return nil, err
		}
		if txs == nil {
			txs = []models.Transaction{}
		}
		page := TransactionPage{Transactions: txs, Total: total}
		q.cache.Set(shared, key, page, q.ttl)
		return page, nil
	})
	if err != nil {
		return TransactionPage{}, err
	}
	return v.(TransactionPage), nil
}

// Summary aggregates the user's completed transactions per type.
func (q *Queries) Summary(ctx context.Context, userID string, from, to *time.Time) ([]models.TransactionSummary, error) {
	key := cachekeys.TransactionsKey(userID, "summary", map[string]string{
		"from": formatTime(from),
		"to":   formatTime(to),
	})
	var summary []models.TransactionSummary
	if q.cache.Get(ctx, key, &summary) {
		q.metrics.RecordCacheHit(string(cachekeys.EntityTransactions))
		return summary, nil
	}
	q.metrics.RecordCacheMiss(string(cachekeys.EntityTransactions))

	shared := context.WithoutCancel(ctx)
	v, err, _ := q.group.Do(key, func() (interface{}, error) {
		rows, err := q.ledger.Summarize(shared, userID, from, to)
		if err != nil {
			return nil, err
		}
		if rows == nil {
			rows = []models.TransactionSummary{}
		}
		q.cache.Set(shared, key, rows, q.ttl)
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.TransactionSummary), nil
}

// Transaction returns one transaction owned by userID, read uncached.
func (q *Queries) Transaction(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	tx, err := q.ledger.Get(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID {
		return nil, apperrors.ErrTransactionNotFound
	}
	return tx, nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
