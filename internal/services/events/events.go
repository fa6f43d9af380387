// Package events publishes ledger outcomes for downstream consumers such
// as the notification service.
package events

import (
	"context"
	"crypto/rand"
	"time"

	"arenapay/internal/models"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// Event types
const (
	TypeTransactionCompleted = "transaction.completed"
	TypeTransactionFailed    = "transaction.failed"
	TypeWalletCompensated    = "wallet.compensated"
)

// Event is the message written for a finalized transaction.
type Event struct {
	EventID       string                   `json:"eventId"`
	Type          string                   `json:"type"`
	UserID        string                   `json:"userId"`
	TransactionID string                   `json:"transactionId"`
	TxType        models.TransactionType   `json:"transactionType"`
	Status        models.TransactionStatus `json:"status"`
	Amount        decimal.Decimal          `json:"amount"`
	Currency      string                   `json:"currency"`
	BalanceAfter  decimal.Decimal          `json:"balanceAfter"`
	Attempt       int                      `json:"attempt"`
	Reason        string                   `json:"reason,omitempty"`
	OccurredAt    time.Time                `json:"occurredAt"`
}

// Publisher delivers events. Implementations must be safe for concurrent
// use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NewEvent builds an event for tx with a fresh sortable id.
func NewEvent(eventType string, tx *models.Transaction, balanceAfter decimal.Decimal, now time.Time) Event {
	return Event{
		EventID:       ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		Type:          eventType,
		UserID:        tx.UserID,
		TransactionID: tx.TransactionID,
		TxType:        tx.Type,
		Status:        tx.Status,
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		BalanceAfter:  balanceAfter,
		Attempt:       tx.RetryCount,
		Reason:        tx.FailureReason,
		OccurredAt:    now,
	}
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                         { return nil }
