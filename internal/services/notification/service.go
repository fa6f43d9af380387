// Package notification turns ledger events into player-facing messages.
// Delivery belongs to the platform's push service; this implementation
// writes the messages to the log and is used when Kafka is disabled.
package notification

import (
	"context"
	"fmt"

	"arenapay/internal/models"
	"arenapay/internal/services/events"

	"go.uber.org/zap"
)

// Service is a log-backed events.Publisher.
type Service struct {
	logger *zap.Logger
}

// NewService creates a new notification service.
func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}
}

func (s *Service) Publish(ctx context.Context, event events.Event) error {
	s.logger.Info("notify user",
		zap.String("user_id", event.UserID),
		zap.String("event_type", event.Type),
		zap.String("transaction_id", event.TransactionID),
		zap.String("message", Message(event)))
	return nil
}

func (s *Service) Close() error { return nil }

// Message renders the text shown to the player for event.
func Message(event events.Event) string {
	amount := event.Amount.StringFixed(2) + " " + event.Currency
	balance := event.BalanceAfter.StringFixed(2) + " " + event.Currency

	switch event.Type {
	case events.TypeWalletCompensated:
		return fmt.Sprintf("Your withdrawal of %s could not be sent and was returned to your wallet. Balance: %s.", amount, balance)
	case events.TypeTransactionFailed:
		return fmt.Sprintf("Your %s of %s failed: %s", label(event.TxType), amount, event.Reason)
	}

	switch event.TxType {
	case models.TransactionTypePrizeWin:
		return fmt.Sprintf("Congratulations! You won %s. Balance: %s.", amount, balance)
	case models.TransactionTypeTournamentFee:
		return fmt.Sprintf("Entry fee of %s paid. Balance: %s.", amount, balance)
	default:
		return fmt.Sprintf("Your %s of %s is complete. Balance: %s.", label(event.TxType), amount, balance)
	}
}

func label(t models.TransactionType) string {
	switch t {
	case models.TransactionTypeDeposit:
		return "deposit"
	case models.TransactionTypeWithdrawal:
		return "withdrawal"
	case models.TransactionTypeAdminAdjustment:
		return "balance adjustment"
	case models.TransactionTypeRefund:
		return "refund"
	default:
		return "transaction"
	}
}
