package errors

import "net/http"

// Rejections raised before any transaction is opened.
var (
	ErrInvalidAmount = &DomainError{
		Code:    "INVALID_AMOUNT",
		Message: "invalid amount",
		Status:  http.StatusBadRequest,
	}
	ErrInsufficientBalance = &DomainError{
		Code:    "INSUFFICIENT_BALANCE",
		Message: "insufficient wallet balance",
		Status:  http.StatusBadRequest,
	}
	ErrWalletSuspended = &DomainError{
		Code:    "WALLET_SUSPENDED",
		Message: "wallet is suspended",
		Status:  http.StatusForbidden,
	}
	ErrTransactionTooLarge = &DomainError{
		Code:    "TRANSACTION_TOO_LARGE",
		Message: "amount exceeds the per-transaction maximum",
		Status:  http.StatusBadRequest,
	}
	ErrDailyLimitExceeded = &DomainError{
		Code:    "DAILY_LIMIT_EXCEEDED",
		Message: "daily limit exceeded",
		Status:  http.StatusBadRequest,
	}
	ErrMonthlyLimitExceeded = &DomainError{
		Code:    "MONTHLY_LIMIT_EXCEEDED",
		Message: "monthly limit exceeded",
		Status:  http.StatusBadRequest,
	}
	ErrWalletNotFound = &DomainError{
		Code:    "WALLET_NOT_FOUND",
		Message: "wallet not found",
		Status:  http.StatusNotFound,
	}
	ErrInvalidVerificationStatus = &DomainError{
		Code:    "INVALID_VERIFICATION_STATUS",
		Message: "invalid verification status",
		Status:  http.StatusBadRequest,
	}
)
