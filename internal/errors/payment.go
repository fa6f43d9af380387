package errors

import "net/http"

// Failures raised after a transaction exists.
var (
	ErrGatewayUnavailable = &DomainError{
		Code:    "GATEWAY_UNAVAILABLE",
		Message: "payment gateway unavailable",
		Status:  http.StatusBadGateway,
	}
	ErrGatewayTimeout = &DomainError{
		Code:    "GATEWAY_TIMEOUT",
		Message: "payment gateway timed out",
		Status:  http.StatusGatewayTimeout,
	}
	ErrGatewayDeclined = &DomainError{
		Code:    "GATEWAY_DECLINED",
		Message: "payment declined by gateway",
		Status:  http.StatusBadGateway,
	}
	ErrUnsupportedPaymentMethod = &DomainError{
		Code:    "UNSUPPORTED_PAYMENT_METHOD",
		Message: "unsupported payment method",
		Status:  http.StatusBadRequest,
	}
	ErrMaxRetriesExceeded = &DomainError{
		Code:    "MAX_RETRIES_EXCEEDED",
		Message: "maximum retries exceeded, start a new payment",
		Status:  http.StatusConflict,
	}
	ErrTransactionNotFound = &DomainError{
		Code:    "TRANSACTION_NOT_FOUND",
		Message: "transaction not found",
		Status:  http.StatusNotFound,
	}
	ErrTransactionFinalized = &DomainError{
		Code:    "TRANSACTION_FINALIZED",
		Message: "transaction is already finalized",
		Status:  http.StatusConflict,
	}
	ErrTransactionNotRetryable = &DomainError{
		Code:    "TRANSACTION_NOT_RETRYABLE",
		Message: "transaction cannot be retried",
		Status:  http.StatusConflict,
	}
	ErrAlreadyCompensated = &DomainError{
		Code:    "ALREADY_COMPENSATED",
		Message: "attempt already compensated",
		Status:  http.StatusConflict,
	}
)
