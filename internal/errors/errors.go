// Package errors holds the domain error values shared by the wallet,
// ledger, gateway and payment packages. Handlers map them to HTTP
// responses through Code and Status.
package errors

import (
	stderrors "errors"
	"net/http"
)

// DomainError is a user-facing error kind. Two DomainErrors are the same
// kind when their codes match, so wrapped values still satisfy errors.Is.
type DomainError struct {
	Code    string
	Message string
	Status  int
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Retryable reports whether the caller may retry the operation that
// produced e.
func (e *DomainError) Retryable() bool {
	switch e.Code {
	case ErrGatewayUnavailable.Code, ErrGatewayTimeout.Code, ErrGatewayDeclined.Code:
		return true
	}
	return false
}

// AsDomain unwraps err to its DomainError, if any.
func AsDomain(err error) (*DomainError, bool) {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// StatusOf returns the HTTP status for err, defaulting to 500.
func StatusOf(err error) int {
	if de, ok := AsDomain(err); ok && de.Status != 0 {
		return de.Status
	}
	return http.StatusInternalServerError
}

var (
	ErrInvalidTransaction = &DomainError{
		Code:    "INVALID_TRANSACTION",
		Message: "invalid transaction",
		Status:  http.StatusBadRequest,
	}
	ErrConcurrentModification = &DomainError{
		Code:    "CONCURRENT_MODIFICATION",
		Message: "concurrent modification detected",
		Status:  http.StatusConflict,
	}
)
