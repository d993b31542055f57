package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound             = errors.New("resource not found")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrWalletNotFound       = errors.New("wallet not found")
	ErrAlreadyExists        = errors.New("resource already exists")
	ErrConflict             = errors.New("conflict")
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidSignature     = errors.New("invalid webhook signature")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrTicketsAlreadyTaken  = errors.New("tickets already taken")
	ErrJackpotClosed        = errors.New("jackpot is not accepting tickets")
	ErrExclusivePlanHeld    = errors.New("an exclusive plan in this category is already active")
	ErrInvalidTransition    = errors.New("invalid transaction status transition")
	ErrGateway              = errors.New("payment gateway error")
	ErrUnsupportedIntent    = errors.New("unsupported transaction intent")
	ErrAmountBelowMinimum   = errors.New("amount below gateway minimum")
	ErrInvalidPayoutAddress = errors.New("invalid payout address")
)

// Error category codes returned to API clients
const (
	CodeAuthentication    = "AUTHENTICATION"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	CodeGateway           = "GATEWAY"
	CodeValidation        = "VALIDATION"
	CodeInternalError     = "INTERNAL"
)

// AppError represents application error with HTTP status and category code
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeValidation, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func Conflict(message string, err error) *AppError {
	if err == nil {
		err = ErrConflict
	}
	return NewAppError(http.StatusConflict, CodeConflict, message, err)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

// FromError maps a domain sentinel to the AppError the API layer renders.
// Errors that already are AppErrors pass through unchanged.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrInvalidSignature):
		return NewAppError(http.StatusUnauthorized, CodeAuthentication, "invalid signature", err)
	case errors.Is(err, ErrUnauthorized):
		return NewAppError(http.StatusUnauthorized, CodeUnauthorized, "unauthorized", err)
	case errors.Is(err, ErrForbidden):
		return NewAppError(http.StatusForbidden, CodeForbidden, "forbidden", err)
	case errors.Is(err, ErrTransactionNotFound), errors.Is(err, ErrWalletNotFound), errors.Is(err, ErrNotFound):
		return NewAppError(http.StatusNotFound, CodeNotFound, err.Error(), err)
	case errors.Is(err, ErrInsufficientFunds):
		return NewAppError(http.StatusUnprocessableEntity, CodeInsufficientFunds, "insufficient funds", err)
	case errors.Is(err, ErrTicketsAlreadyTaken), errors.Is(err, ErrExclusivePlanHeld),
		errors.Is(err, ErrConflict), errors.Is(err, ErrAlreadyExists):
		return NewAppError(http.StatusConflict, CodeConflict, err.Error(), err)
	case errors.Is(err, ErrGateway):
		return NewAppError(http.StatusBadGateway, CodeGateway, "payment gateway unavailable", err)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrJackpotClosed),
		errors.Is(err, ErrAmountBelowMinimum), errors.Is(err, ErrInvalidPayoutAddress):
		return NewAppError(http.StatusBadRequest, CodeValidation, err.Error(), err)
	default:
		return InternalError(err)
	}
}

// GatewayError reports a gateway failure after a pending transaction was
// recorded. The caller can retry against ReferenceID.
type GatewayError struct {
	ReferenceID string
	Err         error
}

func (e *GatewayError) Error() string {
	return "gateway call failed for " + e.ReferenceID + ": " + e.Err.Error()
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
