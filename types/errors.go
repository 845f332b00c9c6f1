package types

import (
	"errors"
	"net/http"
)

// ErrorCode classifies every failure the gateway or the coordinator reports.
type ErrorCode string

const (
	ErrCodeNotConnected        ErrorCode = "NotConnected"
	ErrCodeNoPriceData         ErrorCode = "NoPriceData"
	ErrCodePaymentRejected     ErrorCode = "PaymentRejectedByUser"
	ErrCodePaymentFailed       ErrorCode = "PaymentBroadcastOrConfirmFailed"
	ErrCodeInvalidRequest      ErrorCode = "InvalidRequest"
	ErrCodeConfigError         ErrorCode = "ConfigError"
	ErrCodeUpstreamError       ErrorCode = "UpstreamError"
	ErrCodeUpstreamFormatError ErrorCode = "UpstreamFormatError"
	ErrCodeMethodNotAllowed    ErrorCode = "MethodNotAllowed"
	ErrCodePaymentRequired     ErrorCode = "PaymentRequired"
	ErrCodeUnknown             ErrorCode = "UnknownError"
)

// Status returns the HTTP status a gateway uses for the code.
func (c ErrorCode) Status() int {
	switch c {
	case ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case ErrCodePaymentRequired:
		return http.StatusPaymentRequired
	case ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case ErrCodeUpstreamFormatError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is the structured failure returned across package boundaries.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status is the HTTP status matching the error code.
func (e *Error) Status() int {
	return e.Code.Status()
}

// NewError builds an *Error with an optional cause.
func NewError(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Err: cause}
}

// CodeOf extracts the code of err, UnknownError when err is not an *Error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeUnknown
}

var (
	// ErrUserRejected is returned by wallets when the user declines to sign.
	ErrUserRejected = errors.New("user rejected the request")

	// ErrNoPriceData means no fee quote is available for a network.
	ErrNoPriceData = errors.New("no price data available")

	// ErrWrongChain means the wallet is connected to another chain than requested.
	ErrWrongChain = errors.New("wallet is connected to a different chain")

	// ErrNotConnected means no wallet account is available.
	ErrNotConnected = errors.New("wallet not connected")

	// ErrMissingCredential means the model API key is not configured.
	ErrMissingCredential = errors.New("missing model API key")
)
