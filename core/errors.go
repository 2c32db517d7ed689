package core

import (
	"context"
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorCodeAuthenticationFailed = "IDENTITY_AUTHENTICATION_FAILED"
	ErrorCodeNotFound             = "IDENTITY_NOT_FOUND"
	ErrorCodeBadRequest           = "IDENTITY_BAD_REQUEST"
	ErrorCodeServiceUnavailable   = "IDENTITY_SERVICE_UNAVAILABLE"
	ErrorCodeTransportError       = "IDENTITY_TRANSPORT_ERROR"
	ErrorCodeCancelled            = "IDENTITY_CANCELLED"
	ErrorCodeServiceAuthFailed    = "IDENTITY_SERVICE_AUTH_FAILED"
	ErrorCodeInternal             = "IDENTITY_INTERNAL_ERROR"
)

// NewAuthenticationFailed marks a presented credential as invalid or
// expired per the remote service. Never retried.
func NewAuthenticationFailed(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(ErrorCodeAuthenticationFailed)
}

func NewNotFound(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryNotFound).
		WithCode(http.StatusNotFound).
		WithTextCode(ErrorCodeNotFound)
}

func NewBadRequest(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorCodeBadRequest)
}

func WrapBadRequest(err error, message string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryBadInput, message).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorCodeBadRequest)
}

// NewServiceUnavailable marks a 5xx upstream response. Retryable.
func NewServiceUnavailable(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryExternal).
		WithCode(http.StatusServiceUnavailable).
		WithTextCode(ErrorCodeServiceUnavailable)
}

// NewTransportError marks a connection failure or timeout. Retryable.
func NewTransportError(err error, message string) *goerrors.Error {
	if err == nil {
		return goerrors.New(message, goerrors.CategoryExternal).
			WithCode(http.StatusServiceUnavailable).
			WithTextCode(ErrorCodeTransportError)
	}
	return goerrors.Wrap(err, goerrors.CategoryExternal, message).
		WithCode(http.StatusServiceUnavailable).
		WithTextCode(ErrorCodeTransportError)
}

// NewCancelled marks a caller-initiated cancellation. Distinct from retry
// exhaustion so callers never mistake their own abort for a service
// failure.
func NewCancelled(err error) *goerrors.Error {
	if err == nil {
		err = context.Canceled
	}
	return goerrors.Wrap(err, goerrors.CategoryOperation, "operation cancelled").
		WithCode(http.StatusRequestTimeout).
		WithTextCode(ErrorCodeCancelled)
}

// NewServiceAuthFailed marks the manager's inability to obtain a usable
// service credential. Fatal for the triggering call. When the cause is
// already a rich error, the wrap keeps its category; the auto-renew loop
// reads it to pick the retry pause.
func NewServiceAuthFailed(err error) *goerrors.Error {
	if err == nil {
		return goerrors.New("cannot authenticate as service", goerrors.CategoryAuth).
			WithCode(http.StatusUnauthorized).
			WithTextCode(ErrorCodeServiceAuthFailed)
	}
	return goerrors.Wrap(err, goerrors.CategoryAuth, "cannot authenticate as service").
		WithCode(http.StatusUnauthorized).
		WithTextCode(ErrorCodeServiceAuthFailed)
}

func newInternalError(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(ErrorCodeInternal)
}

func errorTextCode(err error) string {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return strings.TrimSpace(strings.ToUpper(richErr.TextCode))
	}
	return ""
}

func IsAuthenticationFailed(err error) bool {
	return errorTextCode(err) == ErrorCodeAuthenticationFailed
}

func IsNotFound(err error) bool {
	return errorTextCode(err) == ErrorCodeNotFound
}

func IsBadRequest(err error) bool {
	return errorTextCode(err) == ErrorCodeBadRequest
}

func IsServiceAuthFailed(err error) bool {
	return errorTextCode(err) == ErrorCodeServiceAuthFailed
}

func IsCancelled(err error) bool {
	if errorTextCode(err) == ErrorCodeCancelled {
		return true
	}
	return errors.Is(err, context.Canceled)
}

// IsRetryable reports whether an error is a transient transport or
// upstream-availability failure. Authentication, not-found, bad-request
// and cancellation outcomes are terminal.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch errorTextCode(err) {
	case ErrorCodeServiceUnavailable, ErrorCodeTransportError:
		return true
	case "":
	default:
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryExternal
	}
	return false
}

func identityErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureIdentityErrorEnvelope(richErr)
	}
	if errors.Is(err, context.Canceled) {
		return NewCancelled(err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTransportError(err, "request deadline exceeded")
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "unauthorized"), strings.Contains(msg, "invalid token"), strings.Contains(msg, "token expired"):
		return ensureIdentityErrorEnvelope(NewAuthenticationFailed(err.Error()))
	case strings.Contains(msg, "not found"):
		return ensureIdentityErrorEnvelope(NewNotFound(err.Error()))
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "malformed"):
		return ensureIdentityErrorEnvelope(NewBadRequest(err.Error()))
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "connection refused"), strings.Contains(msg, "connection reset"):
		return ensureIdentityErrorEnvelope(NewTransportError(err, "transport failure"))
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureIdentityErrorEnvelope(mapped)
}

func ensureIdentityErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = identityHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultIdentityTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultIdentityTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ErrorCodeBadRequest
	case goerrors.CategoryNotFound:
		return ErrorCodeNotFound
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return ErrorCodeAuthenticationFailed
	case goerrors.CategoryExternal:
		return ErrorCodeServiceUnavailable
	default:
		return ErrorCodeInternal
	}
}

func identityHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryExternal:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
