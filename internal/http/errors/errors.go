// Package errors define la respuesta de error estándar de la API y el
// mapeo desde la taxonomía del servicio de auth.
package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/machwork/identity/internal/service/auth"
)

// HTTPError es el error estándar de la API.
type HTTPError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Status  int    `json:"-"`
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return e.Message + ": " + e.Detail
	}
	return e.Message
}

// WithDetail devuelve una copia del error con detalle específico.
func (e *HTTPError) WithDetail(detail string) *HTTPError {
	return &HTTPError{Code: e.Code, Message: e.Message, Detail: detail, Status: e.Status}
}

var (
	ErrInvalidJSON       = &HTTPError{Code: "invalid_json", Message: "Invalid JSON format", Status: http.StatusBadRequest}
	ErrBadRequest        = &HTTPError{Code: "bad_request", Message: "Bad request", Status: http.StatusBadRequest}
	ErrUnauthorized      = &HTTPError{Code: "unauthorized", Message: "Unauthorized", Status: http.StatusUnauthorized}
	ErrForbidden         = &HTTPError{Code: "forbidden", Message: "Forbidden", Status: http.StatusForbidden}
	ErrNotFound          = &HTTPError{Code: "not_found", Message: "Not found", Status: http.StatusNotFound}
	ErrRateLimitExceeded = &HTTPError{Code: "rate_limit_exceeded", Message: "Too many requests", Status: http.StatusTooManyRequests}
	ErrInternal          = &HTTPError{Code: "internal_error", Message: "Internal server error", Status: http.StatusInternalServerError}
)

// Errores de negocio del flujo de auth.
var (
	errDuplicateEmail     = &HTTPError{Code: "duplicate_email", Message: "Email already registered", Status: http.StatusConflict}
	errWeakPassword       = &HTTPError{Code: "weak_password", Message: "Password does not meet policy", Status: http.StatusBadRequest}
	errInvalidCredentials = &HTTPError{Code: "invalid_credentials", Message: "Invalid credentials", Status: http.StatusUnauthorized}
	errEmailNotVerified   = &HTTPError{Code: "email_not_verified", Message: "Email not verified", Status: http.StatusForbidden}
	errMFARequired        = &HTTPError{Code: "mfa_required", Message: "MFA code required", Status: http.StatusUnauthorized}
	errInvalidMFACode     = &HTTPError{Code: "invalid_mfa_code", Message: "Invalid MFA code", Status: http.StatusUnauthorized}
	errInvalidToken       = &HTTPError{Code: "invalid_or_expired_token", Message: "Invalid or expired token", Status: http.StatusUnauthorized}
	errTokenMismatch      = &HTTPError{Code: "token_mismatch", Message: "Token does not match active session", Status: http.StatusUnauthorized}
	errMFANotInitiated    = &HTTPError{Code: "mfa_not_initiated", Message: "MFA setup not initiated", Status: http.StatusBadRequest}
	errMFANotEnabled      = &HTTPError{Code: "mfa_not_enabled", Message: "MFA is not enabled", Status: http.StatusBadRequest}
	errMFAAlreadyEnabled  = &HTTPError{Code: "mfa_already_enabled", Message: "MFA is already enabled", Status: http.StatusConflict}
)

// FromService mapea un error del servicio de auth a su HTTPError.
func FromService(err error) *HTTPError {
	switch {
	case errors.Is(err, auth.ErrDuplicateEmail):
		return errDuplicateEmail
	case errors.Is(err, auth.ErrWeakPassword):
		return errWeakPassword
	case errors.Is(err, auth.ErrInvalidCredentials):
		return errInvalidCredentials
	case errors.Is(err, auth.ErrEmailNotVerified):
		return errEmailNotVerified
	case errors.Is(err, auth.ErrMFARequired):
		return errMFARequired
	case errors.Is(err, auth.ErrInvalidMFACode):
		return errInvalidMFACode
	case errors.Is(err, auth.ErrInvalidOrExpiredToken):
		return errInvalidToken
	case errors.Is(err, auth.ErrTokenMismatch):
		return errTokenMismatch
	case errors.Is(err, auth.ErrMFANotInitiated):
		return errMFANotInitiated
	case errors.Is(err, auth.ErrMFANotEnabled):
		return errMFANotEnabled
	case errors.Is(err, auth.ErrMFAAlreadyEnabled):
		return errMFAAlreadyEnabled
	case errors.Is(err, auth.ErrForbidden):
		return ErrForbidden
	default:
		return ErrInternal
	}
}

// WriteError escribe el error al response writer.
func WriteError(w http.ResponseWriter, err error) {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		httpErr = FromService(err)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(httpErr.Status)
	_ = json.NewEncoder(w).Encode(httpErr)
}
