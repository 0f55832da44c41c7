package auth

import "errors"

// Taxonomía de errores del flujo de autenticación. Los handlers mapean
// cada uno a su status HTTP; acá solo importa la causa.
var (
	// ErrDuplicateEmail: el email ya tiene una cuenta.
	ErrDuplicateEmail = errors.New("auth: email already registered")

	// ErrWeakPassword: el password no cumple la política mínima.
	ErrWeakPassword = errors.New("auth: password does not meet policy")

	// ErrInvalidCredentials: email inexistente, password incorrecto o
	// cuenta desactivada. Indistinguibles a propósito.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrEmailNotVerified: credenciales OK pero email sin verificar.
	ErrEmailNotVerified = errors.New("auth: email not verified")

	// ErrMFARequired: credenciales OK pero falta el segundo factor.
	ErrMFARequired = errors.New("auth: mfa code required")

	// ErrInvalidMFACode: el TOTP/backup code no valida.
	ErrInvalidMFACode = errors.New("auth: invalid mfa code")

	// ErrInvalidOrExpiredToken: token de acción o refresh inexistente,
	// usado, vencido o con firma inválida.
	ErrInvalidOrExpiredToken = errors.New("auth: invalid or expired token")

	// ErrTokenMismatch: el refresh firmado no coincide con el registro
	// activo de su cadena (jti desincronizado).
	ErrTokenMismatch = errors.New("auth: token mismatch")

	// ErrMFANotInitiated: confirm sin secreto pendiente.
	ErrMFANotInitiated = errors.New("auth: mfa not initiated")

	// ErrMFANotEnabled: disable sin MFA activo.
	ErrMFANotEnabled = errors.New("auth: mfa not enabled")

	// ErrMFAAlreadyEnabled: initiate con MFA ya confirmado.
	ErrMFAAlreadyEnabled = errors.New("auth: mfa already enabled")

	// ErrForbidden: el rol no concede el permiso requerido.
	ErrForbidden = errors.New("auth: forbidden")
)
