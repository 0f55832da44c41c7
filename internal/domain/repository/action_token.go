package repository

import (
	"context"
	"time"
)

// ActionTokenPurpose indica qué transición de estado autoriza el token.
type ActionTokenPurpose string

const (
	ActionTokenEmailVerification ActionTokenPurpose = "email_verification"
	ActionTokenPasswordReset     ActionTokenPurpose = "password_reset"
)

// ActionToken es un token de un solo uso con expiración (verificación de email
// o password reset). Solo se persiste el sha256 del token crudo.
type ActionToken struct {
	ID        string
	UserID    string
	Purpose   ActionTokenPurpose
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// CreateActionTokenInput contiene los datos para emitir un action token.
type CreateActionTokenInput struct {
	UserID    string
	Purpose   ActionTokenPurpose
	TokenHash string
	ExpiresAt time.Time
}

// ActionTokenRepository define operaciones sobre tokens de un solo uso.
type ActionTokenRepository interface {
	// Create persiste un token nuevo.
	Create(ctx context.Context, input CreateActionTokenInput) (*ActionToken, error)

	// Consume marca el token como usado y retorna el user_id, en una sola
	// operación atómica: UPDATE ... WHERE used_at IS NULL AND expires_at > now().
	// Retorna ErrTokenExpired si existe pero ya fue usado o expiró,
	// ErrNotFound si no existe.
	Consume(ctx context.Context, purpose ActionTokenPurpose, tokenHash string, at time.Time) (userID string, err error)

	// DeleteExpired elimina tokens expirados o usados (cleanup job).
	DeleteExpired(ctx context.Context) (int, error)
}
