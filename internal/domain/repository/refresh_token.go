package repository

import (
	"context"
	"time"
)

// RefreshToken representa un refresh token persistido. El token crudo nunca
// se guarda; solo sha256. replaced_by enlaza la cadena de rotación.
type RefreshToken struct {
	ID         string
	UserID     string
	JTI        string
	TokenHash  string
	IssuedAt   time.Time
	ExpiresAt  time.Time
	RevokedAt  *time.Time
	ReplacedBy *string
}

// CreateRefreshTokenInput contiene los datos para persistir un refresh token.
type CreateRefreshTokenInput struct {
	UserID    string
	JTI       string
	TokenHash string
	ExpiresAt time.Time
}

// RefreshTokenRepository define operaciones sobre refresh tokens.
type RefreshTokenRepository interface {
	// Create persiste un refresh token nuevo y retorna su ID.
	Create(ctx context.Context, input CreateRefreshTokenInput) (string, error)

	// Rotate revoca atómicamente el token identificado por oldHash (solo si
	// sigue activo y no expirado), inserta el reemplazo y enlaza replaced_by,
	// todo en una transacción. Retorna el registro viejo ya revocado.
	// Retorna ErrNotFound si el hash no corresponde a un token activo vigente:
	// un token ya rotado siempre falla, sin ventana de gracia.
	Rotate(ctx context.Context, oldHash string, next CreateRefreshTokenInput) (*RefreshToken, error)

	// RevokeAllForUser revoca todos los tokens activos del usuario.
	// Retorna la cantidad revocada.
	RevokeAllForUser(ctx context.Context, userID string) (int, error)
}
