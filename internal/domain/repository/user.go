package repository

import (
	"context"
	"time"
)

// User representa una cuenta de usuario. El email se guarda siempre en minúsculas.
type User struct {
	ID              string
	Email           string
	PasswordHash    string
	FirstName       string
	LastName        string
	EmailVerifiedAt *time.Time
	MFAEnabled      bool
	MFASecret       *string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreateUserInput contiene los datos para crear un usuario.
// El hash ya viene calculado; este layer nunca ve el password en claro.
type CreateUserInput struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
}

// UserRepository define operaciones sobre cuentas de usuario.
type UserRepository interface {
	// Create crea un usuario. Retorna ErrConflict si el email ya existe
	// (comparación case-insensitive).
	Create(ctx context.Context, input CreateUserInput) (*User, error)

	// GetByEmail busca por email (se normaliza a minúsculas).
	// Retorna ErrNotFound si no existe.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByID busca por id. Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*User, error)

	// SetEmailVerified marca el email como verificado.
	SetEmailVerified(ctx context.Context, userID string, at time.Time) error

	// UpdatePasswordHash reemplaza el hash de password.
	UpdatePasswordHash(ctx context.Context, userID, hash string) error

	// SetMFASecret guarda el secreto TOTP en estado pendiente (mfa_enabled=false).
	SetMFASecret(ctx context.Context, userID, secret string) error

	// EnableMFA marca MFA como confirmado.
	EnableMFA(ctx context.Context, userID string) error

	// DisableMFA limpia secreto y flag.
	DisableMFA(ctx context.Context, userID string) error
}
