package repository

import (
	"context"
	"time"
)

// CompanyMembership vincula un usuario con una company y su rol dentro de ella.
// is_primary marca la membresía usada para resolver rol/company por defecto
// al emitir tokens.
type CompanyMembership struct {
	ID        string
	CompanyID string
	UserID    string
	Role      string
	IsPrimary bool
	CreatedAt time.Time
}

// MembershipRepository define operaciones de lectura sobre membresías.
// El CRUD de companies vive fuera de este core; acá solo se resuelve contexto.
type MembershipRepository interface {
	// GetPrimary retorna la membresía primaria del usuario.
	// Retorna ErrNotFound si el usuario no tiene membresía primaria.
	GetPrimary(ctx context.Context, userID string) (*CompanyMembership, error)

	// Exists verifica si el usuario pertenece a la company.
	Exists(ctx context.Context, companyID, userID string) (bool, error)

	// ListByCompany lista las membresías de una company.
	ListByCompany(ctx context.Context, companyID string) ([]CompanyMembership, error)
}
