package rbac

import (
	"context"

	"github.com/machwork/identity/internal/domain/repository"
)

// Resolver calcula el rol primario de un usuario a partir de sus
// membresías persistidas.
type Resolver struct {
	memberships repository.MembershipRepository
}

// NewResolver construye un Resolver sobre el repositorio de membresías.
func NewResolver(memberships repository.MembershipRepository) *Resolver {
	return &Resolver{memberships: memberships}
}

// Primary devuelve el rol y la compañía primarios del usuario.
// Sin membresía primaria: rol worker y compañía vacía. Un rol
// desconocido almacenado degrada a worker en vez de fallar.
func (r *Resolver) Primary(ctx context.Context, userID string) (Role, string, error) {
	m, err := r.memberships.GetPrimary(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return RoleWorker, "", nil
		}
		return "", "", err
	}
	role, err := ParseRole(m.Role)
	if err != nil {
		return RoleWorker, m.CompanyID, nil
	}
	return role, m.CompanyID, nil
}

// MemberOf reporta si el usuario pertenece a la compañía.
func (r *Resolver) MemberOf(ctx context.Context, companyID, userID string) (bool, error) {
	return r.memberships.Exists(ctx, companyID, userID)
}
