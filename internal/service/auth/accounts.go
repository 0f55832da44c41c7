package auth

import (
	"context"

	"github.com/machwork/identity/internal/domain/repository"
	"github.com/machwork/identity/internal/rbac"
)

// CurrentUser devuelve el perfil del usuario autenticado.
func (s *Service) CurrentUser(ctx context.Context, userID string) (*repository.User, error) {
	return s.repos.Users.GetByID(ctx, userID)
}

// ListMembers lista las membresías de una compañía. Requiere el permiso
// member.read, que la compañía del token coincida con la pedida y una
// membresía viva; super_admin pasa directo.
func (s *Service) ListMembers(ctx context.Context, actorID string, actorRole rbac.Role, actorCompanyID, companyID string) ([]repository.CompanyMembership, error) {
	if !rbac.HasPermission(actorRole, rbac.PermMemberRead) {
		return nil, ErrForbidden
	}
	if actorRole != rbac.RoleSuperAdmin {
		if actorCompanyID != companyID {
			return nil, ErrForbidden
		}
		ok, err := s.resolver.MemberOf(ctx, companyID, actorID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrForbidden
		}
	}
	return s.repos.Memberships.ListByCompany(ctx, companyID)
}
