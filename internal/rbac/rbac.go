// Package rbac resuelve roles y permisos a partir de las membresías.
//
// El mapa rol→permisos es estático y se compila en el binario; no hay
// roles dinámicos ni permisos por usuario.
package rbac

import "fmt"

// Role es el rol de un usuario dentro de una compañía.
type Role string

const (
	// RoleSuperAdmin bypassa el chequeo de permisos por completo.
	RoleSuperAdmin Role = "super_admin"
	// RoleCompanyOwner administra su compañía.
	RoleCompanyOwner Role = "company_owner"
	// RoleAccountant opera facturación y reportes.
	RoleAccountant Role = "accountant"
	// RoleWorker es el rol por defecto.
	RoleWorker Role = "worker"
)

// ParseRole valida una cadena de rol almacenada.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleSuperAdmin, RoleCompanyOwner, RoleAccountant, RoleWorker:
		return r, nil
	}
	return "", fmt.Errorf("rbac: unknown role %q", s)
}

func (r Role) String() string { return string(r) }

// Valid reporta si el rol pertenece al enum conocido.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Permission identifica una operación protegida ("recurso.acción").
type Permission string

const (
	PermCompanyCreate Permission = "company.create"
	PermCompanyManage Permission = "company.manage"
	PermMemberRead    Permission = "member.read"
	PermMemberManage  Permission = "member.manage"
	PermInvoiceRead   Permission = "invoice.read"
	PermInvoiceWrite  Permission = "invoice.write"
	PermProjectRead   Permission = "project.read"
	PermProjectWrite  Permission = "project.write"
)

// rolePerms es el mapa estático rol→permisos. super_admin no aparece:
// HasPermission lo concede todo antes de consultar el mapa.
var rolePerms = map[Role]map[Permission]struct{}{
	RoleCompanyOwner: permSet(
		PermCompanyCreate, PermCompanyManage,
		PermMemberRead, PermMemberManage,
		PermInvoiceRead, PermInvoiceWrite,
		PermProjectRead, PermProjectWrite,
	),
	RoleAccountant: permSet(
		PermMemberRead,
		PermInvoiceRead, PermInvoiceWrite,
		PermProjectRead,
	),
	RoleWorker: permSet(
		PermMemberRead,
		PermProjectRead,
	),
}

func permSet(perms ...Permission) map[Permission]struct{} {
	m := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		m[p] = struct{}{}
	}
	return m
}

// HasPermission reporta si el rol concede el permiso.
func HasPermission(r Role, p Permission) bool {
	if r == RoleSuperAdmin {
		return true
	}
	set, ok := rolePerms[r]
	if !ok {
		return false
	}
	_, ok = set[p]
	return ok
}

// Permissions devuelve la lista de permisos del rol, para introspección.
func Permissions(r Role) []Permission {
	if r == RoleSuperAdmin {
		all := make([]Permission, 0, 8)
		for _, p := range []Permission{
			PermCompanyCreate, PermCompanyManage,
			PermMemberRead, PermMemberManage,
			PermInvoiceRead, PermInvoiceWrite,
			PermProjectRead, PermProjectWrite,
		} {
			all = append(all, p)
		}
		return all
	}
	set := rolePerms[r]
	out := make([]Permission, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	return out
}
