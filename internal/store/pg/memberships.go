package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/machwork/identity/internal/domain/repository"
)

// MembershipRepo implementa repository.MembershipRepository.
type MembershipRepo struct{ pool *pgxpool.Pool }

func (r *MembershipRepo) GetPrimary(ctx context.Context, userID string) (*repository.CompanyMembership, error) {
	const q = `
SELECT id, company_id, user_id, role, is_primary, created_at
FROM company_memberships
WHERE user_id = $1 AND is_primary
LIMIT 1`
	var m repository.CompanyMembership
	err := queryable(ctx, r.pool).QueryRow(ctx, q, userID).
		Scan(&m.ID, &m.CompanyID, &m.UserID, &m.Role, &m.IsPrimary, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MembershipRepo) Exists(ctx context.Context, companyID, userID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM company_memberships WHERE company_id = $1 AND user_id = $2)`
	var ok bool
	if err := queryable(ctx, r.pool).QueryRow(ctx, q, companyID, userID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *MembershipRepo) ListByCompany(ctx context.Context, companyID string) ([]repository.CompanyMembership, error) {
	const q = `
SELECT id, company_id, user_id, role, is_primary, created_at
FROM company_memberships
WHERE company_id = $1
ORDER BY created_at`
	rows, err := queryable(ctx, r.pool).Query(ctx, q, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.CompanyMembership
	for rows.Next() {
		var m repository.CompanyMembership
		if err := rows.Scan(&m.ID, &m.CompanyID, &m.UserID, &m.Role, &m.IsPrimary, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
