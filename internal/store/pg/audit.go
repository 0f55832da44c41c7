package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/machwork/identity/internal/domain/repository"
)

// AuditRepo implementa repository.AuditRepository. Solo INSERT: el
// ledger no tiene path de update ni delete.
type AuditRepo struct{ pool *pgxpool.Pool }

func (r *AuditRepo) Append(ctx context.Context, entry repository.AuditEntry) error {
	const q = `
INSERT INTO audit_logs (id, action, entity_type, entity_id, actor_user_id, company_id, ip_address, user_agent, metadata, created_at)
VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9)`
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	meta := entry.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	_, err := queryable(ctx, r.pool).Exec(ctx, q,
		entry.Action, entry.EntityType, entry.EntityID,
		entry.ActorUserID, entry.CompanyID, entry.IPAddress,
		entry.UserAgent, meta, createdAt,
	)
	return err
}
